// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordSignupSuccess()
	RecordSigninSuccess()
	RecordSigninFailure()
	RecordTokenRefresh()
	RecordRecipeCreated()
	RecordRecipeDeleted()
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signupSuccess  prometheus.Counter
	signinSuccess  prometheus.Counter
	signinFail     prometheus.Counter
	tokenRefresh   prometheus.Counter
	recipeCreated  prometheus.Counter
	recipeDeleted  prometheus.Counter
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signupSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "menuger_signup_success_total",
			Help: "サインアップ成功の合計数",
		}),
		signinSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "menuger_signin_success_total",
			Help: "サインイン成功の合計数",
		}),
		signinFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "menuger_signin_fail_total",
			Help: "サインイン失敗の合計数",
		}),
		tokenRefresh: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "menuger_token_refresh_total",
			Help: "アクセストークン透過的再発行の合計数",
		}),
		recipeCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "menuger_recipe_created_total",
			Help: "レシピ投稿の合計数",
		}),
		recipeDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "menuger_recipe_deleted_total",
			Help: "レシピ削除の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menuger_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "menuger_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.signupSuccess,
		c.signinSuccess,
		c.signinFail,
		c.tokenRefresh,
		c.recipeCreated,
		c.recipeDeleted,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordSignupSuccess はサインアップ成功を記録する。
func (c *Collector) RecordSignupSuccess() {
	c.signupSuccess.Inc()
}

// RecordSigninSuccess はサインイン成功を記録する。
func (c *Collector) RecordSigninSuccess() {
	c.signinSuccess.Inc()
}

// RecordSigninFailure はサインイン失敗を記録する。
func (c *Collector) RecordSigninFailure() {
	c.signinFail.Inc()
}

// RecordTokenRefresh はアクセストークンの透過的再発行を記録する。
func (c *Collector) RecordTokenRefresh() {
	c.tokenRefresh.Inc()
}

// RecordRecipeCreated はレシピ投稿を記録する。
func (c *Collector) RecordRecipeCreated() {
	c.recipeCreated.Inc()
}

// RecordRecipeDeleted はレシピ削除を記録する。
func (c *Collector) RecordRecipeDeleted() {
	c.recipeDeleted.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
