package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Soujiro-a/Menuger/internal/metrics"
	"github.com/Soujiro-a/Menuger/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenCodec        middleware.TokenCodec
	CookieConfig      middleware.CookieConfig
	CSRFConfig        middleware.CSRFConfig
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス
	Metrics  metrics.MetricsCollector
	Gatherer prometheus.Gatherer

	// サービス
	AuthService   AuthServiceInterface
	UserService   UserServiceInterface
	RecipeService RecipeServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Logging → Recovery → CSRF
//
// 認証が必要なルートにはさらに Session → RateLimit(General) が適用される。
// サインアップ・サインインにはIP単位のレート制限（AuthMiddleware）を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS ミドルウェアを最上位に適用（全ルートに効く）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r.Use(middleware.NewLoggingMiddleware(logger, deps.Metrics))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

	authHandler := NewAuthHandler(deps.AuthService, deps.CookieConfig, deps.Metrics)
	userHandler := NewUserHandler(deps.UserService, deps.CookieConfig)
	recipeHandler := NewRecipeHandler(deps.RecipeService, deps.Metrics)

	sessionMiddleware := middleware.NewSessionMiddleware(deps.TokenCodec, deps.CookieConfig, deps.Metrics)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Method(http.MethodGet, "/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	r.Route("/users", func(r chi.Router) {
		// サインアップ・サインインはIP単位のレート制限でブルートフォースを抑止する
		r.With(deps.RateLimiter.AuthMiddleware()).Post("/signup", authHandler.Signup)
		r.With(deps.RateLimiter.AuthMiddleware()).Post("/signin", authHandler.Signin)
		r.Post("/signout", authHandler.Signout)

		// 利用可能性チェック
		r.Post("/email", authHandler.ValidateEmail)
		r.Post("/nickname", authHandler.ValidateNickname)

		// 公開プロフィール
		r.Get("/{nickname}", userHandler.GetProfile)
	})

	// 公開レシピ閲覧
	r.Route("/recipes", func(r chi.Router) {
		r.Get("/", recipeHandler.List)
		r.Get("/{id}", recipeHandler.Get)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware)
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// ユーザー管理
		r.Patch("/users", userHandler.UpdateProfile)
		r.Delete("/users", userHandler.DeleteAccount)
		r.Post("/users/subscribe/{nickname}", userHandler.Subscribe)
		r.Post("/users/unsubscribe/{nickname}", userHandler.Unsubscribe)

		// レシピ管理
		r.Post("/recipes", recipeHandler.Create)
		r.Delete("/recipes/{id}", recipeHandler.Delete)
	})

	return r
}
