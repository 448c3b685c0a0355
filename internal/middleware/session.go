// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Soujiro-a/Menuger/internal/model"
	"github.com/Soujiro-a/Menuger/internal/token"
)

const (
	// AccessTokenCookieName はアクセストークンを保持するCookieの名前。
	AccessTokenCookieName = "accessToken"

	// RefreshTokenCookieName はリフレッシュトークンを保持するCookieの名前。
	RefreshTokenCookieName = "refreshToken"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// userIDHolderKey はロギングミドルウェアが仕込むホルダーのキー。
var userIDHolderKey = contextKey("user_id_holder")

// userIDHolder は後段のミドルウェアで確定した認証済みユーザーIDを
// 前段のロギングミドルウェアへ伝えるための書き込み先。
// ロギングはセッション検証より外側に位置するため、
// コンテキストの値だけではIDを観測できない。
type userIDHolder struct {
	id string
}

// TokenCodec はトークンの検証と再発行に必要なインターフェース。
// token.Codecの部分集合として定義する。
type TokenCodec interface {
	Issue(userID string, kind token.Kind) (string, error)
	Verify(tokenString string, kind token.Kind) (string, error)
}

// TokenRefreshRecorder は透過的リフレッシュの発生を記録するインターフェース。
// metrics.MetricsCollectorの部分集合として定義する。nilを許容する。
type TokenRefreshRecorder interface {
	RecordTokenRefresh()
}

// CookieConfig は認証Cookieの属性設定。
type CookieConfig struct {
	Secure     bool
	Domain     string
	AccessTTL  int // アクセストークンCookieの有効秒数
	RefreshTTL int // リフレッシュトークンCookieの有効秒数
}

// NewSessionMiddleware はHTTP Only Cookieからトークンペアを読み取り、
// 検証するミドルウェアを返す。
// 認証済みユーザーIDをリクエストコンテキストに注入する。
//
// アクセストークンが欠落・期限切れでも、有効なリフレッシュトークンがあれば
// 新しいアクセストークンを発行してCookieを差し替え、リクエストを通す
// （透過的リフレッシュ）。両方が無効な場合は401を返し、Cookieには触れない。
func NewSessionMiddleware(codec TokenCodec, cookies CookieConfig, refreshes TokenRefreshRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. アクセストークンの検証
			if cookie, err := r.Cookie(AccessTokenCookieName); err == nil && cookie.Value != "" {
				userID, verr := codec.Verify(cookie.Value, token.KindAccess)
				if verr == nil {
					next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
					return
				}
				if !errors.Is(verr, token.ErrTokenExpired) && !errors.Is(verr, token.ErrInvalidToken) {
					slog.Error("failed to verify access token", slog.String("error", verr.Error()))
				}
			}

			// 2. リフレッシュトークンによる再発行
			cookie, err := r.Cookie(RefreshTokenCookieName)
			if err != nil || cookie.Value == "" {
				writeUnauthorized(w)
				return
			}

			userID, err := codec.Verify(cookie.Value, token.KindRefresh)
			if err != nil {
				// リフレッシュトークンも無効。Cookieは変更しない
				writeUnauthorized(w)
				return
			}

			accessToken, err := codec.Issue(userID, token.KindAccess)
			if err != nil {
				slog.Error("failed to reissue access token", slog.String("error", err.Error()))
				WriteInternalServerError(w)
				return
			}

			// 後続ハンドラーが書き込みを始める前にCookieを差し替える
			setCookie(w, AccessTokenCookieName, accessToken, cookies.AccessTTL, cookies)

			if refreshes != nil {
				refreshes.RecordTokenRefresh()
			}
			slog.Info("access token refreshed", slog.String("user_id", userID))

			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}

// SetTokenCookies はサインイン成功時にアクセス・リフレッシュ両方のCookieを設定する。
func SetTokenCookies(w http.ResponseWriter, accessToken, refreshToken string, cookies CookieConfig) {
	setCookie(w, AccessTokenCookieName, accessToken, cookies.AccessTTL, cookies)
	setCookie(w, RefreshTokenCookieName, refreshToken, cookies.RefreshTTL, cookies)
}

// ClearTokenCookies はサインアウト時に両方のCookieを削除する。
// 既にサインアウト済みでも安全に呼び出せる（冪等）。
func ClearTokenCookies(w http.ResponseWriter, cookies CookieConfig) {
	setCookie(w, AccessTokenCookieName, "", -1, cookies)
	setCookie(w, RefreshTokenCookieName, "", -1, cookies)
}

// setCookie はHTTP Only Cookieを設定する。maxAgeが負の場合は削除となる。
func setCookie(w http.ResponseWriter, name, value string, maxAge int, cookies CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cookies.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// writeUnauthorized は401レスポンスを統一エラーフォーマットで書き込む。
func writeUnauthorized(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
// ロギングミドルウェアのホルダーが仕込まれていれば、そちらにも書き込む。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	if holder, ok := ctx.Value(userIDHolderKey).(*userIDHolder); ok {
		holder.id = userID
	}
	return context.WithValue(ctx, userIDContextKey, userID)
}
