package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Soujiro-a/Menuger/internal/middleware"
	"github.com/Soujiro-a/Menuger/internal/model"
	"github.com/Soujiro-a/Menuger/internal/token"
)

// newTestRouter はテスト用の全ミドルウェアスタック付きルーターを構築する。
func newTestRouter(t *testing.T, authSvc AuthServiceInterface, userSvc UserServiceInterface, recipeSvc RecipeServiceInterface) (http.Handler, *token.Codec) {
	t.Helper()

	codec := token.NewCodec([]byte("router-test-secret"), 15*time.Minute, 24*time.Hour)
	limiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(limiter.Stop)

	router := NewRouter(&RouterDeps{
		TokenCodec:        codec,
		CookieConfig:      testCookieConfig(),
		CSRFConfig:        middleware.CSRFConfig{},
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       limiter,
		AuthService:       authSvc,
		UserService:       userSvc,
		RecipeService:     recipeSvc,
	})
	return router, codec
}

// withCSRFToken は状態変更リクエストにdouble-submitトークンを付与するヘルパー。
func withCSRFToken(req *http.Request) *http.Request {
	const testToken = "csrf-test-token"
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: testToken})
	req.Header.Set("X-CSRF-Token", testToken)
	return req
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t, &mockAuthService{}, &mockUserService{}, &mockRecipeService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_PublicRecipeList_NoSessionRequired(t *testing.T) {
	router, _ := newTestRouter(t, &mockAuthService{}, &mockUserService{}, &mockRecipeService{})

	req := httptest.NewRequest(http.MethodGet, "/recipes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_ProtectedRoute_WithoutSession_Returns401(t *testing.T) {
	recipeSvc := &mockRecipeService{
		deleteFn: func(ctx context.Context, userID, recipeID string) error {
			t.Error("delete should not be reached without a session")
			return nil
		},
	}
	router, _ := newTestRouter(t, &mockAuthService{}, &mockUserService{}, recipeSvc)

	req := httptest.NewRequest(http.MethodDelete, "/recipes/recipe-1", nil)
	req = withCSRFToken(req)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRouter_ProtectedRoute_WithValidAccessToken(t *testing.T) {
	var gotUserID string
	recipeSvc := &mockRecipeService{
		deleteFn: func(ctx context.Context, userID, recipeID string) error {
			gotUserID = userID
			return nil
		},
	}
	router, codec := newTestRouter(t, &mockAuthService{}, &mockUserService{}, recipeSvc)

	accessToken, err := codec.Issue("user-123", token.KindAccess)
	if err != nil {
		t.Fatalf("failed to issue access token: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/recipes/recipe-1", nil)
	req = withCSRFToken(req)
	req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookieName, Value: accessToken})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}
	if gotUserID != "user-123" {
		t.Errorf("userID = %q, want %q", gotUserID, "user-123")
	}
}

// 期限切れアクセストークンでも有効なリフレッシュトークンがあれば
// 透過的に再発行され、リクエストは成功する。
func TestRouter_ProtectedRoute_ExpiredAccess_TransparentRefresh(t *testing.T) {
	userSvc := &mockUserService{
		deleteAccountFn: func(ctx context.Context, userID string) error {
			if userID != "user-123" {
				t.Errorf("userID = %q, want %q", userID, "user-123")
			}
			return nil
		},
	}
	router, codec := newTestRouter(t, &mockAuthService{}, userSvc, &mockRecipeService{})

	// 同じ鍵で期限切れのアクセストークンを発行する
	expiredCodec := token.NewCodec([]byte("router-test-secret"), -time.Minute, 24*time.Hour)
	expiredAccess, err := expiredCodec.Issue("user-123", token.KindAccess)
	if err != nil {
		t.Fatalf("failed to issue expired access token: %v", err)
	}
	refreshToken, err := codec.Issue("user-123", token.KindRefresh)
	if err != nil {
		t.Fatalf("failed to issue refresh token: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/users", nil)
	req = withCSRFToken(req)
	req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookieName, Value: expiredAccess})
	req.AddCookie(&http.Cookie{Name: middleware.RefreshTokenCookieName, Value: refreshToken})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}

	// 新しいアクセストークンがクッキーで再発行されていること
	newAccess := findCookie(t, w, middleware.AccessTokenCookieName)
	if newAccess == nil {
		t.Fatal("expected a refreshed access token cookie")
	}
	refreshedID, err := codec.Verify(newAccess.Value, token.KindAccess)
	if err != nil {
		t.Fatalf("refreshed access token should verify: %v", err)
	}
	if refreshedID != "user-123" {
		t.Errorf("refreshed token userID = %q, want %q", refreshedID, "user-123")
	}
}

// CSRFトークンなしの状態変更リクエストは403で拒否される。
func TestRouter_StateChangingRequest_WithoutCSRFToken_Returns403(t *testing.T) {
	router, _ := newTestRouter(t, &mockAuthService{}, &mockUserService{}, &mockRecipeService{})

	req := httptest.NewRequest(http.MethodPost, "/users/signout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestRouter_Signup_RoutesToHandler(t *testing.T) {
	called := false
	authSvc := &mockAuthService{
		signupFn: func(ctx context.Context, email, nickname, password string) (*model.User, error) {
			called = true
			return &model.User{ID: "user-123"}, nil
		},
	}
	router, _ := newTestRouter(t, authSvc, &mockUserService{}, &mockRecipeService{})

	body := `{"email":"cook@example.com","nickname":"ryouri_taro","password":"pass1234"}`
	req := httptest.NewRequest(http.MethodPost, "/users/signup", strings.NewReader(body))
	req = withCSRFToken(req)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusCreated, w.Body.String())
	}
	if !called {
		t.Error("expected Signup to be called")
	}
}

func TestRouter_CORSHeaders_Applied(t *testing.T) {
	router, _ := newTestRouter(t, &mockAuthService{}, &mockUserService{}, &mockRecipeService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:3000")
	}
}
