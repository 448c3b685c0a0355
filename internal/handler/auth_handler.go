package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Soujiro-a/Menuger/internal/auth"
	"github.com/Soujiro-a/Menuger/internal/metrics"
	"github.com/Soujiro-a/Menuger/internal/middleware"
	"github.com/Soujiro-a/Menuger/internal/model"
)

// AuthServiceInterface は認証サービスのインターフェース。
type AuthServiceInterface interface {
	Signup(ctx context.Context, email, nickname, password string) (*model.User, error)
	Signin(ctx context.Context, email, password string) (*model.User, *auth.TokenPair, error)
	ValidateEmail(ctx context.Context, email string) error
	ValidateNickname(ctx context.Context, nickname string) error
}

// AuthHandler はサインアップ・サインイン・サインアウトと
// メールアドレス・ニックネームの利用可能性チェックを処理する。
type AuthHandler struct {
	service AuthServiceInterface
	cookies middleware.CookieConfig
	metrics metrics.MetricsCollector
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, cookies middleware.CookieConfig, collector metrics.MetricsCollector) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookies: cookies,
		metrics: collector,
	}
}

type signupRequest struct {
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type nicknameRequest struct {
	Nickname string `json:"nickname"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type signinResponse struct {
	Message  string `json:"message"`
	Nickname string `json:"nickname"`
}

// Signup は POST /users/signup のハンドラー。
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if _, err := h.service.Signup(r.Context(), req.Email, req.Nickname, req.Password); err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordSignupSuccess()
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: "会員登録が完了しました。"})
}

// Signin は POST /users/signin のハンドラー。
// 認証に成功するとアクセス・リフレッシュトークンをHttpOnlyクッキーで発行する。
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	user, pair, err := h.service.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordSigninFailure()
		}
		handleServiceError(w, err)
		return
	}

	middleware.SetTokenCookies(w, pair.AccessToken, pair.RefreshToken, h.cookies)

	if h.metrics != nil {
		h.metrics.RecordSigninSuccess()
	}
	writeJSON(w, http.StatusOK, signinResponse{
		Message:  "サインインしました。",
		Nickname: user.Nickname,
	})
}

// Signout は POST /users/signout のハンドラー。
// トークンクッキーを失効させる。セッションの有無に関わらず成功を返す。
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearTokenCookies(w, h.cookies)
	writeJSON(w, http.StatusOK, messageResponse{Message: "サインアウトしました。"})
}

// ValidateEmail は POST /users/email のハンドラー。
// メールアドレスの形式と利用可能性を検証する。
func (h *AuthHandler) ValidateEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if err := h.service.ValidateEmail(r.Context(), req.Email); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "使用可能なメールアドレスです。"})
}

// ValidateNickname は POST /users/nickname のハンドラー。
// ニックネームの形式と利用可能性を検証する。
func (h *AuthHandler) ValidateNickname(w http.ResponseWriter, r *http.Request) {
	var req nicknameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if err := h.service.ValidateNickname(r.Context(), req.Nickname); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "使用可能なニックネームです。"})
}
