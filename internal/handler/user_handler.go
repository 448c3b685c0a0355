package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Soujiro-a/Menuger/internal/middleware"
	"github.com/Soujiro-a/Menuger/internal/model"
	"github.com/Soujiro-a/Menuger/internal/user"
)

// UserServiceInterface はユーザー管理サービスのインターフェース。
type UserServiceInterface interface {
	GetProfile(ctx context.Context, nickname string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, userID string, update user.ProfileUpdate) (*model.User, error)
	DeleteAccount(ctx context.Context, userID string) error
	Subscribe(ctx context.Context, selfID, targetNickname string) error
	Unsubscribe(ctx context.Context, selfID, targetNickname string) error
}

// UserHandler はプロフィール・退会・購読関係を処理する。
type UserHandler struct {
	service UserServiceInterface
	cookies middleware.CookieConfig
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, cookies middleware.CookieConfig) *UserHandler {
	return &UserHandler{
		service: service,
		cookies: cookies,
	}
}

type updateProfileRequest struct {
	Nickname *string `json:"nickname"`
	Password *string `json:"password"`
}

type profileResponse struct {
	Message   string    `json:"message"`
	Nickname  string    `json:"nickname"`
	Followers []string  `json:"followers"`
	Following []string  `json:"following"`
	CreatedAt time.Time `json:"createdAt"`
}

// GetProfile は GET /users/{nickname} のハンドラー。
// 公開プロフィールのため認証は不要。
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	nickname := chi.URLParam(r, "nickname")

	profile, err := h.service.GetProfile(r.Context(), nickname)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		Message:   "プロフィールを取得しました。",
		Nickname:  profile.Nickname,
		Followers: profile.Followers,
		Following: profile.Following,
		CreatedAt: profile.CreatedAt,
	})
}

// UpdateProfile は PATCH /users のハンドラー。
// ニックネームまたはパスワードを部分更新する。
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), userID, user.ProfileUpdate{
		Nickname: req.Nickname,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, signinResponse{
		Message:  "プロフィールを更新しました。",
		Nickname: updated.Nickname,
	})
}

// DeleteAccount は DELETE /users のハンドラー。
// 退会処理の後、トークンクッキーを失効させる。
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.DeleteAccount(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	middleware.ClearTokenCookies(w, h.cookies)
	writeJSON(w, http.StatusOK, messageResponse{Message: "退会処理が完了しました。"})
}

// Subscribe は POST /users/subscribe/{nickname} のハンドラー。
func (h *UserHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	nickname := chi.URLParam(r, "nickname")
	if err := h.service.Subscribe(r.Context(), userID, nickname); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "購読しました。"})
}

// Unsubscribe は POST /users/unsubscribe/{nickname} のハンドラー。
func (h *UserHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	nickname := chi.URLParam(r, "nickname")
	if err := h.service.Unsubscribe(r.Context(), userID, nickname); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "購読を解除しました。"})
}
