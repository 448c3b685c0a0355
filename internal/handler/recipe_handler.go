package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Soujiro-a/Menuger/internal/metrics"
	"github.com/Soujiro-a/Menuger/internal/middleware"
	"github.com/Soujiro-a/Menuger/internal/model"
	"github.com/Soujiro-a/Menuger/internal/recipe"
)

// RecipeServiceInterface はレシピサービスのインターフェース。
type RecipeServiceInterface interface {
	Create(ctx context.Context, userID string, input recipe.CreateInput) (*model.Recipe, error)
	Get(ctx context.Context, id string) (*model.Recipe, error)
	List(ctx context.Context) ([]*model.Recipe, error)
	Delete(ctx context.Context, userID, recipeID string) error
}

// RecipeHandler はレシピの作成・取得・一覧・削除を処理する。
type RecipeHandler struct {
	service RecipeServiceInterface
	metrics metrics.MetricsCollector
}

// NewRecipeHandler はRecipeHandlerを生成する。
func NewRecipeHandler(service RecipeServiceInterface, collector metrics.MetricsCollector) *RecipeHandler {
	return &RecipeHandler{
		service: service,
		metrics: collector,
	}
}

type createRecipeRequest struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	ReferenceURL string `json:"referenceUrl"`
}

type recipeResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type recipeDetailResponse struct {
	Message string         `json:"message"`
	Recipe  recipeResponse `json:"recipe"`
}

type recipeListResponse struct {
	Message string           `json:"message"`
	Recipes []recipeResponse `json:"recipes"`
}

func toRecipeResponse(r *model.Recipe) recipeResponse {
	return recipeResponse{
		ID:           r.ID,
		UserID:       r.UserID,
		Title:        r.Title,
		Content:      r.Content,
		ThumbnailURL: r.ThumbnailURL,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// Create は POST /recipes のハンドラー。
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	created, err := h.service.Create(r.Context(), userID, recipe.CreateInput{
		Title:        req.Title,
		Content:      req.Content,
		ReferenceURL: req.ReferenceURL,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordRecipeCreated()
	}
	writeJSON(w, http.StatusCreated, recipeDetailResponse{
		Message: "レシピを投稿しました。",
		Recipe:  toRecipeResponse(created),
	})
}

// Get は GET /recipes/{id} のハンドラー。公開エンドポイント。
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recipeDetailResponse{
		Message: "レシピを取得しました。",
		Recipe:  toRecipeResponse(found),
	})
}

// List は GET /recipes のハンドラー。公開エンドポイント。
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]recipeResponse, 0, len(recipes))
	for _, rec := range recipes {
		responses = append(responses, toRecipeResponse(rec))
	}

	writeJSON(w, http.StatusOK, recipeListResponse{
		Message: "レシピ一覧を取得しました。",
		Recipes: responses,
	})
}

// Delete は DELETE /recipes/{id} のハンドラー。
// セッション検証済みのユーザーIDに対して所有者確認を行ってから削除する。
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordRecipeDeleted()
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "レシピを削除しました。"})
}
