package recipe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Soujiro-a/Menuger/internal/model"
	"github.com/Soujiro-a/Menuger/internal/repository"
)

// タイトルの最大長。本文はサニタイズのみで長さ制限を設けない。
const maxTitleLength = 100

// デフォルトの一覧取得件数。
const defaultListLimit = 50

// Sanitizer はHTMLサニタイズのインターフェース。
// security.ContentSanitizerServiceを抽象化してテスタビリティを向上させる。
type Sanitizer interface {
	Sanitize(rawHTML string) string
}

// CreateInput はレシピ作成の入力。
// ReferenceURLが指定された場合、そのページのog:imageをサムネイルとして取得する。
type CreateInput struct {
	Title        string
	Content      string
	ReferenceURL string
}

// Service はレシピ投稿のサービス層。
// 作成・取得・一覧・所有者確認付き削除のビジネスロジックを提供する。
type Service struct {
	recipeRepo repository.RecipeRepository
	sanitizer  Sanitizer
	thumbnails ThumbnailFetcherService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(recipeRepo repository.RecipeRepository, sanitizer Sanitizer, thumbnails ThumbnailFetcherService) *Service {
	return &Service{
		recipeRepo: recipeRepo,
		sanitizer:  sanitizer,
		thumbnails: thumbnails,
	}
}

// Create はレシピを作成する。
// 本文はサニタイズしてから保存する。サムネイル取得の失敗は投稿を妨げない。
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*model.Recipe, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || len([]rune(title)) > maxTitleLength {
		return nil, model.NewInvalidRequestError()
	}

	content := s.sanitizer.Sanitize(input.Content)
	if strings.TrimSpace(content) == "" {
		return nil, model.NewInvalidRequestError()
	}

	var thumbnailURL string
	if input.ReferenceURL != "" && s.thumbnails != nil {
		thumbnailURL = s.thumbnails.FetchThumbnailURL(ctx, input.ReferenceURL)
	}

	now := time.Now()
	recipe := &model.Recipe{
		ID:           uuid.New().String(),
		UserID:       userID,
		Title:        title,
		Content:      content,
		ThumbnailURL: thumbnailURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.recipeRepo.Create(ctx, recipe); err != nil {
		return nil, fmt.Errorf("レシピの作成に失敗しました: %w", err)
	}

	slog.Info("recipe created",
		slog.String("recipe_id", recipe.ID),
		slog.String("user_id", userID),
	)
	return recipe, nil
}

// Get は指定IDのレシピを取得する。
func (s *Service) Get(ctx context.Context, id string) (*model.Recipe, error) {
	if err := validateRecipeID(id); err != nil {
		return nil, err
	}

	recipe, err := s.recipeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	if recipe == nil {
		return nil, model.NewRecipeNotFoundError(id)
	}
	return recipe, nil
}

// List は作成日時の降順でレシピ一覧を返す。
func (s *Service) List(ctx context.Context) ([]*model.Recipe, error) {
	recipes, err := s.recipeRepo.List(ctx, defaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("レシピ一覧の取得に失敗しました: %w", err)
	}
	return recipes, nil
}

// Delete は所有者確認を行ってからレシピを削除する。
// 所有者確認は認証済みのユーザーIDに対してのみ行い、
// クライアントが申告したIDを信用しない（呼び出し側はセッション検証後の
// ユーザーIDを渡すこと）。
func (s *Service) Delete(ctx context.Context, userID, recipeID string) error {
	if err := s.AuthorizeDelete(ctx, userID, recipeID); err != nil {
		return err
	}

	if err := s.recipeRepo.DeleteByID(ctx, recipeID); err != nil {
		return fmt.Errorf("レシピの削除に失敗しました: %w", err)
	}

	slog.Info("recipe deleted",
		slog.String("recipe_id", recipeID),
		slog.String("user_id", userID),
	)
	return nil
}

// AuthorizeDelete は削除権限を確認する。
// レシピが存在しない場合は未検出エラー、所有者参照が一致しない場合は
// 所有者エラーを返す。どちらでもなければnilを返し削除を許可する。
func (s *Service) AuthorizeDelete(ctx context.Context, userID, recipeID string) error {
	if err := validateRecipeID(recipeID); err != nil {
		return err
	}

	recipe, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	if recipe == nil {
		return model.NewRecipeNotFoundError(recipeID)
	}
	if recipe.UserID != userID {
		return model.NewNotRecipeOwnerError()
	}
	return nil
}

// validateRecipeID はレシピIDがUUID形式であることを検証する。
func validateRecipeID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return model.NewInvalidRecipeIDError(id)
	}
	return nil
}
