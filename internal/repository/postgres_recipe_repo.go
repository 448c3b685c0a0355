package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Soujiro-a/Menuger/internal/model"
)

// PostgresRecipeRepo はPostgreSQLを使用したレシピリポジトリ。
type PostgresRecipeRepo struct {
	db *sql.DB
}

// NewPostgresRecipeRepo はPostgresRecipeRepoを生成する。
func NewPostgresRecipeRepo(db *sql.DB) *PostgresRecipeRepo {
	return &PostgresRecipeRepo{db: db}
}

const recipeColumns = `id, user_id, title, content, thumbnail_url, created_at, updated_at`

// FindByID は指定IDのレシピを取得する。見つからない場合はnilを返す。
// 所有者参照（UserID）を必ず含む。
func (r *PostgresRecipeRepo) FindByID(ctx context.Context, id string) (*model.Recipe, error) {
	recipe := &model.Recipe{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = $1`, id,
	).Scan(&recipe.ID, &recipe.UserID, &recipe.Title, &recipe.Content,
		&recipe.ThumbnailURL, &recipe.CreatedAt, &recipe.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	return recipe, nil
}

// Create はレシピを作成する。
func (r *PostgresRecipeRepo) Create(ctx context.Context, recipe *model.Recipe) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recipes (id, user_id, title, content, thumbnail_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		recipe.ID, recipe.UserID, recipe.Title, recipe.Content,
		recipe.ThumbnailURL, recipe.CreatedAt, recipe.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("レシピの作成に失敗しました: %w", err)
	}
	return nil
}

// DeleteByID は指定IDのレシピを削除する。
func (r *PostgresRecipeRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("レシピの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("recipe not found: %s", id)
	}
	return nil
}

// List は作成日時の降順でレシピ一覧を返す。
func (r *PostgresRecipeRepo) List(ctx context.Context, limit int) ([]*model.Recipe, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("レシピ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	recipes := []*model.Recipe{}
	for rows.Next() {
		recipe := &model.Recipe{}
		if err := rows.Scan(&recipe.ID, &recipe.UserID, &recipe.Title, &recipe.Content,
			&recipe.ThumbnailURL, &recipe.CreatedAt, &recipe.UpdatedAt); err != nil {
			return nil, fmt.Errorf("レシピ一覧の読み取りに失敗しました: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("レシピ一覧の走査に失敗しました: %w", err)
	}
	return recipes, nil
}

// compile-time interface check
var _ RecipeRepository = (*PostgresRecipeRepo)(nil)
