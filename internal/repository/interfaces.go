// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/Soujiro-a/Menuger/internal/model"
)

// ErrDuplicateKey は一意制約違反（メールアドレス・ニックネームの重複）を表す。
// サービス層はこのエラーをerrors.Isで判別し、コンフリクトとして扱う。
var ErrDuplicateKey = errors.New("duplicate key")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByNickname はニックネームでユーザーを検索する。見つからない場合はnilを返す。
	FindByNickname(ctx context.Context, nickname string) (*model.User, error)

	// Create はユーザーを作成する。
	// メールアドレスまたはニックネームの一意制約違反時はErrDuplicateKeyを返す。
	Create(ctx context.Context, user *model.User) error

	// Update はニックネームとパスワードハッシュを更新する。
	// ニックネームの一意制約違反時はErrDuplicateKeyを返す。
	Update(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 購読関係とレシピを同一トランザクションで削除し、他ユーザーの
	// 隣接集合に削除済みIDが残らないことを保証する。
	DeleteByID(ctx context.Context, id string) error
}

// FollowRepository は購読関係（フォロー）の永続化インターフェース。
// 1つの有向エッジテーブルを、フォロワー集合・フォロー中集合の
// 2つの隣接ビューとして提供する。
type FollowRepository interface {
	// Create は購読エッジを冪等に追加する。既に存在する場合は何もしない。
	// 1文のアトミックな書き込みであり、同一ペアへの並行操作で
	// 片側だけ更新された状態は生じない。
	Create(ctx context.Context, followerID, followeeID string) error

	// Delete は購読エッジを削除する。存在しない場合は何もしない。
	Delete(ctx context.Context, followerID, followeeID string) error

	// Exists は購読エッジの有無を返す。
	Exists(ctx context.Context, followerID, followeeID string) (bool, error)

	// ListFollowerNicknames は指定ユーザーを購読しているユーザーの
	// ニックネーム一覧を返す。
	ListFollowerNicknames(ctx context.Context, userID string) ([]string, error)

	// ListFollowingNicknames は指定ユーザーが購読しているユーザーの
	// ニックネーム一覧を返す。
	ListFollowingNicknames(ctx context.Context, userID string) ([]string, error)
}

// RecipeRepository はレシピ投稿の永続化インターフェース。
type RecipeRepository interface {
	// FindByID は指定IDのレシピを取得する。見つからない場合はnilを返す。
	// 所有者参照（UserID）を必ず含む。
	FindByID(ctx context.Context, id string) (*model.Recipe, error)

	// Create はレシピを作成する。
	Create(ctx context.Context, recipe *model.Recipe) error

	// DeleteByID は指定IDのレシピを削除する。
	DeleteByID(ctx context.Context, id string) error

	// List は作成日時の降順でレシピ一覧を返す。
	List(ctx context.Context, limit int) ([]*model.Recipe, error)
}
