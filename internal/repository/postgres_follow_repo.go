package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresFollowRepo はPostgreSQLを使用した購読関係リポジトリ。
// followsテーブルの1行が「follower_idがfollowee_idを購読している」
// という有向エッジを表す。
type PostgresFollowRepo struct {
	db *sql.DB
}

// NewPostgresFollowRepo はPostgresFollowRepoを生成する。
func NewPostgresFollowRepo(db *sql.DB) *PostgresFollowRepo {
	return &PostgresFollowRepo{db: db}
}

// Create は購読エッジを冪等に追加する。既に存在する場合は何もしない。
// 複合主キー(follower_id, followee_id)のON CONFLICTで1文のまま
// アトミックに処理されるため、並行する購読・解除でロストアップデートは起きない。
func (r *PostgresFollowRepo) Create(ctx context.Context, followerID, followeeID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO follows (follower_id, followee_id, created_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (follower_id, followee_id) DO NOTHING`,
		followerID, followeeID,
	)
	if err != nil {
		return fmt.Errorf("購読の作成に失敗しました: %w", err)
	}
	return nil
}

// Delete は購読エッジを削除する。存在しない場合は何もしない。
func (r *PostgresFollowRepo) Delete(ctx context.Context, followerID, followeeID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`,
		followerID, followeeID,
	)
	if err != nil {
		return fmt.Errorf("購読の削除に失敗しました: %w", err)
	}
	return nil
}

// Exists は購読エッジの有無を返す。
func (r *PostgresFollowRepo) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`,
		followerID, followeeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("購読の確認に失敗しました: %w", err)
	}
	return exists, nil
}

// ListFollowerNicknames は指定ユーザーを購読しているユーザーのニックネーム一覧を返す。
func (r *PostgresFollowRepo) ListFollowerNicknames(ctx context.Context, userID string) ([]string, error) {
	return r.listNicknames(ctx,
		`SELECT u.nickname FROM follows f
		 JOIN users u ON u.id = f.follower_id
		 WHERE f.followee_id = $1
		 ORDER BY f.created_at`,
		userID,
	)
}

// ListFollowingNicknames は指定ユーザーが購読しているユーザーのニックネーム一覧を返す。
func (r *PostgresFollowRepo) ListFollowingNicknames(ctx context.Context, userID string) ([]string, error) {
	return r.listNicknames(ctx,
		`SELECT u.nickname FROM follows f
		 JOIN users u ON u.id = f.followee_id
		 WHERE f.follower_id = $1
		 ORDER BY f.created_at`,
		userID,
	)
}

// listNicknames はニックネーム1列のクエリ結果をスライスに読み込む。
func (r *PostgresFollowRepo) listNicknames(ctx context.Context, query, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("購読一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	nicknames := []string{}
	for rows.Next() {
		var nickname string
		if err := rows.Scan(&nickname); err != nil {
			return nil, fmt.Errorf("購読一覧の読み取りに失敗しました: %w", err)
		}
		nicknames = append(nicknames, nickname)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("購読一覧の走査に失敗しました: %w", err)
	}
	return nicknames, nil
}

// compile-time interface check
var _ FollowRepository = (*PostgresFollowRepo)(nil)
