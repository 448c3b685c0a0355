// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashにはbcryptハッシュのみを保持し、平文パスワードは保持しない。
type User struct {
	ID           string
	Email        string
	Nickname     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Follow はユーザー間の購読関係（フォロー）を表す。
// FollowerID のユーザーが FolloweeID のユーザーを購読していることを意味する。
type Follow struct {
	FollowerID string
	FolloweeID string
	CreatedAt  time.Time
}

// Profile はユーザーの公開プロフィールを表す。
// 購読関係の隣接集合（フォロワー／フォロー中）をニックネームで保持する。
type Profile struct {
	Nickname  string
	Followers []string
	Following []string
	CreatedAt time.Time
}
