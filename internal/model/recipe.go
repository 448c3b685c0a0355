// Package model はドメインモデルを定義する。
package model

import "time"

// Recipe はレシピ投稿を表す。
// UserIDは作成時に設定される所有者参照であり、以後変更されない。
type Recipe struct {
	ID           string
	UserID       string
	Title        string
	Content      string
	ThumbnailURL string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
