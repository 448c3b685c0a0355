// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, conflict, user, recipe, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeInvalidEmail    = "INVALID_EMAIL"
	ErrCodeInvalidNickname = "INVALID_NICKNAME"
	ErrCodeInvalidPassword = "INVALID_PASSWORD"
	ErrCodeEmailTaken      = "EMAIL_TAKEN"
	ErrCodeNicknameTaken   = "NICKNAME_TAKEN"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeSelfSubscribe   = "SELF_SUBSCRIBE"
	ErrCodeUserNotFound    = "USER_NOT_FOUND"
	ErrCodeInvalidRecipeID = "INVALID_RECIPE_ID"
	ErrCodeRecipeNotFound  = "RECIPE_NOT_FOUND"
	ErrCodeNotRecipeOwner  = "NOT_RECIPE_OWNER"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// NewInvalidRequestError はリクエストボディ解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewInvalidEmailError はメールアドレス形式エラーを生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  "使用できないメールアドレス形式です。",
		Category: "validation",
		Action:   "正しい形式のメールアドレスを入力してください。",
	}
}

// NewInvalidNicknameError はニックネーム形式エラーを生成する。
func NewInvalidNicknameError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidNickname,
		Message:  "使用できないニックネーム形式です。",
		Category: "validation",
		Action:   "ニックネームは2〜20文字の英数字・ハングル・ひらがな・カタカナ・漢字で入力してください。",
	}
}

// NewInvalidPasswordError はパスワード形式エラーを生成する。
func NewInvalidPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPassword,
		Message:  "英小文字と数字を含む8文字以上のパスワードを入力してください。",
		Category: "validation",
		Action:   "パスワード形式を確認してください。",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "既に登録されているメールアドレスです。",
		Category: "conflict",
		Action:   "別のメールアドレスを使用するか、サインインしてください。",
	}
}

// NewNicknameTakenError はニックネーム重複エラーを生成する。
func NewNicknameTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeNicknameTaken,
		Message:  "既に使用されているニックネームです。",
		Category: "conflict",
		Action:   "別のニックネームを入力してください。",
	}
}

// NewUnauthorizedError は認証エラーを生成する。
// 資格情報の不一致とトークンの無効・期限切れの両方で同一メッセージを返し、
// どの要素が誤っていたかを漏らさない。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "有効ではないアクセスです。",
		Category: "auth",
		Action:   "サインインしてください。",
	}
}

// NewSelfSubscribeError は自分自身への購読エラーを生成する。
func NewSelfSubscribeError() *APIError {
	return &APIError{
		Code:     ErrCodeSelfSubscribe,
		Message:  "自分自身を購読することはできません。",
		Category: "user",
		Action:   "他のユーザーのニックネームを指定してください。",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError(nickname string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", nickname),
		Category: "user",
		Action:   "ニックネームを確認してください。",
	}
}

// NewInvalidRecipeIDError はレシピID形式エラーを生成する。
func NewInvalidRecipeIDError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRecipeID,
		Message:  fmt.Sprintf("指定されたレシピIDは有効ではありません: %s", id),
		Category: "recipe",
		Action:   "レシピIDを確認してください。",
	}
}

// NewRecipeNotFoundError はレシピ未検出エラーを生成する。
func NewRecipeNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeRecipeNotFound,
		Message:  fmt.Sprintf("指定されたレシピが見つかりません: %s", id),
		Category: "recipe",
		Action:   "レシピIDを確認してください。",
	}
}

// NewInternalError はサーバー内部エラーを生成する。
// ストレージ障害などの詳細はログにのみ出力し、クライアントへは漏らさない。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "サーバー内部でエラーが発生しました。",
		Category: "system",
		Action:   "時間をおいて再度お試しください。",
	}
}

// NewNotRecipeOwnerError は所有者以外による削除エラーを生成する。
func NewNotRecipeOwnerError() *APIError {
	return &APIError{
		Code:     ErrCodeNotRecipeOwner,
		Message:  "投稿の作成者のみ削除できます。",
		Category: "recipe",
		Action:   "自分が作成したレシピのみ削除できます。",
	}
}
