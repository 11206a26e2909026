// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, user, post, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeAuthFailed      = "AUTH_FAILED"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeInvalidPassword = "INVALID_PASSWORD"
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeUserNotFound    = "USER_NOT_FOUND"
	ErrCodeDuplicateUser   = "DUPLICATE_USER"
	ErrCodeNoSuchUser      = "NO_SUCH_USER"
	ErrCodePostNotFound    = "POST_NOT_FOUND"
	ErrCodeNotPostOwner    = "NOT_POST_OWNER"
)

// NewAuthFailedError はログイン失敗エラーを生成する。
// ユーザー不在とパスワード不一致の区別を外部に漏らさないため、両方ともこのエラーに集約する。
func NewAuthFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthFailed,
		Message:  "ユーザー名またはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUnauthorizedError は認証エラーを生成する。
// トークンの期限切れ・改ざん・形式不正はすべてこのエラーに集約する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewInvalidPasswordError は使用できないパスワードに対するエラーを生成する。
func NewInvalidPasswordError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPassword,
		Message:  fmt.Sprintf("このパスワードは使用できません: %s", reason),
		Category: "validation",
		Action:   "別のパスワードを指定してください。",
	}
}

// NewInvalidRequestError はリクエスト形式エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(userID int64) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %d", userID),
		Category: "user",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewDuplicateUserError はユーザー名が既に使われている場合のエラーを生成する。
func NewDuplicateUserError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateUser,
		Message:  fmt.Sprintf("このユーザー名は既に使われています: %s", username),
		Category: "user",
		Action:   "別のユーザー名を指定してください。",
	}
}

// NewNoSuchUserError は投稿の所有者として指定されたユーザーが存在しない場合のエラーを生成する。
func NewNoSuchUserError() *APIError {
	return &APIError{
		Code:     ErrCodeNoSuchUser,
		Message:  "投稿の所有者となるユーザーが存在しません。",
		Category: "post",
		Action:   "ログインし直してください。",
	}
}

// NewPostNotFoundError は投稿が見つからない場合のエラーを生成する。
func NewPostNotFoundError(postID int64) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("指定された投稿が見つかりません: %d", postID),
		Category: "post",
		Action:   "投稿IDを確認してください。",
	}
}

// NewNotPostOwnerError は他人の投稿を変更しようとした場合のエラーを生成する。
// 投稿の存在確認（404）の後にのみ返すこと。存在しない投稿に対して返してはならない。
func NewNotPostOwnerError(postID int64) *APIError {
	return &APIError{
		Code:     ErrCodeNotPostOwner,
		Message:  fmt.Sprintf("この投稿を変更する権限がありません: %d", postID),
		Category: "auth",
		Action:   "自分が作成した投稿のみ変更できます。",
	}
}
