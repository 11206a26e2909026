// Package model はドメインモデルを定義する。
package model

// User は認証情報を含む完全なユーザーレコードを表す。
// PasswordHashはAPIレスポンスに含めてはならない。外部公開にはVisible()を使う。
type User struct {
	UserID       int64
	Username     string
	PasswordHash string
	Email        string
	Name         string
	Surname      string
}

// VisibleUserInfo は外部公開可能なユーザー情報を表す。
// password_hashは構造上含まれない。
type VisibleUserInfo struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Surname  string `json:"surname,omitempty"`
}

// Visible はAPIレスポンス用の公開ユーザー情報を返す。
func (u *User) Visible() VisibleUserInfo {
	return VisibleUserInfo{
		UserID:   u.UserID,
		Username: u.Username,
		Email:    u.Email,
		Name:     u.Name,
		Surname:  u.Surname,
	}
}
