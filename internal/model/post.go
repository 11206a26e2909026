// Package model はドメインモデルを定義する。
package model

// Post はブログ投稿を表す。
// UserIDは作成時に認証済みユーザーのIDで固定され、更新操作では変更されない。
type Post struct {
	PostID int64  `json:"post_id"`
	UserID int64  `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}
