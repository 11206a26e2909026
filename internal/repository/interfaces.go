// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/blogd/internal/model"
)

var (
	// ErrNotFound は更新・削除対象の行が存在しない場合に返される。
	ErrNotFound = errors.New("row not found")

	// ErrDuplicateUsername はusernameの一意制約違反に対して返される。
	// 一意制約違反はリトライしても解消しないため、リトライ対象にしてはならない。
	ErrDuplicateUsername = errors.New("username already taken")

	// ErrNoSuchUser は投稿の所有者として存在しないユーザーを指定した場合
	// （外部キー制約違反）に返される。
	ErrNoSuchUser = errors.New("no user with such user_id")
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, userID int64) (*model.User, error)

	// FindByUsername はユーザー名で認証情報を検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// List はuser_id昇順でskip件読み飛ばし、最大limit件のユーザーを返す。
	List(ctx context.Context, skip, limit int) ([]model.User, error)

	// Create はユーザーを作成し、採番されたuser_idを設定して返す。
	// ユーザー名が重複する場合はErrDuplicateUsernameを返す。
	Create(ctx context.Context, user *model.User) (*model.User, error)

	// Update はユーザーの全フィールドを更新する。
	// 対象が存在しない場合はErrNotFound、ユーザー名重複はErrDuplicateUsernameを返す。
	Update(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連する投稿はCASCADE削除される。対象が存在しない場合はErrNotFoundを返す。
	DeleteByID(ctx context.Context, userID int64) error
}

// PostRepository は投稿データの永続化インターフェース。
type PostRepository interface {
	// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, postID int64) (*model.Post, error)

	// List はpost_id昇順でskip件読み飛ばし、最大limit件の投稿を返す。
	List(ctx context.Context, skip, limit int) ([]model.Post, error)

	// Create は投稿を作成し、採番されたpost_idを設定して返す。
	// user_idが存在しないユーザーを指す場合はErrNoSuchUserを返す。
	Create(ctx context.Context, post *model.Post) (*model.Post, error)

	// UpdateContent は指定IDの投稿のタイトルと本文のみを更新する。
	// user_id（所有者）は変更しない。対象が存在しない場合はErrNotFoundを返す。
	UpdateContent(ctx context.Context, postID int64, title, body string) error

	// DeleteByID は指定IDの投稿を削除する。対象が存在しない場合はErrNotFoundを返す。
	DeleteByID(ctx context.Context, postID int64) error
}
