package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/blogd/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した投稿リポジトリ。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByID(ctx context.Context, postID int64) (*model.Post, error) {
	post := &model.Post{}
	err := r.db.QueryRowContext(ctx,
		`SELECT post_id, user_id, title, body FROM blog_post WHERE post_id = $1`,
		postID,
	).Scan(&post.PostID, &post.UserID, &post.Title, &post.Body)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post by ID: %w", err)
	}

	return post, nil
}

// List はpost_id昇順でskip件読み飛ばし、最大limit件の投稿を返す。
func (r *PostgresPostRepo) List(ctx context.Context, skip, limit int) ([]model.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT post_id, user_id, title, body
		 FROM blog_post ORDER BY post_id OFFSET $1 LIMIT $2`,
		skip, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var post model.Post
		if err := rows.Scan(&post.PostID, &post.UserID, &post.Title, &post.Body); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate post rows: %w", err)
	}

	return posts, nil
}

// Create は投稿を作成し、採番されたpost_idを設定して返す。
// user_idが存在しないユーザーを指す場合はErrNoSuchUserを返す。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	created := *post
	err := withTxRetry(ctx, func() error {
		return r.db.QueryRowContext(ctx,
			`INSERT INTO blog_post (user_id, title, body)
			 VALUES ($1, $2, $3)
			 RETURNING post_id`,
			post.UserID, post.Title, post.Body,
		).Scan(&created.PostID)
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrNoSuchUser
		}
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	return &created, nil
}

// UpdateContent は指定IDの投稿のタイトルと本文のみを更新する。
// user_id（所有者）は意図的に更新対象から外している。
func (r *PostgresPostRepo) UpdateContent(ctx context.Context, postID int64, title, body string) error {
	var result sql.Result
	err := withTxRetry(ctx, func() error {
		var execErr error
		result, execErr = r.db.ExecContext(ctx,
			`UPDATE blog_post SET title = $1, body = $2 WHERE post_id = $3`,
			title, body, postID,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByID は指定IDの投稿を削除する。対象が存在しない場合はErrNotFoundを返す。
func (r *PostgresPostRepo) DeleteByID(ctx context.Context, postID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM blog_post WHERE post_id = $1`,
		postID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
