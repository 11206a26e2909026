package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/blogd/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, username, password_hash, email, name, surname
		 FROM blog_user WHERE user_id = $1`,
		userID,
	).Scan(&user.UserID, &user.Username, &user.PasswordHash, &user.Email, &user.Name, &user.Surname)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// FindByUsername はユーザー名で認証情報を検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, username, password_hash, email, name, surname
		 FROM blog_user WHERE username = $1`,
		username,
	).Scan(&user.UserID, &user.Username, &user.PasswordHash, &user.Email, &user.Name, &user.Surname)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}

	return user, nil
}

// List はuser_id昇順でskip件読み飛ばし、最大limit件のユーザーを返す。
func (r *PostgresUserRepo) List(ctx context.Context, skip, limit int) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, username, password_hash, email, name, surname
		 FROM blog_user ORDER BY user_id OFFSET $1 LIMIT $2`,
		skip, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var user model.User
		if err := rows.Scan(&user.UserID, &user.Username, &user.PasswordHash,
			&user.Email, &user.Name, &user.Surname); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return users, nil
}

// Create はユーザーを作成し、採番されたuser_idを設定して返す。
// ユーザー名が重複する場合はErrDuplicateUsernameを返す。
// 一時的な競合エラーの場合のみリトライする。一意制約違反はリトライしない。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	created := *user
	err := withTxRetry(ctx, func() error {
		return r.db.QueryRowContext(ctx,
			`INSERT INTO blog_user (username, password_hash, email, name, surname)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING user_id`,
			user.Username, user.PasswordHash, user.Email, user.Name, user.Surname,
		).Scan(&created.UserID)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &created, nil
}

// Update はユーザーの全フィールドを更新する。
// 対象が存在しない場合はErrNotFound、ユーザー名重複はErrDuplicateUsernameを返す。
func (r *PostgresUserRepo) Update(ctx context.Context, user *model.User) error {
	var result sql.Result
	err := withTxRetry(ctx, func() error {
		var execErr error
		result, execErr = r.db.ExecContext(ctx,
			`UPDATE blog_user
			 SET username = $1, password_hash = $2, email = $3, name = $4, surname = $5
			 WHERE user_id = $6`,
			user.Username, user.PasswordHash, user.Email, user.Name, user.Surname, user.UserID,
		)
		return execErr
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("failed to update user: %w", err)
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

// DeleteByID は指定IDのユーザーを削除する。
// 関連する投稿はCASCADE削除される。対象が存在しない場合はErrNotFoundを返す。
func (r *PostgresUserRepo) DeleteByID(ctx context.Context, userID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM blog_user WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
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
var _ UserRepository = (*PostgresUserRepo)(nil)
