// Package user はユーザー管理のビジネスロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/blogd/internal/model"
	"github.com/hitoshi/blogd/internal/password"
	"github.com/hitoshi/blogd/internal/repository"
)

// Service はユーザー管理に関するビジネスロジックを提供する。
type Service struct {
	users  repository.UserRepository
	hasher *password.Hasher
}

// NewService はServiceを生成する。
func NewService(users repository.UserRepository, hasher *password.Hasher) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
	}
}

// CreateParams はユーザー作成の入力。
type CreateParams struct {
	Username string
	Password string
	Email    string
	Name     string
	Surname  string
}

// UpdateParams はユーザー更新の入力。nilのフィールドは変更しない。
type UpdateParams struct {
	Username *string
	Password *string
	Email    *string
	Name     *string
	Surname  *string
}

// List はユーザー一覧を公開情報として返す。
func (s *Service) List(ctx context.Context, skip, limit int) ([]model.VisibleUserInfo, error) {
	users, err := s.users.List(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	infos := make([]model.VisibleUserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, users[i].Visible())
	}
	return infos, nil
}

// Get は指定IDのユーザーの公開情報を返す。
func (s *Service) Get(ctx context.Context, userID int64) (*model.VisibleUserInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	info := user.Visible()
	return &info, nil
}

// Create は新規ユーザーを登録する。
// パスワードのハッシュ化はDB書き込みの前に完了させる。平文は永続化しない。
func (s *Service) Create(ctx context.Context, params CreateParams) (*model.VisibleUserInfo, error) {
	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, mapHashError(err)
	}

	created, err := s.users.Create(ctx, &model.User{
		Username:     params.Username,
		PasswordHash: hash,
		Email:        params.Email,
		Name:         params.Name,
		Surname:      params.Surname,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			slog.Info("duplicate user creation attempt", slog.String("username", params.Username))
			return nil, model.NewDuplicateUserError(params.Username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user created",
		slog.Int64("user_id", created.UserID),
		slog.String("username", created.Username),
	)
	info := created.Visible()
	return &info, nil
}

// Update は認証済みユーザー自身の情報を更新する。
// callerIDは認証ミドルウェアで解決されたユーザーIDであること。
// 他ユーザーのIDを対象にすることはAPI構造上できない。
func (s *Service) Update(ctx context.Context, callerID int64, params UpdateParams) (*model.VisibleUserInfo, error) {
	user, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(callerID)
	}

	if params.Username != nil {
		user.Username = *params.Username
	}
	if params.Password != nil {
		hash, err := s.hasher.Hash(*params.Password)
		if err != nil {
			return nil, mapHashError(err)
		}
		user.PasswordHash = hash
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.Surname != nil {
		user.Surname = *params.Surname
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, model.NewUserNotFoundError(callerID)
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, model.NewDuplicateUserError(user.Username)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	info := user.Visible()
	return &info, nil
}

// Delete は認証済みユーザー自身のアカウントを削除する。
// 関連する投稿はDB側でCASCADE削除される。
func (s *Service) Delete(ctx context.Context, callerID int64) error {
	if err := s.users.DeleteByID(ctx, callerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewUserNotFoundError(callerID)
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("user deleted", slog.Int64("user_id", callerID))
	return nil
}

// mapHashError はハッシュ化の入力エラーをAPIエラーに変換する。
func mapHashError(err error) error {
	switch {
	case errors.Is(err, password.ErrNullInPassword):
		return model.NewInvalidPasswordError("ヌル文字を含めることはできません")
	case errors.Is(err, password.ErrPasswordTooLong):
		return model.NewInvalidPasswordError("長すぎます（72バイト以内）")
	}
	return fmt.Errorf("failed to hash password: %w", err)
}
