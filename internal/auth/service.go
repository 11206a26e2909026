// Package auth は認証（パスワード検証とトークン発行）のビジネスロジックを提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/blogd/internal/model"
	"github.com/hitoshi/blogd/internal/password"
	"github.com/hitoshi/blogd/internal/token"
)

var (
	// ErrUserNotFound は指定ユーザー名の認証情報が存在しない場合に返される。
	ErrUserNotFound = errors.New("user not found")

	// ErrPasswordMismatch はパスワードが保存済みハッシュと一致しない場合に返される。
	ErrPasswordMismatch = errors.New("password does not match")
)

// ErrUserNotFoundとErrPasswordMismatchの区別は内部ログ専用。
// 呼び出し側は両方を同一の認証失敗として外部に返さなければならない。

// CredentialFinder は認証に必要なユーザー検索インターフェース。
// repository.UserRepositoryの部分集合として定義する。
type CredentialFinder interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	users CredentialFinder
	codec *token.Codec
}

// NewService はServiceを生成する。
func NewService(users CredentialFinder, codec *token.Codec) *Service {
	return &Service{
		users: users,
		codec: codec,
	}
}

// Authenticate はユーザー名とパスワードを検証し、アクセストークンを発行する。
// パスワード検証はCPUバウンドなため、DB読み取りの完了後に行う。
// トランザクションを跨いで実行してはならない。
func (s *Service) Authenticate(ctx context.Context, username, plaintext string) (string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("failed to look up credential: %w", err)
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	if !password.Verify(plaintext, user.PasswordHash) {
		return "", ErrPasswordMismatch
	}

	tokenString, err := s.codec.Encode(user.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to encode token: %w", err)
	}

	slog.Info("user authenticated",
		slog.Int64("user_id", user.UserID),
		slog.String("username", username),
	)
	return tokenString, nil
}

// IsAuthFailure は認証失敗（ユーザー不在またはパスワード不一致）かどうかを判定する。
// 両者は外部に対して区別せず、同一の認証エラーとして扱う。
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrPasswordMismatch)
}
