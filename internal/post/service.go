// Package post は投稿管理のビジネスロジックと所有者認可を提供する。
package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/blogd/internal/model"
	"github.com/hitoshi/blogd/internal/repository"
	"github.com/microcosm-cc/bluemonday"
)

// Service は投稿に関するビジネスロジックを提供する。
type Service struct {
	posts     repository.PostRepository
	sanitizer *bluemonday.Policy
}

// NewService はServiceを生成する。
// 投稿本文はUGCポリシーでサニタイズしてから保存する。
// scriptタグやon*イベント属性を除去し、XSSを防ぐ。
func NewService(posts repository.PostRepository) *Service {
	return &Service{
		posts:     posts,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// UpdateParams は投稿更新の入力。nilのフィールドは変更しない。
// 所有者（user_id）は更新できない。
type UpdateParams struct {
	Title *string
	Body  *string
}

// List は投稿一覧を返す。
func (s *Service) List(ctx context.Context, skip, limit int) ([]model.Post, error) {
	posts, err := s.posts.List(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Get は指定IDの投稿を返す。
func (s *Service) Get(ctx context.Context, postID int64) (*model.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(postID)
	}
	return post, nil
}

// Create は新規投稿を作成する。
// 所有者は認証済みユーザー（callerID）に固定する。
// クライアントが指定したuser_idを信用してはならない。
func (s *Service) Create(ctx context.Context, callerID int64, title, body string) (*model.Post, error) {
	created, err := s.posts.Create(ctx, &model.Post{
		UserID: callerID,
		Title:  title,
		Body:   s.sanitizer.Sanitize(body),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNoSuchUser) {
			// トークンは有効だがユーザーが既に削除されている場合
			return nil, model.NewNoSuchUserError()
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	slog.Info("post created",
		slog.Int64("post_id", created.PostID),
		slog.Int64("user_id", callerID),
	)
	return created, nil
}

// Update は投稿のタイトル・本文を更新する。
// 存在確認（404）を所有者確認（403）より先に行う。
// 不在を権限エラーとして報告してはならず、その逆も同様。
func (s *Service) Update(ctx context.Context, callerID, postID int64, params UpdateParams) (*model.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(postID)
	}

	if err := authorizeMutation(post.UserID, callerID); err != nil {
		slog.Info("post mutation denied",
			slog.Int64("post_id", postID),
			slog.Int64("owner_id", post.UserID),
			slog.Int64("caller_id", callerID),
		)
		return nil, model.NewNotPostOwnerError(postID)
	}

	if params.Title != nil {
		post.Title = *params.Title
	}
	if params.Body != nil {
		post.Body = s.sanitizer.Sanitize(*params.Body)
	}

	if err := s.posts.UpdateContent(ctx, postID, post.Title, post.Body); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// 存在確認後に削除された場合
			return nil, model.NewPostNotFoundError(postID)
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return post, nil
}

// Delete は投稿を削除する。存在確認と所有者確認の順序はUpdateと同じ。
func (s *Service) Delete(ctx context.Context, callerID, postID int64) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to find post: %w", err)
	}
	if post == nil {
		return model.NewPostNotFoundError(postID)
	}

	if err := authorizeMutation(post.UserID, callerID); err != nil {
		slog.Info("post mutation denied",
			slog.Int64("post_id", postID),
			slog.Int64("owner_id", post.UserID),
			slog.Int64("caller_id", callerID),
		)
		return model.NewNotPostOwnerError(postID)
	}

	if err := s.posts.DeleteByID(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewPostNotFoundError(postID)
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	slog.Info("post deleted",
		slog.Int64("post_id", postID),
		slog.Int64("user_id", callerID),
	)
	return nil
}

// errNotOwner は所有者不一致を表す内部エラー。
var errNotOwner = errors.New("caller is not the resource owner")

// authorizeMutation は投稿の所有者と呼び出し元の同一性を確認する。
// 対象リソースの存在が確認された後でのみ呼ぶこと。
func authorizeMutation(ownerID, callerID int64) error {
	if ownerID != callerID {
		return errNotOwner
	}
	return nil
}
