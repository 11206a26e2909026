package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/blogd/internal/middleware"
	"github.com/hitoshi/blogd/internal/model"
	"github.com/hitoshi/blogd/internal/post"
)

// 投稿入力のバリデーション上限
const (
	maxTitleLen = 300
	maxBodyLen  = 10000
)

// PostServiceInterface は投稿ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	List(ctx context.Context, skip, limit int) ([]model.Post, error)
	Get(ctx context.Context, postID int64) (*model.Post, error)
	Create(ctx context.Context, callerID int64, title, body string) (*model.Post, error)
	Update(ctx context.Context, callerID, postID int64, params post.UpdateParams) (*model.Post, error)
	Delete(ctx context.Context, callerID, postID int64) error
}

// PostHandler は投稿管理のHTTPハンドラー。
type PostHandler struct {
	service PostServiceInterface
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface) *PostHandler {
	return &PostHandler{
		service: service,
	}
}

// createPostRequest は投稿作成リクエストのJSON形式。
// user_idフィールドは受け付けない。所有者は認証済みユーザーに固定される。
type createPostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// updatePostRequest は投稿更新リクエストのJSON形式。省略されたフィールドは変更しない。
type updatePostRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// ListPosts は投稿一覧を返す。
// GET /api/v1/posts?skip=0&limit=10
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	skip, limit, ok := pagination(r)
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("skipは0以上、limitは1以上を指定してください"))
		return
	}

	posts, err := h.service.List(r.Context(), skip, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if posts == nil {
		posts = []model.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// GetPost は指定IDの投稿を返す。
// GET /api/v1/posts/{post_id}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(r, "post_id")
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("post_idは正の整数を指定してください"))
		return
	}

	found, err := h.service.Get(r.Context(), postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, found)
}

// CreatePost は新規投稿を作成する。所有者は認証済みユーザーになる。
// POST /api/v1/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("JSONを解析できません"))
		return
	}

	if req.Title == "" || len(req.Title) > maxTitleLen {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("titleは1〜300文字で指定してください"))
		return
	}
	if len(req.Body) > maxBodyLen {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("bodyは10000文字以内で指定してください"))
		return
	}

	created, err := h.service.Create(r.Context(), callerID, req.Title, req.Body)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// UpdatePost は投稿のタイトル・本文を更新する。所有者のみ実行できる。
// PUT /api/v1/posts/{post_id}
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	postID, ok := pathID(r, "post_id")
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("post_idは正の整数を指定してください"))
		return
	}

	var req updatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("JSONを解析できません"))
		return
	}

	if req.Title != nil && (*req.Title == "" || len(*req.Title) > maxTitleLen) {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("titleは1〜300文字で指定してください"))
		return
	}
	if req.Body != nil && len(*req.Body) > maxBodyLen {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("bodyは10000文字以内で指定してください"))
		return
	}

	updated, err := h.service.Update(r.Context(), callerID, postID, post.UpdateParams{
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeletePost は投稿を削除する。所有者のみ実行できる。
// DELETE /api/v1/posts/{post_id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	postID, ok := pathID(r, "post_id")
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("post_idは正の整数を指定してください"))
		return
	}

	if err := h.service.Delete(r.Context(), callerID, postID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
