package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/blogd/internal/middleware"
	"github.com/hitoshi/blogd/internal/model"
	"github.com/hitoshi/blogd/internal/user"
)

// ユーザー入力のバリデーション上限
const (
	maxUsernameLen = 250
	maxPasswordLen = 300
	maxEmailLen    = 254
	maxNameLen     = 100
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	List(ctx context.Context, skip, limit int) ([]model.VisibleUserInfo, error)
	Get(ctx context.Context, userID int64) (*model.VisibleUserInfo, error)
	Create(ctx context.Context, params user.CreateParams) (*model.VisibleUserInfo, error)
	Update(ctx context.Context, callerID int64, params user.UpdateParams) (*model.VisibleUserInfo, error)
	Delete(ctx context.Context, callerID int64) error
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// createUserRequest はユーザー登録リクエストのJSON形式。
type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
}

// updateUserRequest はユーザー更新リクエストのJSON形式。省略されたフィールドは変更しない。
type updateUserRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Surname  *string `json:"surname"`
}

// ListUsers はユーザー一覧を返す。
// GET /api/v1/users?skip=0&limit=10
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	skip, limit, ok := pagination(r)
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("skipは0以上、limitは1以上を指定してください"))
		return
	}

	users, err := h.service.List(r.Context(), skip, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if users == nil {
		users = []model.VisibleUserInfo{}
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUser は指定IDのユーザーを返す。
// GET /api/v1/users/{user_id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "user_id")
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("user_idは正の整数を指定してください"))
		return
	}

	info, err := h.service.Get(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// CreateUser は新規ユーザーを登録する。認証不要。
// POST /api/v1/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("JSONを解析できません"))
		return
	}

	if reason, ok := validateCreateUser(&req); !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError(reason))
		return
	}

	info, err := h.service.Create(r.Context(), user.CreateParams{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Name:     req.Name,
		Surname:  req.Surname,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, info)
}

// UpdateMe は認証済みユーザー自身の情報を更新する。
// PUT /api/v1/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("JSONを解析できません"))
		return
	}

	if reason, ok := validateUpdateUser(&req); !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError(reason))
		return
	}

	info, err := h.service.Update(r.Context(), callerID, user.UpdateParams{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Name:     req.Name,
		Surname:  req.Surname,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// DeleteMe は認証済みユーザー自身のアカウントを削除する。
// DELETE /api/v1/users/me
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Delete(r.Context(), callerID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// validateCreateUser はユーザー登録の入力を検証する。
func validateCreateUser(req *createUserRequest) (string, bool) {
	if req.Username == "" || len(req.Username) > maxUsernameLen {
		return "usernameは1〜250文字で指定してください", false
	}
	if req.Password == "" || len(req.Password) > maxPasswordLen {
		return "passwordは1〜300文字で指定してください", false
	}
	if len(req.Email) > maxEmailLen {
		return "emailが長すぎます", false
	}
	if len(req.Name) > maxNameLen || len(req.Surname) > maxNameLen {
		return "nameとsurnameは100文字以内で指定してください", false
	}
	return "", true
}

// validateUpdateUser はユーザー更新の入力を検証する。
func validateUpdateUser(req *updateUserRequest) (string, bool) {
	if req.Username != nil && (*req.Username == "" || len(*req.Username) > maxUsernameLen) {
		return "usernameは1〜250文字で指定してください", false
	}
	if req.Password != nil && (*req.Password == "" || len(*req.Password) > maxPasswordLen) {
		return "passwordは1〜300文字で指定してください", false
	}
	if req.Email != nil && len(*req.Email) > maxEmailLen {
		return "emailが長すぎます", false
	}
	if req.Name != nil && len(*req.Name) > maxNameLen {
		return "nameは100文字以内で指定してください", false
	}
	if req.Surname != nil && len(*req.Surname) > maxNameLen {
		return "surnameは100文字以内で指定してください", false
	}
	return "", true
}
