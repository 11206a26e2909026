// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/blogd/internal/auth"
	"github.com/hitoshi/blogd/internal/middleware"
	"github.com/hitoshi/blogd/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Authenticate はユーザー名とパスワードを検証し、アクセストークンを発行する。
	Authenticate(ctx context.Context, username, plaintext string) (string, error)
}

// LoginMetricsRecorder はログイン結果のメトリクスを記録する。
type LoginMetricsRecorder interface {
	RecordLoginSuccess()
	RecordLoginFailure()
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	recorder LoginMetricsRecorder
}

// NewAuthHandler はAuthHandlerを生成する。recorderはnilでもよい。
func NewAuthHandler(service AuthServiceInterface, recorder LoginMetricsRecorder) *AuthHandler {
	return &AuthHandler{
		service:  service,
		recorder: recorder,
	}
}

// tokenResponse はログイン成功時のレスポンス。
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login はフォームエンコードされたユーザー名・パスワードを検証し、トークンを返す。
// POST /api/v1/token
// ユーザー不在とパスワード不一致はどちらも同一の401として応答する。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("フォームを解析できません"))
		return
	}

	username := r.PostFormValue("username")
	plaintext := r.PostFormValue("password")
	if username == "" || plaintext == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("usernameとpasswordは必須です"))
		return
	}

	tokenString, err := h.service.Authenticate(r.Context(), username, plaintext)
	if err != nil {
		if auth.IsAuthFailure(err) {
			// 失敗の内訳はログのみに残す。パスワードはログに含めない。
			slog.Info("failed authentication", slog.String("username", username))
			if h.recorder != nil {
				h.recorder.RecordLoginFailure()
			}
			writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthFailedError())
			return
		}
		handleServiceError(w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecordLoginSuccess()
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: tokenString,
		TokenType:   "bearer",
	})
}

// MyUserID は認証済みユーザー自身のIDを返す。認証の疎通確認用。
// GET /api/v1/my_user_id
func (h *AuthHandler) MyUserID(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(userID)
}
