package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/blogd/internal/middleware"
	"github.com/hitoshi/blogd/internal/model"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
// フォーマットの定義はmiddleware.ErrorResponseBodyの一箇所に集約されており、
// ハンドラーとミドルウェアのエラーレスポンスは常に同じ形になる。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
// 認証失敗（AUTH_FAILED、UNAUTHORIZED）の集約はサービス層で完了しているため、
// ここでは区別のない401を返すだけでよい。
// 不在（404）と権限（403）は意図的に区別して返す。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeAuthFailed, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeNotPostOwner:
		return http.StatusForbidden
	case model.ErrCodeUserNotFound, model.ErrCodePostNotFound, model.ErrCodeNoSuchUser:
		return http.StatusNotFound
	case model.ErrCodeDuplicateUser:
		return http.StatusConflict
	case model.ErrCodeInvalidPassword, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// pathID はURLパスパラメータを正のint64として解析する。
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pagination はskip/limitクエリパラメータを解析する。
// skipは0以上（デフォルト0）、limitは1以上（デフォルト10）。
func pagination(r *http.Request) (skip, limit int, ok bool) {
	skip, limit = 0, 10

	if v := r.URL.Query().Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, false
		}
		skip = n
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return 0, 0, false
		}
		limit = n
	}
	return skip, limit, true
}
