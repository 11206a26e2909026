package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/blogd/internal/middleware"
	"github.com/hitoshi/blogd/internal/model"
)

// ハンドラーが書くエラーレスポンスがミドルウェアと同一の統一フォーマットで
// あることを検証する。フォーマット定義はmiddleware.ErrorResponseBodyの一箇所のみ。
func TestWriteAPIErrorResponse_MatchesMiddlewareFormat(t *testing.T) {
	apiErr := model.NewDuplicateUserError("alice")

	handlerRec := httptest.NewRecorder()
	writeAPIErrorResponse(handlerRec, http.StatusConflict, apiErr)

	middlewareRec := httptest.NewRecorder()
	middleware.WriteErrorResponse(middlewareRec, http.StatusConflict, apiErr)

	if handlerRec.Body.String() != middlewareRec.Body.String() {
		t.Errorf("handler and middleware error bodies differ:\n  handler:    %s\n  middleware: %s",
			handlerRec.Body.String(), middlewareRec.Body.String())
	}

	var body middleware.ErrorResponseBody
	if err := json.Unmarshal(handlerRec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Code != model.ErrCodeDuplicateUser || body.Category == "" || body.Action == "" {
		t.Errorf("body = %+v, want populated unified fields", body)
	}
}

// APIError以外のエラーが詳細を漏らさない統一の500になることを検証する。
func TestHandleServiceError_NonAPIError_Returns500(t *testing.T) {
	rec := httptest.NewRecorder()
	handleServiceError(rec, errors.New("pq: connection reset"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var body middleware.ErrorResponseBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want INTERNAL_ERROR", body.Code)
	}
	if strings.Contains(rec.Body.String(), "connection reset") {
		t.Error("internal error detail leaked to the response body")
	}
}

// エラーコードからHTTPステータスコードへのマッピングを検証する。
// 不在（404）と権限（403）を区別し、認証失敗は一律401にする。
func TestMapAPIErrorToHTTPStatus(t *testing.T) {
	cases := []struct {
		apiErr *model.APIError
		want   int
	}{
		{model.NewAuthFailedError(), http.StatusUnauthorized},
		{model.NewUnauthorizedError(), http.StatusUnauthorized},
		{model.NewNotPostOwnerError(1), http.StatusForbidden},
		{model.NewUserNotFoundError(1), http.StatusNotFound},
		{model.NewPostNotFoundError(1), http.StatusNotFound},
		{model.NewNoSuchUserError(), http.StatusNotFound},
		{model.NewDuplicateUserError("alice"), http.StatusConflict},
		{model.NewInvalidPasswordError("x"), http.StatusBadRequest},
		{model.NewInvalidRequestError("x"), http.StatusBadRequest},
		{&model.APIError{Code: "SOMETHING_ELSE"}, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := mapAPIErrorToHTTPStatus(c.apiErr); got != c.want {
			t.Errorf("mapAPIErrorToHTTPStatus(%s) = %d, want %d", c.apiErr.Code, got, c.want)
		}
	}
}

// skip/limitクエリの解析を検証する。
func TestPagination(t *testing.T) {
	cases := []struct {
		query     string
		wantSkip  int
		wantLimit int
		wantOK    bool
	}{
		{"", 0, 10, true},
		{"?skip=5", 5, 10, true},
		{"?limit=3", 0, 3, true},
		{"?skip=5&limit=3", 5, 3, true},
		{"?skip=0&limit=1", 0, 1, true},
		{"?skip=-1", 0, 0, false},
		{"?limit=0", 0, 0, false},
		{"?limit=-3", 0, 0, false},
		{"?skip=abc", 0, 0, false},
		{"?limit=xyz", 0, 0, false},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/posts"+c.query, nil)
		skip, limit, ok := pagination(req)
		if ok != c.wantOK {
			t.Errorf("query %q: ok = %t, want %t", c.query, ok, c.wantOK)
			continue
		}
		if ok && (skip != c.wantSkip || limit != c.wantLimit) {
			t.Errorf("query %q: (skip, limit) = (%d, %d), want (%d, %d)",
				c.query, skip, limit, c.wantSkip, c.wantLimit)
		}
	}
}
