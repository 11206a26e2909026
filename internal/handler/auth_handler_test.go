package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hitoshi/blogd/internal/auth"
	"github.com/hitoshi/blogd/internal/middleware"
)

type mockAuthService struct {
	authenticateFn func(ctx context.Context, username, plaintext string) (string, error)
}

func (m *mockAuthService) Authenticate(ctx context.Context, username, plaintext string) (string, error) {
	return m.authenticateFn(ctx, username, plaintext)
}

type mockLoginMetrics struct {
	successes int
	failures  int
}

func (m *mockLoginMetrics) RecordLoginSuccess() { m.successes++ }
func (m *mockLoginMetrics) RecordLoginFailure() { m.failures++ }

func loginRequest(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// ログイン成功時にトークンレスポンスが返ることを検証する。
func TestLogin_Success(t *testing.T) {
	service := &mockAuthService{
		authenticateFn: func(_ context.Context, username, plaintext string) (string, error) {
			if username != "alice" || plaintext != "pw" {
				t.Errorf("credentials = (%q, %q), want (alice, pw)", username, plaintext)
			}
			return "issued-token", nil
		},
	}
	metrics := &mockLoginMetrics{}
	h := NewAuthHandler(service, metrics)

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(url.Values{"username": {"alice"}, "password": {"pw"}}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.AccessToken != "issued-token" {
		t.Errorf("access_token = %q, want %q", body.AccessToken, "issued-token")
	}
	if body.TokenType != "bearer" {
		t.Errorf("token_type = %q, want %q", body.TokenType, "bearer")
	}
	if metrics.successes != 1 || metrics.failures != 0 {
		t.Errorf("metrics = %+v, want one success", metrics)
	}
}

// ユーザー不在とパスワード不一致のレスポンスが完全に同一であることを検証する。
func TestLogin_FailureResponsesAreIndistinguishable(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"ユーザー不在", auth.ErrUserNotFound},
		{"パスワード不一致", auth.ErrPasswordMismatch},
	}

	var bodies []string
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			service := &mockAuthService{
				authenticateFn: func(_ context.Context, _, _ string) (string, error) {
					return "", c.err
				},
			}
			metrics := &mockLoginMetrics{}
			h := NewAuthHandler(service, metrics)

			rec := httptest.NewRecorder()
			h.Login(rec, loginRequest(url.Values{"username": {"alice"}, "password": {"pw"}}))

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
			if metrics.failures != 1 {
				t.Errorf("failures = %d, want 1", metrics.failures)
			}
			bodies = append(bodies, rec.Body.String())
		})
	}

	if len(bodies) == 2 && bodies[0] != bodies[1] {
		t.Errorf("failure bodies differ: %q vs %q", bodies[0], bodies[1])
	}
}

// 必須パラメータ欠落が400になることを検証する。
func TestLogin_MissingCredentials_Returns400(t *testing.T) {
	service := &mockAuthService{
		authenticateFn: func(_ context.Context, _, _ string) (string, error) {
			t.Error("service must not be called for an incomplete form")
			return "", nil
		},
	}
	h := NewAuthHandler(service, nil)

	cases := []url.Values{
		{},
		{"username": {"alice"}},
		{"password": {"pw"}},
	}
	for _, form := range cases {
		rec := httptest.NewRecorder()
		h.Login(rec, loginRequest(form))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("form %v: status = %d, want %d", form, rec.Code, http.StatusBadRequest)
		}
	}
}

// サービス層の内部エラーが500になり、認証失敗と混同されないことを検証する。
func TestLogin_InternalError_Returns500(t *testing.T) {
	service := &mockAuthService{
		authenticateFn: func(_ context.Context, _, _ string) (string, error) {
			return "", errors.New("database is down")
		},
	}
	h := NewAuthHandler(service, nil)

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(url.Values{"username": {"alice"}, "password": {"pw"}}))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

// 認証済みコンテキストで自分のユーザーIDが返ることを検証する。
func TestMyUserID(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/my_user_id", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), 42))
	rec := httptest.NewRecorder()
	h.MyUserID(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "42" {
		t.Errorf("body = %q, want %q", got, "42")
	}
}
