package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/blogd/internal/token"
)

type mockTokenDecoder struct {
	decodeFn func(tokenString string) (int64, error)
}

func (m *mockTokenDecoder) Decode(tokenString string) (int64, error) {
	return m.decodeFn(tokenString)
}

type mockTokenMetrics struct {
	reasons []string
}

func (m *mockTokenMetrics) RecordTokenRejected(reason string) {
	m.reasons = append(m.reasons, reason)
}

// 有効なトークンでユーザーIDがコンテキストに注入され、後続ハンドラが実行されることを検証する。
func TestAuthMiddleware_ValidToken_InjectsUserID(t *testing.T) {
	decoder := &mockTokenDecoder{
		decodeFn: func(tokenString string) (int64, error) {
			if tokenString != "valid-token" {
				t.Errorf("decoded token = %q, want %q", tokenString, "valid-token")
			}
			return 42, nil
		},
	}

	var gotUserID int64
	handler := NewAuthMiddleware(decoder, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := UserIDFromContext(r.Context())
		if err != nil {
			t.Errorf("expected user ID in context, got error: %v", err)
		}
		gotUserID = userID
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/my_user_id", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotUserID != 42 {
		t.Errorf("user ID = %d, want 42", gotUserID)
	}
}

// Authorizationヘッダーの形式不備がすべて401になることを検証する。
func TestAuthMiddleware_MissingOrBadHeader_Returns401(t *testing.T) {
	decoder := &mockTokenDecoder{
		decodeFn: func(string) (int64, error) {
			t.Error("decoder must not be called when the header is absent or malformed")
			return 0, nil
		},
	}
	handler := NewAuthMiddleware(decoder, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler must not be called")
	}))

	cases := []struct {
		name   string
		header string
	}{
		{"ヘッダーなし", ""},
		{"スキーム違い", "Basic dXNlcjpwYXNz"},
		{"トークン部なし", "Bearer"},
		{"トークンが空白のみ", "Bearer   "},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/my_user_id", nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

// bearerスキームが大文字小文字を区別せず受理されることを検証する。
func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	decoder := &mockTokenDecoder{
		decodeFn: func(string) (int64, error) { return 7, nil },
	}
	handler := NewAuthMiddleware(decoder, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, scheme := range []string{"Bearer", "bearer", "BEARER"} {
		req := httptest.NewRequest(http.MethodGet, "/my_user_id", nil)
		req.Header.Set("Authorization", scheme+" some-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("scheme %q: status = %d, want %d", scheme, rec.Code, http.StatusOK)
		}
	}
}

// 拒否理由によらずレスポンスが同一の401ボディになることを検証する。
// 理由の区別はメトリクスにのみ現れる。
func TestAuthMiddleware_RejectionResponsesAreUniform(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantReason string
	}{
		{"期限切れ", token.ErrExpired, "expired"},
		{"署名不正", token.ErrSignatureInvalid, "signature_invalid"},
		{"形式不正", token.ErrMalformed, "malformed"},
	}

	var bodies []string
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			decoder := &mockTokenDecoder{
				decodeFn: func(string) (int64, error) { return 0, c.err },
			}
			metrics := &mockTokenMetrics{}
			handler := NewAuthMiddleware(decoder, metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("next handler must not be called")
			}))

			req := httptest.NewRequest(http.MethodGet, "/my_user_id", nil)
			req.Header.Set("Authorization", "Bearer rejected-token")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
			if len(metrics.reasons) != 1 || metrics.reasons[0] != c.wantReason {
				t.Errorf("recorded reasons = %v, want [%s]", metrics.reasons, c.wantReason)
			}

			var body ErrorResponseBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			bodies = append(bodies, rec.Body.String())
		})
	}

	for i := 1; i < len(bodies); i++ {
		if bodies[i] != bodies[0] {
			t.Errorf("rejection bodies differ: %q vs %q", bodies[0], bodies[i])
		}
	}
}

// コンテキストにユーザーIDがない場合にUserIDFromContextがエラーを返すことを検証する。
func TestUserIDFromContext_Missing_ReturnsError(t *testing.T) {
	if _, err := UserIDFromContext(context.Background()); err == nil {
		t.Error("expected error for context without user ID")
	}
}

// ContextWithUserIDで注入した値が取得できることを検証する。
func TestContextWithUserID_Roundtrip(t *testing.T) {
	ctx := ContextWithUserID(context.Background(), 99)
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if userID != 99 {
		t.Errorf("user ID = %d, want 99", userID)
	}
}
