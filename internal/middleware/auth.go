// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/blogd/internal/model"
	"github.com/hitoshi/blogd/internal/token"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// TokenDecoder はトークン検証に必要なインターフェース。
// token.Codecの部分集合として定義する。
type TokenDecoder interface {
	Decode(tokenString string) (int64, error)
}

// TokenMetricsRecorder はトークン拒否の内部診断メトリクスを記録する。
type TokenMetricsRecorder interface {
	RecordTokenRejected(reason string)
}

// NewAuthMiddleware はAuthorization: Bearerヘッダーからトークンを読み取り、
// 検証するミドルウェアを返す。検証はトークンと設定のみに依存し、I/Oを行わない。
// 認証済みユーザーIDをリクエストコンテキストに注入する。
// 期限切れ・改ざん・形式不正はすべて同一の401として応答し、
// 失敗理由はログとメトリクスにのみ残す。
// recorderはnilでもよい。
func NewAuthMiddleware(decoder TokenDecoder, recorder TokenMetricsRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Authorizationヘッダーからbearerトークンを取得
			rawToken, ok := bearerToken(r)
			if !ok {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 2. トークンの検証（DBアクセスなし・キャッシュなし）
			userID, err := decoder.Decode(rawToken)
			if err != nil {
				reason := rejectReason(err)
				slog.Info("token rejected", slog.String("reason", reason))
				if recorder != nil {
					recorder.RecordTokenRejected(reason)
				}
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 3. 認証済みユーザーIDをコンテキストに注入
			// 外側のロギングミドルウェアにもホルダー経由で伝える
			fillAuthenticatedUserID(r.Context(), userID)
			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken はAuthorizationヘッダーからbearerトークンを取り出す。
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, rawToken, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return "", false
	}
	return rawToken, true
}

// rejectReason はトークン検証エラーを内部診断用の理由ラベルに変換する。
// このラベルを外部レスポンスに含めてはならない。
func rejectReason(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "expired"
	case errors.Is(err, token.ErrSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, token.ErrMalformed):
		return "malformed"
	default:
		return "unknown"
	}
}

// UserIDFromContext はリクエストコンテキストから認証済みユーザーIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	if !ok || userID <= 0 {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
