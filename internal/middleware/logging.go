package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// authenticatedUserID は認証済みユーザーIDをミドルウェア間で受け渡す入れ物。
// ロギングミドルウェアは認証ミドルウェアより外側で動くため、
// 内側で確定するユーザーIDを外側のログに載せるには、
// 派生コンテキストではなく可変ホルダーで橋渡しする必要がある。
type authenticatedUserID struct {
	id int64
}

// authUserIDHolderKey はホルダーをコンテキストに格納するためのキー。
var authUserIDHolderKey = contextKey("authenticated_user_id_holder")

// fillAuthenticatedUserID はコンテキスト内のホルダーにユーザーIDを書き込む。
// ホルダーがない場合（ロギングミドルウェアの外で使われた場合）は何もしない。
func fillAuthenticatedUserID(ctx context.Context, userID int64) {
	if holder, ok := ctx.Value(authUserIDHolderKey).(*authenticatedUserID); ok {
		holder.id = userID
	}
}

// statusRecorder はhttp.ResponseWriterをラップし、ステータスコードを記録する。
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

// WriteHeader はステータスコードを記録してから委譲する。
func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

// Write はデータを書き込む。WriteHeaderが未呼び出しの場合は200を記録する。
func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// HTTPMetricsRecorder はリクエスト単位のメトリクスを記録する。
type HTTPMetricsRecorder interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// NewLoggingMiddleware はリクエストのJSON構造化ログを出力するミドルウェアを返す。
// ログにはrequest_id、method、path、status、duration_ms、user_id（認証済みの場合）を含む。
// recorderはnilでもよい。
func NewLoggingMiddleware(logger *slog.Logger, recorder HTTPMetricsRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := uuid.New().String()

			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			// 内側の認証ミドルウェアが書き込むホルダーを仕込む
			holder := &authenticatedUserID{}
			r = r.WithContext(context.WithValue(r.Context(), authUserIDHolderKey, holder))

			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			durationMs := float64(duration.Nanoseconds()) / float64(time.Millisecond)

			if recorder != nil {
				recorder.RecordHTTPStatus(rec.statusCode)
				recorder.RecordRequestLatency(duration)
			}

			attrs := []slog.Attr{
				slog.String("request_id", requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.statusCode),
				slog.Float64("duration_ms", durationMs),
			}

			// 認証ミドルウェアを通過したリクエストにはユーザーIDを追加
			if holder.id > 0 {
				attrs = append(attrs, slog.Int64("user_id", holder.id))
			}

			// slogのログレベルをステータスコードに応じて変更
			level := slog.LevelInfo
			if rec.statusCode >= 500 {
				level = slog.LevelError
			} else if rec.statusCode >= 400 {
				level = slog.LevelWarn
			}

			// slog.Attr をany スライスに変換
			args := make([]any, len(attrs))
			for i, attr := range attrs {
				args[i] = attr
			}

			logger.Log(r.Context(), level, "http_request", args...)
		})
	}
}
