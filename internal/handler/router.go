package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/blogd/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenDecoder      middleware.TokenDecoder
	CORSAllowedOrigin string
	Logger            *slog.Logger

	// メトリクス（nilの場合は記録しない）
	HTTPMetrics  middleware.HTTPMetricsRecorder
	TokenMetrics middleware.TokenMetricsRecorder
	LoginMetrics LoginMetricsRecorder

	// サービス
	AuthService AuthServiceInterface
	UserService UserServiceInterface
	PostService PostServiceInterface

	// 運用
	HealthChecker  HealthChecker
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Logging → (認証ルートのみ) Auth
//
// 閲覧系（ユーザー・投稿の取得）とユーザー登録・ログインは認証不要。
// すべての変更系操作は認証ミドルウェアの内側に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.HTTPMetrics))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.LoginMetrics)
	userHandler := NewUserHandler(deps.UserService)
	postHandler := NewPostHandler(deps.PostService)

	r.Route("/api/v1", func(r chi.Router) {
		// --- 認証不要のルート ---

		// ログイン（トークン発行）
		r.Post("/token", authHandler.Login)

		// ユーザー登録と閲覧
		r.Post("/users", userHandler.CreateUser)
		r.Get("/users", userHandler.ListUsers)
		r.Get("/users/{user_id}", userHandler.GetUser)

		// 投稿の閲覧
		r.Get("/posts", postHandler.ListPosts)
		r.Get("/posts/{post_id}", postHandler.GetPost)

		// --- 認証が必要なルート ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthMiddleware(deps.TokenDecoder, deps.TokenMetrics))

			// 認証の疎通確認
			r.Get("/my_user_id", authHandler.MyUserID)

			// 自分自身のユーザー管理
			r.Put("/users/me", userHandler.UpdateMe)
			r.Delete("/users/me", userHandler.DeleteMe)

			// 投稿の変更系（所有者チェックはサービス層で行う）
			r.Post("/posts", postHandler.CreatePost)
			r.Put("/posts/{post_id}", postHandler.UpdatePost)
			r.Delete("/posts/{post_id}", postHandler.DeletePost)
		})
	})

	// --- 運用ルート ---
	r.Get("/healthz", healthzHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	return r
}

// healthzHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func healthzHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("healthcheck failed", slog.String("error", err.Error()))
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
