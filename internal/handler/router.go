package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xarrijorge/kolokwa/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DB がこれを満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 運用エンドポイント
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 招待・償還・チェックイン
	InviteService  InviteServiceInterface
	SignupService  SignupServiceInterface
	CheckinService CheckinServiceInterface

	// 参加者一覧
	ParticipantLister ParticipantListerInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → SecurityHeaders → RateLimit(General) → [Auth → StaffOnly]
//
// 招待・償還・チェックイン・ログインは未認証で呼べる公開ルート。
// 参加者一覧のみスタッフ認証を要求する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS ミドルウェアを最上位に適用（全ルートに効く）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	signupHandler := NewSignupHandler(deps.InviteService)
	verifyHandler := NewVerifyHandler(deps.SignupService)
	checkinHandler := NewCheckinHandler(deps.CheckinService)
	participantHandler := NewParticipantHandler(deps.ParticipantLister)

	// --- 運用ルート（レート制限の外） ---

	// GET /health - DB接続を含む死活確認
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.PingContext(req.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// GET /metrics - Prometheusスクレイプ
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- 公開ルート ---
	// ミドルウェアスタック: RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 認証
		r.Route("/api/auth", func(r chi.Router) {
			r.Post("/", authHandler.LoginStaff)
			r.Get("/", authHandler.Me)
			r.Delete("/", authHandler.Logout)
			r.Post("/participant", authHandler.LoginParticipant)
		})

		// 招待トークンの検査・償還
		r.Route("/api/verify/{token}", func(r chi.Router) {
			r.Get("/", verifyHandler.InspectToken)
			r.Post("/", verifyHandler.RedeemToken)
		})

		r.Route("/api/events/{eventId}", func(r chi.Router) {
			// POST /api/events/{eventId}/signup - 招待送信（専用レート制限を追加）
			r.With(deps.RateLimiter.InviteMiddleware()).Post("/signup", signupHandler.RequestInvite)

			// POST /api/events/{eventId}/checkin - 受付デスクのチェックイン
			r.Post("/checkin", checkinHandler.CheckIn)

			// --- スタッフ認証が必要なルート ---
			r.Group(func(r chi.Router) {
				r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
				r.Use(middleware.NewStaffOnlyMiddleware())

				// GET /api/events/{eventId}/participants - 参加者一覧
				r.Get("/participants", participantHandler.ListParticipants)
			})
		})
	})

	return r
}
