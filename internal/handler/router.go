package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/nomicho/internal/metrics"
	"github.com/hitoshi/nomicho/internal/middleware"
)

// HealthChecker はDB疎通確認のインターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	MetricsGatherer   prometheus.Gatherer
	StatusRecorder    middleware.StatusRecorder
	Logger            *slog.Logger
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ドメインサービス
	UserService        UserServiceInterface
	HouseService       HouseServiceInterface
	DrinkService       DrinkServiceInterface
	ConsumptionService ConsumptionServiceInterface
	DebtService        DebtServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging → CORS → Session → RateLimit(General)
//
// 認証ルート（/auth/*）はセッション検証の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効くミドルウェア
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r.Use(middleware.NewLoggingMiddleware(logger, deps.StatusRecorder))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	userHandler := NewUserHandler(deps.UserService)
	houseHandler := NewHouseHandler(deps.HouseService)
	drinkHandler := NewDrinkHandler(deps.DrinkService)
	consumptionHandler := NewConsumptionHandler(deps.ConsumptionService)
	debtHandler := NewDebtHandler(deps.DebtService)

	// --- 認証不要のルート ---

	// ヘルスチェック（Dockerヘルスチェックと監視用）
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.PingContext(req.Context()); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheusスクレイプ用エンドポイント
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// ユーザー管理
		r.Route("/api/users", func(r chi.Router) {
			r.Get("/search", userHandler.Search)
			r.Delete("/me", userHandler.Withdraw)
		})

		// ハウス管理
		r.Route("/api/houses", func(r chi.Router) {
			r.Get("/", houseHandler.List)
			r.Post("/", houseHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", houseHandler.Get)
				r.Patch("/", houseHandler.Update)
				r.Delete("/", houseHandler.Delete)

				// GET /api/houses/{id}/shopping-list - 買い出しリスト
				r.Get("/shopping-list", drinkHandler.ShoppingList)
				// GET /api/houses/{id}/debts - 立替金集計
				r.Get("/debts", debtHandler.MemberDebts)
			})
		})

		// ドリンク管理
		r.Route("/api/drinks", func(r chi.Router) {
			r.Get("/", drinkHandler.List)
			r.Post("/", drinkHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", drinkHandler.Get)
				r.Patch("/", drinkHandler.Update)
				r.Delete("/", drinkHandler.Delete)
				r.Post("/restock", drinkHandler.Restock)
			})
		})

		// 消費記録
		r.Route("/api/consumptions", func(r chi.Router) {
			// POST /api/consumptions - 消費記録（記録専用レート制限を追加）
			r.With(deps.RateLimiter.RecordingMiddleware()).Post("/", consumptionHandler.Record)

			r.Get("/", consumptionHandler.List)
			r.Get("/recent", consumptionHandler.Recent)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", consumptionHandler.Get)
				r.Patch("/", consumptionHandler.Update)
				r.Delete("/", consumptionHandler.Delete)
			})
		})
	})

	return r
}
