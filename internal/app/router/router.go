package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "event_backend/internal/feature/auth/transport/handler"
	eventhandler "event_backend/internal/feature/events/transport/handler"
	reghandler "event_backend/internal/feature/registration/transport/handler"
	"event_backend/internal/platform/http/handler"
	jwtmw "event_backend/internal/platform/jwt"
	"event_backend/internal/platform/metrics"
	"event_backend/internal/shared/identity"
)

// Handlers はルーターに登録するハンドラー一式です。
type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *authhandler.AuthHandler
	Events       *eventhandler.EventHandler
	Registration *reghandler.RegistrationHandler
}

// NewRouter はルーティングを設定したgin.Engineを返します。
// corsOriginsを指定した場合のみCORSを許可します。
func NewRouter(h Handlers, verifier jwtmw.Verifier, m *metrics.Metrics, corsOrigins ...string) *gin.Engine {
	r := gin.Default()
	r.Use(m.Middleware())
	if len(corsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  corsOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Authorization", "Content-Type"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.GET("/metrics", gin.WrapH(m.Handler()))
	// 新規ユーザー登録
	r.POST("/auth/signup", h.Auth.Signup)
	// ログイン（JWT 発行）
	r.POST("/auth/login", h.Auth.Login)

	// 閲覧は匿名でも可能。トークンがあれば登録済みフラグを計算する
	public := r.Group("/events")
	public.Use(jwtmw.OptionalAuth(verifier))
	{
		public.GET("", h.Events.List)
		public.GET("/upcoming", h.Events.ListUpcoming)
		public.GET("/search", h.Events.Search)
		public.GET("/category/:category", h.Events.FilterByCategory)
		public.GET("/:id", h.Events.Get)
	}

	// 認証必須のルート
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(verifier))
	{
		auth.POST("/events", h.Events.Create)
		auth.PUT("/events/:id", h.Events.Update)
		auth.DELETE("/events/:id", h.Events.Delete)
		auth.GET("/events/mine", h.Events.ListMine)

		auth.POST("/registrations/events/:eventId", h.Registration.Register)
		auth.DELETE("/registrations/events/:eventId", h.Registration.Cancel)
		auth.GET("/registrations/me", h.Registration.ListMine)
	}

	// 管理者専用
	admin := r.Group("/events/:id")
	admin.Use(jwtmw.AuthRequired(verifier), jwtmw.RequireRole(identity.RoleAdmin))
	{
		admin.GET("/registrations", h.Registration.ListForEvent)
		admin.POST("/attendance/:userId", h.Registration.MarkAttended)
		admin.GET("/attendance", h.Registration.ListAttendance)
		admin.GET("/attendance/:userId", h.Registration.GetAttendance)
	}

	return r
}
