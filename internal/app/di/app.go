// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "event_backend/internal/feature/auth/adapters"
	authentity "event_backend/internal/feature/auth/domain/entity"
	authhandler "event_backend/internal/feature/auth/transport/handler"
	authusecase "event_backend/internal/feature/auth/usecase"
	eventadapters "event_backend/internal/feature/events/adapters"
	evententity "event_backend/internal/feature/events/domain/entity"
	eventhandler "event_backend/internal/feature/events/transport/handler"
	eventusecase "event_backend/internal/feature/events/usecase"
	"event_backend/internal/feature/notification"
	regadapters "event_backend/internal/feature/registration/adapters"
	regentity "event_backend/internal/feature/registration/domain/entity"
	reghandler "event_backend/internal/feature/registration/transport/handler"
	regusecase "event_backend/internal/feature/registration/usecase"
	"event_backend/internal/platform/cache"
	"event_backend/internal/platform/config"
	platformdb "event_backend/internal/platform/db"
	jwtmw "event_backend/internal/platform/jwt"
	"event_backend/internal/platform/metrics"
)

// Models are the tables owned by the application, in migration order.
var Models = []any{
	&authentity.User{},
	&evententity.Event{},
	&regentity.Registration{},
	&regentity.Attendance{},
}

// Migrate creates or updates every application table.
func Migrate(db *gorm.DB) error {
	return platformdb.Migrate(db, Models...)
}

// AuthService is the auth usecase including the admin-only account operations.
type AuthService interface {
	authhandler.AuthUsecase
	SetRole(ctx context.Context, email, roleName string) (*authentity.User, error)
	SetActive(ctx context.Context, email string, active bool) (*authentity.User, error)
}

// RegistrationService is the registration usecase including maintenance operations.
type RegistrationService interface {
	reghandler.RegistrationUsecase
	Reconcile(ctx context.Context, eventID uint, repair bool) (regusecase.ReconcileReport, error)
	SendReminders(ctx context.Context, window time.Duration) (int, error)
}

// App bundles the usecases shared by the HTTP server and the admin CLI.
type App struct {
	Tokens       *jwtmw.Manager
	Dispatcher   *notification.Dispatcher
	Metrics      *metrics.Metrics
	Auth         AuthService
	Events       eventhandler.EventUsecase
	Registration RegistrationService
}

// NewApp wires stores, usecases and the notification dispatcher.
// A nil rdb runs without the event cache.
func NewApp(cfg config.Config, db *gorm.DB, rdb *redis.Client, m *metrics.Metrics) (*App, error) {
	tokens, err := jwtmw.NewManager(cfg.JWT.Secret, cfg.JWT.TTL)
	if err != nil {
		return nil, err
	}
	dispatcher := NewDispatcher(cfg.Mail, m)

	users := authadapters.NewUserRepository(db)
	registrations := regadapters.NewRegistrationRepository(db)
	events := cache.NewCachingEventRepository(rdb, cfg.Redis.CacheTTL, eventadapters.NewEventRepository(db), "events")

	return &App{
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Metrics:    m,
		Auth:       authusecase.NewAuthUsecase(users, tokens, dispatcher),
		Events:     eventusecase.NewEventUsecase(events, registrations, users),
		Registration: regusecase.NewRegistrationUsecase(registrations, events, users, dispatcher,
			regusecase.WithEventInvalidator(events),
			regusecase.WithRecorder(m),
		),
	}, nil
}
