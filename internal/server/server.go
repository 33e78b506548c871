// Package server assembles the HTTP router and the background jobs from
// their dependencies.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"servicehub/internal/database"
	"servicehub/internal/domain/auth"
	"servicehub/internal/domain/booking"
	"servicehub/internal/domain/catalog"
	"servicehub/internal/domain/chat"
	"servicehub/internal/domain/payment"
	"servicehub/internal/domain/profile"
	"servicehub/internal/domain/provider"
	"servicehub/internal/domain/upload"
	"servicehub/internal/domain/user"
	"servicehub/internal/metrics"
	"servicehub/internal/middleware"
	jwtsvc "servicehub/internal/pkg/jwt"
)

// Models lists every persisted model in migration order.
func Models() []any {
	return []any{
		&user.User{},
		&catalog.Category{},
		&catalog.Service{},
		&provider.Offering{},
		&booking.Booking{},
		&chat.Chat{},
		&chat.Message{},
	}
}

type Options struct {
	AllowedOrigins  []string
	RateLimitPerMin int
	CatalogCacheTTL time.Duration
	PaymentCurrency string
	ReminderWindow  time.Duration
}

// Deps are the external collaborators. Cache may be nil.
type Deps struct {
	DB       *gorm.DB
	JWT      *jwtsvc.Service
	Cache    catalog.Cache
	Payments payment.Gateway
	Store    upload.Store
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
}

// App is a wired application: the router plus the pieces main needs to
// start and stop.
type App struct {
	Router    *gin.Engine
	Catalog   *catalog.CatalogService
	Reminders *booking.Reminders
}

func New(opts Options, d Deps) (*App, error) {
	sqlxDB, err := database.SQLX(d.DB)
	if err != nil {
		return nil, fmt.Errorf("sqlx: %w", err)
	}

	userRepo := user.NewRepository(d.DB)
	tokens := auth.NewTokenIssuer(userRepo, d.JWT)

	authHandler := auth.NewHandler(auth.NewService(userRepo, tokens, d.Logger), d.Logger)

	catalogRepo := catalog.NewRepository(d.DB)
	catalogService := catalog.NewService(catalogRepo, d.Cache, opts.CatalogCacheTTL, d.Logger, d.Metrics)
	catalogHandler := catalog.NewHandler(catalogService, d.Logger)

	providerService := provider.NewService(provider.NewRepository(d.DB), catalogRepo, tokens, d.Logger)
	providerHandler := provider.NewHandler(providerService, d.Logger)

	paymentHandler := payment.NewHandler(d.Payments, opts.PaymentCurrency, d.Logger, d.Metrics)

	hub := chat.NewHub(d.Logger, d.Metrics)
	chatService := chat.NewService(chat.NewRepository(d.DB), hub, d.Logger, d.Metrics)
	chatHandler := chat.NewHandler(chatService, d.Logger)
	wsHandler := chat.NewWSHandler(hub, d.JWT, chatService, opts.AllowedOrigins, d.Logger)

	bookingRepo := booking.NewRepository(d.DB)
	bookingService := booking.NewService(bookingRepo, booking.NewDashboardReader(sqlxDB), d.Payments, d.Logger, d.Metrics)
	bookingHandler := booking.NewHandler(bookingService, d.Logger)

	profileService := profile.NewService(userRepo, upload.NewService(d.Store), tokens, d.Logger)
	profileHandler := profile.NewHandler(profileService, d.Logger)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger(d.Logger, d.Metrics))
	r.Use(middleware.CORS(opts.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	wsHandler.RegisterRoutes(r)

	api := r.Group("/api")
	api.Use(middleware.RateLimit(opts.RateLimitPerMin, d.Logger))
	{
		// public
		authHandler.RegisterRoutes(api)
		catalogHandler.RegisterRoutes(api)

		protected := api.Group("")
		protected.Use(middleware.JWTAuth(d.JWT))
		{
			providerHandler.RegisterRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
			chatHandler.RegisterRoutes(protected)
			profileHandler.RegisterRoutes(protected)
			paymentHandler.RegisterRoutes(protected)
		}
	}

	return &App{
		Router:    r,
		Catalog:   catalogService,
		Reminders: booking.NewReminders(bookingRepo, chatService, opts.ReminderWindow, d.Logger),
	}, nil
}
