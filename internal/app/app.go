// Package app wires configuration, storage, remote collaborators and HTTP
// routes into a runnable booking service.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"vaccinebooking/internal/cache"
	"vaccinebooking/internal/config"
	"vaccinebooking/internal/database"
	"vaccinebooking/internal/events"
	"vaccinebooking/internal/lock"
	"vaccinebooking/internal/middleware"
	"vaccinebooking/internal/modules/booking"
	"vaccinebooking/internal/modules/payment"
	jwtsvc "vaccinebooking/internal/pkg/jwt"
	"vaccinebooking/internal/remote"
	"vaccinebooking/internal/repository"
)

const tokenTTL = 24 * time.Hour

type App struct {
	Router *gin.Engine
	DB     *gorm.DB

	log     logrus.FieldLogger
	closers []func() error
}

func New(cfg *config.Config, log logrus.FieldLogger) (*App, error) {
	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	if cfg.DBSync {
		if err := repository.AutoMigrate(db); err != nil {
			return nil, err
		}
	}
	a := &App{DB: db, log: log}

	bookingRepo := repository.NewBookingRepository(db)
	linkRepo := repository.NewPaymentLinkRepository(db)

	inventory := remote.NewInventoryClient(remote.NewClient("inventory", cfg.VaccineServicePath, cfg.HTTPClientTimeout))
	identity := remote.NewIdentityClient(remote.NewClient("identity", cfg.AuthServicePath, cfg.HTTPClientTimeout))
	reminder := remote.NewReminderClient(remote.NewClient("reminder", cfg.ReminderServicePath, cfg.HTTPClientTimeout))
	razorpay := remote.NewRazorpayClient(remote.NewClient("razorpay", cfg.RazorpayBaseURL, cfg.HTTPClientTimeout,
		remote.WithBasicAuth(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)))

	var rdb *redis.Client
	var locker lock.Locker = lock.NoopLocker{}
	if cfg.RedisAddress != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.WithError(err).Warn("redis not reachable; cache and lock degrade to pass-through")
		}
		locker = lock.NewRedisLocker(rdb, cfg.FinalizeLockTTL, log)
		a.closers = append(a.closers, rdb.Close)
	}
	names := cache.NewVaccineNames(rdb, inventory, cfg.VaccineCacheTTL, log)

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPub, err := events.Dial(cfg.AMQPURL, log)
		if err != nil {
			log.WithError(err).Warn("amqp unavailable; booking events are not published")
		} else {
			publisher = amqpPub
			a.closers = append(a.closers, amqpPub.Close)
		}
	}

	bookingService := booking.NewService(booking.Dependencies{
		Store:       bookingRepo,
		Inventory:   inventory,
		Identity:    identity,
		Names:       names,
		Events:      publisher,
		PhoneRegion: cfg.DefaultPhoneRegion,
		Log:         log,
	})
	paymentService := payment.NewService(payment.Dependencies{
		Bookings: bookingRepo,
		Links:    linkRepo,
		Gateway:  razorpay,
		Reminder: reminder,
		Debiter:  bookingService.Debiter(),
		Locker:   locker,
		Events:   publisher,
		Log:      log,
	}, payment.Options{
		Currency:       cfg.PaymentCurrency,
		CallbackURL:    cfg.PaymentCallbackURL,
		CallbackMethod: cfg.PaymentCallbackMethod,
	})

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(log), middleware.CORS(cfg.FrontendOrigins, cfg.IsProdLike()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	var requireUser gin.HandlerFunc
	if cfg.JWTSecret != "" {
		j := jwtsvc.New(cfg.JWTSecret, tokenTTL, cfg.JWTIssuer)
		v1.Use(middleware.OptionalJWTAuth(j))
		requireUser = middleware.JWTAuth(j)
	}
	booking.NewHandler(bookingService).RegisterRoutes(v1, requireUser)

	var verifyWebhook gin.HandlerFunc
	if cfg.RazorpayWebhookSecret != "" {
		verifyWebhook = middleware.WebhookSignature(cfg.RazorpayWebhookSecret, log)
	}
	payment.NewHandler(paymentService).RegisterRoutes(r.Group("/api"), verifyWebhook)

	a.Router = r
	return a, nil
}

// Close releases the broker, redis and database handles.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.WithError(err).Warn("close failed")
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
