package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"loanflow-backend/internal/adapter/activity"
	"loanflow-backend/internal/adapter/blobstore"
	httpadp "loanflow-backend/internal/adapter/http"
	mw "loanflow-backend/internal/adapter/middleware"
	"loanflow-backend/internal/adapter/repository/gormrepo"
	"loanflow-backend/internal/config"
	"loanflow-backend/internal/infrastructure/broker"
	"loanflow-backend/internal/infrastructure/cache"
	"loanflow-backend/internal/infrastructure/db"
	"loanflow-backend/internal/infrastructure/logger"
	"loanflow-backend/internal/infrastructure/metrics"
	"loanflow-backend/internal/infrastructure/token"
	"loanflow-backend/internal/usecase/application"
	"loanflow-backend/internal/usecase/auth"
	"loanflow-backend/internal/usecase/document"
	"loanflow-backend/internal/usecase/interestrate"
	"loanflow-backend/internal/usecase/loan"
	"loanflow-backend/internal/usecase/notification"
	"loanflow-backend/internal/usecase/review"
	"loanflow-backend/internal/usecase/user"
)

func main() {
	cfg := config.Load()
	closer := logger.Setup(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer closer.Close()

	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("config")
	}

	gdb, err := db.OpenGorm(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("database")
	}
	if cfg.DBAutoMigrate {
		if err := db.Migrate(gdb); err != nil {
			logrus.WithError(err).Fatal("migrate")
		}
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		logrus.WithError(err).Fatal("database")
	}
	defer sqlDB.Close()

	rdb, err := cache.OpenRedis(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("redis")
	}
	defer rdb.Close()

	store, err := blobstore.NewOS(cfg.DocumentRoot, cfg.DocumentBaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("document store")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	repos := gormrepo.Repos(gdb)
	tx := gormrepo.NewGormUoW(gdb)

	var emitter *activity.Emitter
	if w := broker.NewWriter(cfg.KafkaBrokers, cfg.KafkaAuditTopic); w != nil {
		defer w.Close()
		emitter = activity.NewEmitter(repos.Activity, w, m)
		logrus.WithField("topic", cfg.KafkaAuditTopic).Info("kafka: audit stream enabled")
	} else {
		emitter = activity.NewEmitter(repos.Activity, nil, m)
	}

	issuer := token.NewIssuer(cfg.JWTSecret, cfg.JWTTTL())
	users := user.NewUsecase(repos, tx, emitter)
	loans := loan.NewUsecase(repos, tx, emitter, m)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if created, err := users.Seed(seedCtx, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		logrus.WithError(err).Fatal("seed super admin")
	} else if created {
		logrus.WithField("email", cfg.SeedAdminEmail).Info("seeded super admin")
	}
	cancelSeed()

	h := httpadp.Handlers{
		Health: httpadp.NewHandler(func(ctx context.Context) error {
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			return cache.Ping(rdb)(ctx)
		}),
		Auth:  httpadp.NewAuthHandler(auth.NewUsecase(repos.Users, issuer, emitter)),
		Users: httpadp.NewUserHandler(users),
		Applications: httpadp.NewApplicationHandler(
			application.NewUsecase(repos, tx, store, emitter, m, cfg.MaxUploadBytes),
			review.NewUsecase(tx, emitter, m),
			loans,
			cfg.MaxUploadBytes,
		),
		Documents:     httpadp.NewDocumentHandler(document.NewUsecase(repos, store, emitter, cfg.MaxUploadBytes), cfg.MaxUploadBytes),
		Loans:         httpadp.NewLoanHandler(loans),
		Rates:         httpadp.NewRateHandler(interestrate.NewUsecase(repos, tx, emitter)),
		Notifications: httpadp.NewNotificationHandler(notification.NewUsecase(repos.Activity)),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	// two submission files plus form fields
	e.Use(middleware.Logger(), middleware.Recover(), middleware.BodyLimit(fmt.Sprintf("%dK", 3*cfg.MaxUploadBytes/1024+64)))

	// routes
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
	httpadp.Register(e, h, httpadp.Guards{
		Identity:   mw.Identity(issuer),
		Payments:   mw.ServiceToken("payments", cfg.PaymentsServiceToken),
		Idempotent: mw.Idempotency(rdb, cfg.IdempotencyTTL()),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.AppPort
	go func() {
		logrus.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("shutdown")
	}
	logrus.Info("stopped")
}
