package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Skotchmaster/multisite_shop/internal/cache"
	"github.com/Skotchmaster/multisite_shop/internal/events"
	"github.com/Skotchmaster/multisite_shop/internal/httpserver"
	"github.com/Skotchmaster/multisite_shop/internal/repo"
	"github.com/Skotchmaster/multisite_shop/internal/search"
	"github.com/Skotchmaster/multisite_shop/internal/service"
	"github.com/Skotchmaster/multisite_shop/internal/storage"
	"github.com/Skotchmaster/multisite_shop/pkg/config"
	pkgdb "github.com/Skotchmaster/multisite_shop/pkg/db"
	"github.com/Skotchmaster/multisite_shop/pkg/logging"
	loggingmw "github.com/Skotchmaster/multisite_shop/pkg/middleware/logging"
)

type publisher interface {
	service.EventPublisher
	Close() error
}

func main() {
	cfg := config.Load()
	cfg.MustValidate()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := pkgdb.Open(openCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	migrateCtx, cancel := context.WithTimeout(ctx, time.Minute)
	err = pkgdb.Migrate(migrateCtx, db, pkgdb.SuperAdmin{
		Username: cfg.SuperAdminUsername,
		Password: cfg.SuperAdminPassword,
	})
	cancel()
	if err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var prod publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod = events.NewProducer(cfg.KafkaBrokers)
	} else {
		logger.Info("kafka_disabled")
	}

	var index service.ProductIndex
	if cfg.ES.URL != "" {
		esClient, err := search.NewClient(ctx, search.Config{
			URL:      cfg.ES.URL,
			User:     cfg.ES.User,
			Password: cfg.ES.Password,
			Index:    cfg.ES.Index,
		})
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		index = search.NewProductIndex(esClient, cfg.ES.Index)
	} else {
		logger.Info("elasticsearch_disabled")
	}

	var (
		sites service.WebsiteCache
		rdb   *redis.Client
	)
	if cfg.RedisAddr != "" {
		rdb, err = cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		sites = cache.NewWebsiteCache(rdb, 5*time.Minute)
	} else {
		logger.Info("redis_disabled")
	}

	var files service.FileMover
	if s3 := storage.NewS3Mover(storage.S3Config(cfg.S3)); s3 != nil {
		files = s3
	} else {
		logger.Info("s3_disabled", "image_root", cfg.ImageRoot)
		files = storage.NewLocalMover(cfg.ImageRoot)
	}

	uow := repo.NewUnitOfWork(db)
	websites := &service.WebsiteService{UOW: uow, Cache: sites}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		JWTSecret: cfg.JWTAccessSecret,
		Sites:     websites,
		Ready:     ping(db),

		AuthHandler: &httpserver.AuthHTTP{
			Svc: &service.AuthService{
				UOW:           uow,
				AccessSecret:  cfg.JWTAccessSecret,
				RefreshSecret: cfg.JWTRefreshSecret,
				AccessTTL:     cfg.AccessTokenTTL,
				RefreshTTL:    cfg.RefreshTokenTTL,
			},
			SecureCookies: cfg.SecureCookies,
		},
		CompanyHandler:       &httpserver.CompanyHTTP{Svc: &service.CompanyService{UOW: uow}},
		WebsiteHandler:       &httpserver.WebsiteHTTP{Svc: websites},
		UserHandler:          &httpserver.UserHTTP{Svc: &service.UserService{UOW: uow}},
		CategoryHandler:      &httpserver.CategoryHTTP{Svc: &service.CategoryService{UOW: uow}},
		ProductHandler:       &httpserver.ProductHTTP{Svc: &service.ProductService{UOW: uow, Events: prod, Index: index, Files: files}},
		CartHandler:          &httpserver.CartHTTP{Svc: &service.CartService{UOW: uow, Events: prod}},
		AnonymousCartHandler: &httpserver.AnonymousCartHTTP{Svc: &service.AnonymousCartService{UOW: uow}},
		OrderHandler:         &httpserver.OrderHTTP{Svc: &service.OrderService{UOW: uow, Events: prod}},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if err := prod.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis_close_error", "error", err)
		}
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_error", "error", err)
	}

	logger.Info("stopped")
}

func ping(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return sqlDB.PingContext(ctx)
	}
}
