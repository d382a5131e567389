package app

import (
	"context"
	"fmt"
	"time"

	nats "github.com/nats-io/nats.go"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/alekus2/portifolioalek/config"
	"github.com/alekus2/portifolioalek/internal/adapters/authapi"
	natsadapter "github.com/alekus2/portifolioalek/internal/adapters/nats"
	repo "github.com/alekus2/portifolioalek/internal/adapters/postgres"
	rediscache "github.com/alekus2/portifolioalek/internal/adapters/redis"
	"github.com/alekus2/portifolioalek/internal/domain"
	"github.com/alekus2/portifolioalek/internal/tokenident"
	"github.com/alekus2/portifolioalek/internal/usecase"
	pkglog "github.com/alekus2/portifolioalek/pkg/log"
)

type App struct {
	cfg      *config.Config
	logger   pkglog.Logger
	db       *gorm.DB
	redis    *goredis.Client
	natsConn *nats.Conn
	service  usecase.Service
	listener *usecase.Listener
}

func New(ctx context.Context) (*App, error) {
	cfg := config.MustLoad()
	logger := pkglog.New(cfg.AppEnv)

	db, err := gorm.Open(postgres.Open(buildDSN(cfg)), &gorm.Config{
		Logger:         loggerForGorm(cfg),
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&domain.Profile{}); err != nil {
		return nil, err
	}

	rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		// Pending registrations are convenience data; run degraded.
		logger.Warn().Err(err).Msg("redis unavailable, pending registrations degraded")
	}

	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		logger.Warn().Err(err).Msg("nats connect failed, session listener disabled")
		nc = nil
	}

	profiles := repo.NewProfileRepository(db, logger, cfg.DefaultRole)
	pending := rediscache.NewPendingStore(rdb, logger, cfg.PendingTTL)
	provider := authapi.NewHTTPClient(cfg.AuthBaseURL, cfg.AuthTimeout)
	reconciler := usecase.NewReconciler(logger, profiles, pending)
	service := usecase.NewProfileService(logger, provider, pending, reconciler)

	var parser tokenident.Parser
	if cfg.JWTSecret != "" {
		parser, err = tokenident.NewHMACParser(cfg.JWTSecret)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Warn().Msg("jwt secret not set, token-only sessions will be skipped")
	}

	var listener *usecase.Listener
	if nc != nil {
		source := natsadapter.NewSessionSource(nc, cfg.NATSSessionSubject, cfg.AppName, logger)
		listener = usecase.NewListener(logger, source, reconciler, profiles, parser)
	}

	return &App{cfg: cfg, logger: logger, db: db, redis: rdb, natsConn: nc, service: service, listener: listener}, nil
}

// Service exposes the signup/signin/signout surface to the host.
func (a *App) Service() usecase.Service { return a.service }

func (a *App) Run(ctx context.Context) error {
	if a.listener != nil {
		if err := a.listener.Start(); err != nil {
			return err
		}
		defer func() {
			if err := a.listener.Stop(); err != nil {
				a.logger.Warn().Err(err).Msg("listener stop failed")
			}
		}()
	}
	<-ctx.Done()
	return nil
}

func (a *App) Close() {
	if a.natsConn != nil {
		_ = a.natsConn.Drain()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func buildDSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s", cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

func loggerForGorm(cfg *config.Config) logger.Interface {
	level := logger.Silent
	switch cfg.AppEnv {
	case "local":
		level = logger.Info
	default:
		level = logger.Warn
	}
	return logger.Default.LogMode(level)
}
