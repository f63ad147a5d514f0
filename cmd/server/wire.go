//go:build wireinject

package main

import (
	"context"
	"time"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"media-store/internal/config"
	domain "media-store/internal/domain/media"
	"media-store/internal/infrastructure/auth"
	"media-store/internal/infrastructure/crontab"
	"media-store/internal/infrastructure/database"
	"media-store/internal/infrastructure/logger"
	repo "media-store/internal/infrastructure/repository/media"
	"media-store/internal/infrastructure/storage"
	"media-store/internal/interfaces/httpserver"
	"media-store/internal/interfaces/httpserver/handlers"
)

var mediaSet = wire.NewSet(
	repo.NewRepository,
	wire.Bind(new(domain.Repository), new(*repo.Repository)),
	storage.New,
	domain.NewService,
	wire.Bind(new(handlers.MediaService), new(*domain.Service)),
	provideGracePeriod,
	domain.NewReconciler,
)

// BuildApplication assembles the media store with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		auth.NewValidator,
		newDatabaseConfig,
		newGormDB,
		mediaSet,
		crontab.NewCrontab,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.GetDatabaseWriteDSN(),
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func provideGracePeriod(cfg *config.Config) time.Duration {
	return cfg.ReconcileGracePeriod
}
