package app

import (
	"context"
	"fmt"
	"time"

	"github.com/orgball2608/insta-archive/internal/archiver/archiverimpl"
	"github.com/orgball2608/insta-archive/internal/cache"
	"github.com/orgball2608/insta-archive/internal/db"
	"github.com/orgball2608/insta-archive/internal/httpapi"
	"github.com/orgball2608/insta-archive/internal/instagram/instagramimpl"
	"github.com/orgball2608/insta-archive/internal/media"
	"github.com/orgball2608/insta-archive/internal/ratelimit"
	repositories "github.com/orgball2608/insta-archive/internal/repositories/fx"
	"github.com/orgball2608/insta-archive/internal/telegram/telegramimpl"
	"github.com/orgball2608/insta-archive/pkg/config"
	"github.com/orgball2608/insta-archive/pkg/logger"
	"github.com/orgball2608/insta-archive/pkg/pgx"
	"go.uber.org/fx"
)

// Base wires configuration, logging and persistence. Commands that only touch the database use it alone.
var Base = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
	),
	repositories.Module,
)

// Module is the full server: API, archiver and schedules.
var Module = fx.Options(
	Base,
	fx.Invoke(autoMigrate),
	cache.Module,
	media.Module,
	ratelimit.Module,
	instagramimpl.Module,
	telegramimpl.Module,
	archiverimpl.Module,
	httpapi.Module,
)

func autoMigrate(cfg *config.Config, log logger.Logger) error {
	if !cfg.App.AutoMigrate {
		return nil
	}
	log = log.WithComponent("Migrations")

	pg, err := db.NewConnect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect for migrations: %w", err)
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := pg.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, err := pg.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	log.Info("Schema up to date", "version", version)
	return nil
}
