package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/orgball2608/insta-archive/internal/migrations"
	"github.com/orgball2608/insta-archive/pkg/config"
	"github.com/pressly/goose/v3"
)

// SourceDir is where `migrate create` writes new migration files, relative to the repo root.
const SourceDir = "internal/migrations"

type Postgres struct {
	db *sql.DB
}

func NewConnect(cfg *config.Config) (*Postgres, error) {
	connect, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, err
	}

	if err = connect.Ping(); err != nil {
		connect.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &Postgres{db: connect}, nil
}

func (pg *Postgres) Close() error {
	return pg.db.Close()
}

func init() {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		panic(err)
	}
}

func (pg *Postgres) Up(ctx context.Context) error {
	return goose.UpContext(ctx, pg.db, ".")
}

func (pg *Postgres) Down(ctx context.Context) error {
	return goose.DownContext(ctx, pg.db, ".")
}

func (pg *Postgres) Status(ctx context.Context) error {
	return goose.StatusContext(ctx, pg.db, ".")
}

func (pg *Postgres) Reset(ctx context.Context) error {
	return goose.ResetContext(ctx, pg.db, ".")
}

// Version returns the currently applied schema version.
func (pg *Postgres) Version(ctx context.Context) (int64, error) {
	return goose.GetDBVersionContext(ctx, pg.db)
}

// Create writes a new timestamped SQL migration into dir on disk.
func Create(dir, name string) error {
	goose.SetBaseFS(nil)
	defer goose.SetBaseFS(migrations.FS)

	return goose.Create(nil, dir, name, "sql")
}
