package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		Env         string `env:"APP_ENV" env-default:"development"`
		Port        int    `env:"APP_PORT" env-default:"8000"`
		BaseURL     string `env:"APP_BASE_URL" env-description:"public URL used for absolute links, derived from the request when empty"`
		SentryUrl   string `env:"SENTRY_URL"`
		AutoMigrate bool   `env:"APP_AUTO_MIGRATE" env-default:"true"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER" env-default:"postgres"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME" env-default:"instarchive"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Redis struct {
		Addr         string        `env:"REDIS_ADDR" env-default:"localhost:6379"`
		Pass         string        `env:"REDIS_PASS"`
		DB           int           `env:"REDIS_DB" env-default:"0"`
		StoryListTTL time.Duration `env:"REDIS_STORY_LIST_TTL" env-default:"30s"`
	}
	Instagram struct {
		User        string `env:"INSTAGRAM_USER"`
		Pass        string `env:"INSTAGRAM_PASS"`
		SessionPath string `env:"INSTAGRAM_SESSION_PATH" env-default:"./goinsta-session"`
	}
	Archiver struct {
		Enabled          bool          `env:"ARCHIVER_ENABLED" env-default:"true"`
		Workers          int           `env:"ARCHIVER_WORKERS" env-default:"5"`
		StoriesInterval  time.Duration `env:"ARCHIVER_STORIES_INTERVAL" env-default:"30m"`
		ProfileInterval  time.Duration `env:"ARCHIVER_PROFILE_INTERVAL" env-default:"6h"`
		RequestsPerUser  int           `env:"ARCHIVER_REQUESTS_PER_USER" env-default:"2"`
		RequestsInterval time.Duration `env:"ARCHIVER_REQUESTS_INTERVAL" env-default:"1m"`
		Timezone         string        `env:"ARCHIVER_TIMEZONE" env-default:"UTC"`
	}
	Media struct {
		Dir            string `env:"MEDIA_DIR" env-default:"./media"`
		ThumbnailWidth int    `env:"MEDIA_THUMBNAIL_WIDTH" env-default:"320"`
	}
	Telegram struct {
		User  int64  `env:"TELEGRAM_USER"`
		Token string `env:"TELEGRAM_TOKEN"`
	}
}

var (
	once    sync.Once
	cfg     *Config
	loadErr error
)

func New() (*Config, error) {
	once.Do(func() {
		// A missing .env is fine, the process environment is authoritative.
		_ = godotenv.Load()

		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			loadErr = fmt.Errorf("failed to read configuration: %w\n%s", err, help)
		}
	})
	return cfg, loadErr
}

// GetDSN returns the lib/pq style connection string used by goose.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("dbname=%s user=%s password=%s host=%s port=%d sslmode=%s",
		c.Postgres.Name, c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.SslMode,
	)
}

// GetURL returns the postgres:// URL used by the pgx pool.
func (c *Config) GetURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Pass,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Name,
		c.Postgres.SslMode,
	)
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
