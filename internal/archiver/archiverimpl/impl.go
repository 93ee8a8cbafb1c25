package archiverimpl

import (
	"time"

	"github.com/orgball2608/insta-archive/internal/archiver"
	"github.com/orgball2608/insta-archive/internal/cache"
	"github.com/orgball2608/insta-archive/internal/instagram"
	"github.com/orgball2608/insta-archive/internal/media"
	"github.com/orgball2608/insta-archive/internal/ratelimit"
	"github.com/orgball2608/insta-archive/internal/repositories/story"
	"github.com/orgball2608/insta-archive/internal/repositories/user"
	"github.com/orgball2608/insta-archive/internal/telegram"
	"github.com/orgball2608/insta-archive/pkg/config"
	"github.com/orgball2608/insta-archive/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Instagram instagram.Client
	Telegram  telegram.Client
	UserRepo  user.Repository
	StoryRepo story.Repository
	Media     media.Store
	Cache     cache.Cache
	Limiter   ratelimit.Limiter
	Logger    logger.Logger
	Config    *config.Config
}

type ArchiverImpl struct {
	Instagram instagram.Client
	Telegram  telegram.Client
	UserRepo  user.Repository
	StoryRepo story.Repository
	Media     media.Store
	Cache     cache.Cache
	Limiter   ratelimit.Limiter
	Logger    logger.Logger
	Config    *config.Config

	now func() time.Time
}

func New(opts Opts) *ArchiverImpl {
	return &ArchiverImpl{
		Instagram: opts.Instagram,
		Telegram:  opts.Telegram,
		UserRepo:  opts.UserRepo,
		StoryRepo: opts.StoryRepo,
		Media:     opts.Media,
		Cache:     opts.Cache,
		Limiter:   opts.Limiter,
		Logger:    opts.Logger.WithComponent("Archiver"),
		Config:    opts.Config,
		now:       time.Now,
	}
}

var _ archiver.Client = (*ArchiverImpl)(nil)

var Module = fx.Options(
	fx.Provide(
		New,
		func(a *ArchiverImpl) archiver.Client { return a },
	),
	fx.Invoke(registerSchedules),
)
