package instagramimpl

import (
	"sync"

	"github.com/Davincible/goinsta/v3"
	"github.com/orgball2608/insta-archive/internal/instagram"
	"github.com/orgball2608/insta-archive/pkg/config"
	"github.com/orgball2608/insta-archive/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

// InstaImpl serializes access to a single goinsta session.
type InstaImpl struct {
	mu     sync.Mutex
	client *goinsta.Instagram

	username    string
	password    string
	sessionPath string
	logger      logger.Logger
}

func New(opts Opts) *InstaImpl {
	return &InstaImpl{
		username:    opts.Config.Instagram.User,
		password:    opts.Config.Instagram.Pass,
		sessionPath: opts.Config.Instagram.SessionPath,
		logger:      opts.Logger.WithComponent("Instagram"),
	}
}

var _ instagram.Client = (*InstaImpl)(nil)

var Module = fx.Provide(
	fx.Annotate(
		New,
		fx.As(new(instagram.Client)),
	),
)
