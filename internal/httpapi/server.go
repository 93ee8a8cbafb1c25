package httpapi

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/fasthttp/router"
	"github.com/orgball2608/insta-archive/internal/archiver"
	"github.com/orgball2608/insta-archive/internal/cache"
	"github.com/orgball2608/insta-archive/internal/media"
	"github.com/orgball2608/insta-archive/internal/repositories/account"
	"github.com/orgball2608/insta-archive/internal/repositories/story"
	"github.com/orgball2608/insta-archive/internal/repositories/user"
	"github.com/orgball2608/insta-archive/pkg/config"
	"github.com/orgball2608/insta-archive/pkg/logger"
	"github.com/valyala/fasthttp"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	UserRepo    user.Repository
	StoryRepo   story.Repository
	AccountRepo account.Repository
	Archiver    archiver.Client
	Cache       cache.Cache
	Media       media.Store
	Logger      logger.Logger
	Config      *config.Config
}

type Server struct {
	users    user.Repository
	stories  story.Repository
	accounts account.Repository
	archiver archiver.Client
	cache    cache.Cache
	media    media.Store
	logger   logger.Logger

	baseURL      string
	storyListTTL time.Duration
}

func New(opts Opts) *Server {
	ttl := opts.Config.Redis.StoryListTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Server{
		users:        opts.UserRepo,
		stories:      opts.StoryRepo,
		accounts:     opts.AccountRepo,
		archiver:     opts.Archiver,
		cache:        opts.Cache,
		media:        opts.Media,
		logger:       opts.Logger.WithComponent("HTTP"),
		baseURL:      opts.Config.App.BaseURL,
		storyListTTL: ttl,
	}
}

// Handler returns the routed request handler.
func (s *Server) Handler() fasthttp.RequestHandler {
	r := router.New()

	r.GET("/", s.apiRoot)
	r.GET("/healthz", s.healthz)
	r.GET("/api/schema/", s.schema)
	r.GET("/api/docs/", s.docs)

	r.GET("/api/instagram/stories/", s.listStories)
	r.GET("/api/instagram/stories/{story_id}/", s.getStory)
	r.GET("/api/instagram/stories/{story_id}/similar/", s.similarStories)

	r.GET("/api/instagram/users/", s.listUsers)
	r.POST("/api/instagram/users/", s.authenticated(s.createUser))
	r.GET("/api/instagram/users/{uuid}/", s.getUser)
	r.PATCH("/api/instagram/users/{uuid}/", s.authenticated(s.updateUser))
	r.DELETE("/api/instagram/users/{uuid}/", s.authenticated(s.deleteUser))
	r.GET("/api/instagram/users/{uuid}/history/", s.userHistory)
	r.POST("/api/instagram/users/{uuid}/update-stories/", s.authenticated(s.updateUserStories))
	r.POST("/api/instagram/users/{uuid}/update-profile/", s.authenticated(s.updateUserProfile))

	r.GET("/admin/", s.superuser(s.adminStats))
	r.GET("/admin/accounts/", s.superuser(s.adminAccounts))
	r.PUT("/admin/stories/{story_id}/embedding/", s.superuser(s.adminSetEmbedding))
	r.DELETE("/admin/stories/{story_id}/", s.superuser(s.adminDeleteStory))

	r.ServeFiles("/media/{filepath:*}", s.media.Root())

	r.NotFound = func(ctx *fasthttp.RequestCtx) {
		writeDetail(ctx, fasthttp.StatusNotFound, "Not found.")
	}
	r.MethodNotAllowed = func(ctx *fasthttp.RequestCtx) {
		writeDetail(ctx, fasthttp.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", ctx.Method()))
	}
	r.PanicHandler = func(ctx *fasthttp.RequestCtx, rcv any) {
		s.logger.Error("Panic while serving request", "path", string(ctx.Path()), "panic", rcv)
		writeDetail(ctx, fasthttp.StatusInternalServerError, "A server error occurred.")
	}

	return s.logRequests(r.Handler)
}

func (s *Server) logRequests(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		started := time.Now()
		next(ctx)
		s.logger.Debug("Request served",
			"method", string(ctx.Method()),
			"path", string(ctx.Path()),
			"status", ctx.Response.StatusCode(),
			"took", time.Since(started).String(),
		)
	}
}

func registerServer(lc fx.Lifecycle, s *Server, cfg *config.Config) {
	srv := &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               "instarchive",
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       5 * time.Minute,
		MaxRequestBodySize: 1 << 20,
	}
	addr := fmt.Sprintf(":%d", cfg.App.Port)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}
			s.logger.Info("Starting server", "addr", addr)
			go func() {
				if err := srv.Serve(ln); err != nil {
					s.logger.Error("Server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.ShutdownWithContext(ctx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(registerServer),
)
