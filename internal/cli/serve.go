package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/orgball2608/insta-archive/internal/app"
	"github.com/orgball2608/insta-archive/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and the archive schedules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	log := logger.New(logger.Opts{})
	defer logger.Flush()

	application := fx.New(
		fx.Logger(log),
		app.Module,
	)

	if err := application.Start(ctx); err != nil {
		log.Error("Failed to start application", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()
	if err := application.Stop(stopCtx); err != nil {
		log.Error("Failed to stop application", "error", err)
		return err
	}
	return nil
}
