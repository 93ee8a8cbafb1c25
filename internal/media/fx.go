package media

import (
	"go.uber.org/fx"
)

var Module = fx.Provide(
	fx.Annotate(
		NewHTTPFetcher,
		fx.As(new(Fetcher)),
	),
	fx.Annotate(
		NewFileStore,
		fx.As(new(Store)),
	),
)
