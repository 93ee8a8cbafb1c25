package ratelimit

import "go.uber.org/fx"

var Module = fx.Provide(
	fx.Annotate(
		NewFromConfig,
		fx.As(new(Limiter)),
	),
)
