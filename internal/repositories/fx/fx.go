package fx

import (
	"github.com/orgball2608/insta-archive/internal/repositories/account"
	"github.com/orgball2608/insta-archive/internal/repositories/story"
	"github.com/orgball2608/insta-archive/internal/repositories/user"
	"go.uber.org/fx"
)

var Module = fx.Options(
	user.Module,
	story.Module,
	account.Module,
)
