package instagram

import (
	"context"

	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/orgball2608/insta-archive/pkg/errors"
)

var (
	ErrPrivateAccount = errors.Mark("account is private and cannot be accessed", errors.ErrForbidden)
	ErrNotConfigured  = errors.Mark("instagram credentials are not configured", errors.ErrServiceUnavailable)
)

//go:generate go run go.uber.org/mock/mockgen -source=instagram.go -destination=mocks/mock.go

type Client interface {
	// Login restores the saved session or signs in with the configured credentials.
	Login(ctx context.Context) error
	GetProfile(ctx context.Context, username string) (*domain.Profile, error)
	// GetUserStories returns the stories currently live on the user's reel.
	GetUserStories(ctx context.Context, username string) ([]domain.StoryItem, error)
}
