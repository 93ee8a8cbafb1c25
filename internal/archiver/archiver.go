package archiver

import (
	"context"

	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/orgball2608/insta-archive/pkg/errors"
)

var ErrInvalidUsername = errors.Mark("username must not be empty", errors.ErrInvalidInput)

// Result counts the outcome of one story archive pass for a user.
type Result struct {
	Created int
	Skipped int
	Failed  int
}

//go:generate go run go.uber.org/mock/mockgen -source=archiver.go -destination=mocks/mock.go

type Client interface {
	// ArchiveStories stores the user's live stories that are not archived yet.
	ArchiveStories(ctx context.Context, user *domain.InstagramUser) (Result, error)
	// RefreshProfile re-reads the profile from Instagram and saves it.
	RefreshProfile(ctx context.Context, user *domain.InstagramUser) (*domain.InstagramUser, error)
	// CreateFromUsername archives a new user from its Instagram profile.
	CreateFromUsername(ctx context.Context, username string) (*domain.InstagramUser, error)
}
