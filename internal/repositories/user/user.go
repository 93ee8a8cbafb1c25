package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/orgball2608/insta-archive/pkg/errors"
)

var (
	ErrNotFound      = errors.Mark("instagram user not found", errors.ErrNotFound)
	ErrAlreadyExists = errors.Mark("instagram user already exists", errors.ErrConflict)
)

// AutoUpdateKind selects which auto-update flag ListAutoUpdate filters on.
type AutoUpdateKind string

const (
	AutoUpdateStories AutoUpdateKind = "stories"
	AutoUpdateProfile AutoUpdateKind = "profile"
)

//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=mocks/mock.go

type Repository interface {
	// Create inserts the user and records a "+" history row. A zero UUID is generated.
	Create(ctx context.Context, user *domain.InstagramUser) error
	GetByUUID(ctx context.Context, id uuid.UUID) (*domain.InstagramUser, error)
	GetByUsername(ctx context.Context, username string) (*domain.InstagramUser, error)
	// List returns one page of users, newest first, and the total matching count.
	List(ctx context.Context, filter domain.UserFilter) ([]*domain.InstagramUser, int, error)
	// Update stores every mutable column and records a "~" history row.
	Update(ctx context.Context, user *domain.InstagramUser) error
	// UpdateProfile stores only the fields fetched from Instagram, leaving the
	// auto-update settings untouched, and records a "~" history row.
	UpdateProfile(ctx context.Context, user *domain.InstagramUser) error
	// Delete records a "-" history row and removes the user with its stories.
	Delete(ctx context.Context, id uuid.UUID) error
	ListAutoUpdate(ctx context.Context, kind AutoUpdateKind) ([]*domain.InstagramUser, error)
	History(ctx context.Context, id uuid.UUID, limit, offset int) ([]*domain.UserHistory, int, error)
}
