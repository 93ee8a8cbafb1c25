package story

import (
	"context"

	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/orgball2608/insta-archive/pkg/errors"
)

var (
	ErrNotFound         = errors.Mark("story not found", errors.ErrNotFound)
	ErrAlreadyExists    = errors.Mark("story already exists", errors.ErrConflict)
	ErrInvalidEmbedding = errors.Mark("embedding has the wrong number of dimensions", errors.ErrInvalidInput)
)

//go:generate go run go.uber.org/mock/mockgen -source=story.go -destination=mocks/mock.go

type Repository interface {
	Create(ctx context.Context, story *domain.Story) error
	Exists(ctx context.Context, storyID string) (bool, error)
	// GetByStoryID returns the story with its user.
	GetByStoryID(ctx context.Context, storyID string) (*domain.Story, error)
	// List returns at most filter.Limit stories with their users, newest first.
	List(ctx context.Context, filter domain.StoryFilter) ([]*domain.Story, error)
	// Similar ranks stories with embeddings by closeness to the source story's embedding.
	// It returns no rows when the source is missing or has no embedding.
	Similar(ctx context.Context, storyID string, limit, offset int) ([]*domain.Story, int, error)
	SetEmbedding(ctx context.Context, storyID string, embedding []float32) error
	Delete(ctx context.Context, storyID string) error
	Stats(ctx context.Context) (total int64, withEmbedding int64, err error)
}
