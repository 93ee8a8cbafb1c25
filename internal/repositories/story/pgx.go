package story

import (
	"context"
	"errors"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/orgball2608/insta-archive/internal/repositories"
	"github.com/orgball2608/insta-archive/pkg/logger"
	"github.com/pgvector/pgvector-go"
)

type PgxRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewPgxRepository(pool *pgxpool.Pool, logger logger.Logger) *PgxRepository {
	return &PgxRepository{
		pool:   pool,
		logger: logger.WithComponent("StoryRepo"),
	}
}

var _ Repository = (*PgxRepository)(nil)

func (r *PgxRepository) Create(ctx context.Context, story *domain.Story) error {
	query, args, err := repositories.SqBuilder.
		Insert("stories").
		Columns("story_id", "user_uuid", "thumbnail", "blur_data_url", "media", "story_created_at").
		Values(story.StoryID, story.UserUUID, story.Thumbnail, story.BlurDataURL, story.Media, story.StoryCreatedAt).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&story.CreatedAt); err != nil {
		if repositories.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create story %s: %w", story.StoryID, err)
	}

	return nil
}

func (r *PgxRepository) Exists(ctx context.Context, storyID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stories WHERE story_id = $1)`, storyID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check story %s: %w", storyID, err)
	}
	return exists, nil
}

func (r *PgxRepository) GetByStoryID(ctx context.Context, storyID string) (*domain.Story, error) {
	query, args, err := buildGetQuery(storyID)
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	var story domain.Story
	if err := r.pool.QueryRow(ctx, query, args...).Scan(scanDest(&story)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get story %s: %w", storyID, err)
	}

	return &story, nil
}

func (r *PgxRepository) List(ctx context.Context, filter domain.StoryFilter) ([]*domain.Story, error) {
	query, args, err := buildListQuery(filter)
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	stories, err := r.query(ctx, query, args, false)
	if err != nil {
		return nil, err
	}

	// Pages before a position are read oldest first.
	if filter.Before != nil {
		slices.Reverse(stories)
	}
	return stories, nil
}

func (r *PgxRepository) Similar(ctx context.Context, storyID string, limit, offset int) ([]*domain.Story, int, error) {
	var hasEmbedding bool
	err := r.pool.QueryRow(ctx, `SELECT embedding IS NOT NULL FROM stories WHERE story_id = $1`, storyID).Scan(&hasEmbedding)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to load source story %s: %w", storyID, err)
	}
	if !hasEmbedding {
		return nil, 0, nil
	}

	countQuery, countArgs, err := buildSimilarCountQuery(storyID)
	if err != nil {
		return nil, 0, repositories.ErrBadQuery
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count similar stories: %w", err)
	}
	if total == 0 || offset >= total {
		return nil, total, nil
	}

	query, args, err := buildSimilarQuery(storyID, limit, offset)
	if err != nil {
		return nil, 0, repositories.ErrBadQuery
	}

	stories, err := r.query(ctx, query, args, true)
	if err != nil {
		return nil, 0, err
	}
	return stories, total, nil
}

func (r *PgxRepository) query(ctx context.Context, query string, args []any, withScore bool) ([]*domain.Story, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stories: %w", err)
	}
	defer rows.Close()

	var stories []*domain.Story
	for rows.Next() {
		var story domain.Story
		dest := scanDest(&story)
		if withScore {
			dest = append(dest, &story.SimilarityScore)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan story row: %w", err)
		}
		stories = append(stories, &story)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating story rows: %w", err)
	}

	return stories, nil
}

func (r *PgxRepository) SetEmbedding(ctx context.Context, storyID string, embedding []float32) error {
	if len(embedding) != domain.EmbeddingDimensions {
		return ErrInvalidEmbedding
	}

	query, args, err := repositories.SqBuilder.
		Update("stories").
		Set("embedding", sq.Expr("?::vector", pgvector.NewVector(embedding))).
		Where(sq.Eq{"story_id": storyID}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set embedding for story %s: %w", storyID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	r.logger.Debug("Story embedding updated", "story_id", storyID)
	return nil
}

func (r *PgxRepository) Delete(ctx context.Context, storyID string) error {
	query, args, err := repositories.SqBuilder.
		Delete("stories").
		Where(sq.Eq{"story_id": storyID}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete story %s: %w", storyID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PgxRepository) Stats(ctx context.Context) (int64, int64, error) {
	var total, withEmbedding int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE embedding IS NOT NULL) FROM stories`,
	).Scan(&total, &withEmbedding)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count stories: %w", err)
	}
	return total, withEmbedding, nil
}
