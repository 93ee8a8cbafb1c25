package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/orgball2608/insta-archive/internal/repositories"
	"github.com/orgball2608/insta-archive/pkg/logger"
)

type PgxRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewPgxRepository(pool *pgxpool.Pool, logger logger.Logger) *PgxRepository {
	return &PgxRepository{
		pool:   pool,
		logger: logger.WithComponent("InstagramUserRepo"),
	}
}

var _ Repository = (*PgxRepository)(nil)

func (r *PgxRepository) Create(ctx context.Context, user *domain.InstagramUser) error {
	if user.UUID == uuid.Nil {
		user.UUID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	query, args, err := buildInsertQuery(user)
	if err != nil {
		return repositories.ErrBadQuery
	}

	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, historyInsert, domain.HistoryCreated, user.UUID)
		return err
	})
	if err != nil {
		if repositories.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create instagram user %s: %w", user.Username, err)
	}

	user.HasHistory = true
	r.logger.Info("Instagram user created", "uuid", user.UUID, "username", user.Username)
	return nil
}

func (r *PgxRepository) GetByUUID(ctx context.Context, id uuid.UUID) (*domain.InstagramUser, error) {
	return r.getOne(ctx, sq.Eq{"u.uuid": id})
}

func (r *PgxRepository) GetByUsername(ctx context.Context, username string) (*domain.InstagramUser, error) {
	return r.getOne(ctx, sq.Eq{"u.username": username})
}

func (r *PgxRepository) getOne(ctx context.Context, where sq.Sqlizer) (*domain.InstagramUser, error) {
	query, args, err := buildGetQuery(where)
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	var user domain.InstagramUser
	if err := r.pool.QueryRow(ctx, query, args...).Scan(ScanDest(&user)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get instagram user: %w", err)
	}

	return &user, nil
}

func (r *PgxRepository) List(ctx context.Context, filter domain.UserFilter) ([]*domain.InstagramUser, int, error) {
	countQuery, countArgs, err := buildCountQuery(filter)
	if err != nil {
		return nil, 0, repositories.ErrBadQuery
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count instagram users: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	query, args, err := buildListQuery(filter)
	if err != nil {
		return nil, 0, repositories.ErrBadQuery
	}

	users, err := r.query(ctx, query, args)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *PgxRepository) ListAutoUpdate(ctx context.Context, kind AutoUpdateKind) ([]*domain.InstagramUser, error) {
	query, args, err := buildAutoUpdateQuery(kind)
	if err != nil {
		return nil, repositories.ErrBadQuery
	}
	return r.query(ctx, query, args)
}

func (r *PgxRepository) query(ctx context.Context, query string, args []any) ([]*domain.InstagramUser, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query instagram users: %w", err)
	}
	defer rows.Close()

	var users []*domain.InstagramUser
	for rows.Next() {
		var user domain.InstagramUser
		if err := rows.Scan(ScanDest(&user)...); err != nil {
			return nil, fmt.Errorf("failed to scan instagram user row: %w", err)
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating instagram user rows: %w", err)
	}

	return users, nil
}

func (r *PgxRepository) Update(ctx context.Context, user *domain.InstagramUser) error {
	user.UpdatedAt = time.Now().UTC()

	query, args, err := buildUpdateQuery(user)
	if err != nil {
		return repositories.ErrBadQuery
	}

	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = tx.Exec(ctx, historyInsert, domain.HistoryChanged, user.UUID)
		return err
	})
	switch {
	case err == nil:
		user.HasHistory = true
		return nil
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case repositories.IsUniqueViolation(err):
		return ErrAlreadyExists
	default:
		return fmt.Errorf("failed to update instagram user %s: %w", user.UUID, err)
	}
}

func (r *PgxRepository) UpdateProfile(ctx context.Context, user *domain.InstagramUser) error {
	user.UpdatedAt = time.Now().UTC()

	query, args, err := buildProfileUpdateQuery(user)
	if err != nil {
		return repositories.ErrBadQuery
	}

	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query, args...).Scan(
			&user.AllowAutoUpdateStories,
			&user.AllowAutoUpdateProfile,
			&user.AutoUpdateStoriesLimitCount,
			&user.AutoUpdateProfileLimitCount,
			&user.CreatedAt,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, historyInsert, domain.HistoryChanged, user.UUID)
		return err
	})
	switch {
	case err == nil:
		user.HasHistory = true
		return nil
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case repositories.IsUniqueViolation(err):
		return ErrAlreadyExists
	default:
		return fmt.Errorf("failed to update profile of instagram user %s: %w", user.UUID, err)
	}
}

func (r *PgxRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := repositories.SqBuilder.
		Delete("instagram_users").
		Where(sq.Eq{"uuid": id}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, historyInsert, domain.HistoryDeleted, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete instagram user %s: %w", id, err)
	}

	r.logger.Info("Instagram user deleted", "uuid", id)
	return nil
}

func (r *PgxRepository) History(ctx context.Context, id uuid.UUID, limit, offset int) ([]*domain.UserHistory, int, error) {
	countQuery, countArgs, err := repositories.SqBuilder.
		Select("COUNT(*)").
		From("instagram_users_history").
		Where(sq.Eq{"uuid": id}).
		ToSql()
	if err != nil {
		return nil, 0, repositories.ErrBadQuery
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count user history: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	query, args, err := buildHistoryQuery(id, limit, offset)
	if err != nil {
		return nil, 0, repositories.ErrBadQuery
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query user history: %w", err)
	}
	defer rows.Close()

	var history []*domain.UserHistory
	for rows.Next() {
		var h domain.UserHistory
		dest := append([]any{&h.HistoryID, &h.HistoryDate, &h.HistoryType}, snapshotDest(&h.User)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user history row: %w", err)
		}
		history = append(history, &h)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating user history rows: %w", err)
	}

	return history, total, nil
}
