package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
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
		logger: logger.WithComponent("AdminAccountRepo"),
	}
}

var _ Repository = (*PgxRepository)(nil)

var accountColumns = []string{"id", "username", "email", "password_hash", "is_superuser", "created_at", "last_login_at"}

func (r *PgxRepository) Create(ctx context.Context, account *domain.AdminAccount) error {
	query, args, err := repositories.SqBuilder.
		Insert("admin_accounts").
		Columns("username", "email", "password_hash", "is_superuser").
		Values(account.Username, account.Email, account.PasswordHash, account.IsSuperuser).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&account.ID, &account.CreatedAt); err != nil {
		if repositories.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	r.logger.Info("Admin account created", "username", account.Username, "superuser", account.IsSuperuser)
	return nil
}

func (r *PgxRepository) GetByUsername(ctx context.Context, username string) (*domain.AdminAccount, error) {
	query, args, err := repositories.SqBuilder.
		Select(accountColumns...).
		From("admin_accounts").
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	var a domain.AdminAccount
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.IsSuperuser, &a.CreatedAt, &a.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin account: %w", err)
	}

	return &a, nil
}

func (r *PgxRepository) List(ctx context.Context) ([]*domain.AdminAccount, error) {
	query, args, err := repositories.SqBuilder.
		Select(accountColumns...).
		From("admin_accounts").
		OrderBy("username ASC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.AdminAccount
	for rows.Next() {
		var a domain.AdminAccount
		if err := rows.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.IsSuperuser, &a.CreatedAt, &a.LastLoginAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}

func (r *PgxRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admin_accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count admin accounts: %w", err)
	}
	return n, nil
}

func (r *PgxRepository) TouchLogin(ctx context.Context, id int) error {
	query, args, err := repositories.SqBuilder.
		Update("admin_accounts").
		Set("last_login_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return err
}
