package account

import (
	"context"

	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/orgball2608/insta-archive/pkg/errors"
)

var (
	ErrNotFound      = errors.Mark("admin account not found", errors.ErrNotFound)
	ErrAlreadyExists = errors.Mark("admin account already exists", errors.ErrConflict)
)

//go:generate go run go.uber.org/mock/mockgen -source=account.go -destination=mocks/mock.go

type Repository interface {
	Create(ctx context.Context, account *domain.AdminAccount) error
	GetByUsername(ctx context.Context, username string) (*domain.AdminAccount, error)
	List(ctx context.Context) ([]*domain.AdminAccount, error)
	Count(ctx context.Context) (int64, error)
	TouchLogin(ctx context.Context, id int) error
}
