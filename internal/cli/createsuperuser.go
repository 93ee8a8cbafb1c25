package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/orgball2608/insta-archive/internal/app"
	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/orgball2608/insta-archive/internal/repositories/account"
	"github.com/orgball2608/insta-archive/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

const minPasswordLength = 8

var (
	errBlankUsername = errors.Wrap(errors.ErrInvalidInput, "username may not be blank")
	errShortPassword = errors.Wrap(errors.ErrInvalidInput,
		fmt.Sprintf("password must be at least %d characters", minPasswordLength))
)

type superuserInput struct {
	Username string
	Email    string
	Password string
}

func (in superuserInput) validate() error {
	if strings.TrimSpace(in.Username) == "" {
		return errBlankUsername
	}
	if len(in.Password) < minPasswordLength {
		return errShortPassword
	}
	return nil
}

func newCreateSuperuserCmd() *cobra.Command {
	var in superuserInput
	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create an administrative account",
		Long: `Create an account allowed to modify the archive and use the /admin/ surface.

The password is prompted for on the terminal when --password is not given.`,
		Example: `  instarchive createsuperuser --username admin --email admin@example.com`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Password == "" {
				password, err := promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				in.Password = password
			}
			if err := in.validate(); err != nil {
				return err
			}

			var repo account.Repository
			application := fx.New(fx.NopLogger, app.Base, fx.Populate(&repo))
			if err := application.Start(cmd.Context()); err != nil {
				return err
			}
			defer application.Stop(context.Background())

			acc, err := createSuperuser(cmd.Context(), repo, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Superuser %q created.\n", acc.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "account username")
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password, prompted for when empty")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

// createSuperuser validates in and stores a bcrypt-hashed superuser account.
func createSuperuser(ctx context.Context, repo account.Repository, in superuserInput) (*domain.AdminAccount, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	acc := &domain.AdminAccount{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: string(hash),
		IsSuperuser:  true,
	}
	if err := repo.Create(ctx, acc); err != nil {
		if errors.Is(err, account.ErrAlreadyExists) {
			return nil, fmt.Errorf("username %q is already taken: %w", acc.Username, err)
		}
		return nil, err
	}
	return acc, nil
}

// promptPassword reads the password twice without echo on a terminal, or once from a plain reader.
func promptPassword(in io.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, "Password: ")
		first, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}

		fmt.Fprint(out, "Password (again): ")
		second, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}

		if string(first) != string(second) {
			return "", errors.Wrap(errors.ErrInvalidInput, "passwords do not match")
		}
		return string(first), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
