package archiverimpl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/orgball2608/insta-archive/internal/archiver"
	"github.com/orgball2608/insta-archive/internal/domain"
	userRepo "github.com/orgball2608/insta-archive/internal/repositories/user"
)

func (a *ArchiverImpl) RefreshProfile(ctx context.Context, user *domain.InstagramUser) (*domain.InstagramUser, error) {
	profile, err := a.fetchProfile(ctx, user.Username)
	if err != nil {
		return nil, err
	}

	user.ApplyProfile(*profile)
	now := a.now().UTC()
	user.UpdatedAtFromAPI = &now

	if err := a.UserRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save profile of %s: %w", user.Username, err)
	}

	// Story list payloads embed the user.
	a.invalidateStoryLists(ctx)

	a.Logger.Info("Profile refreshed", "username", user.Username, "followers", user.FollowerCount)
	return user, nil
}

func (a *ArchiverImpl) CreateFromUsername(ctx context.Context, username string) (*domain.InstagramUser, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return nil, archiver.ErrInvalidUsername
	}

	_, err := a.UserRepo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, userRepo.ErrAlreadyExists
	case !errors.Is(err, userRepo.ErrNotFound):
		return nil, err
	}

	profile, err := a.fetchProfile(ctx, username)
	if err != nil {
		return nil, err
	}

	user := &domain.InstagramUser{}
	user.ApplyProfile(*profile)
	now := a.now().UTC()
	user.UpdatedAtFromAPI = &now

	if err := a.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	a.Logger.Info("User archived", "username", user.Username, "uuid", user.UUID)
	return user, nil
}

func (a *ArchiverImpl) fetchProfile(ctx context.Context, username string) (*domain.Profile, error) {
	if err := a.Limiter.Wait(ctx, username); err != nil {
		return nil, fmt.Errorf("rate limit wait for %s: %w", username, err)
	}

	profile, err := a.Instagram.GetProfile(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile for %s: %w", username, err)
	}
	return profile, nil
}

// NormalizeUsername lower-cases a handle and strips whitespace and a leading "@".
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
}
