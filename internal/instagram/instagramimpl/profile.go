package instagramimpl

import (
	"context"
	"fmt"
	"strings"

	"github.com/Davincible/goinsta/v3"
	"github.com/orgball2608/insta-archive/internal/domain"
)

func (ig *InstaImpl) GetProfile(ctx context.Context, username string) (*domain.Profile, error) {
	ig.mu.Lock()
	defer ig.mu.Unlock()

	client, err := ig.session(ctx)
	if err != nil {
		return nil, err
	}

	ig.logger.Info("Fetching profile", "username", username)
	user, err := client.Profiles.ByName(username)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", username, err)
	}

	return toProfile(user), nil
}

func toProfile(u *goinsta.User) *domain.Profile {
	picture := u.ProfilePicURL
	if u.HdProfilePicURLInfo.URL != "" {
		picture = u.HdProfilePicURLInfo.URL
	}

	return &domain.Profile{
		InstagramID:    fmt.Sprint(u.ID),
		Username:       strings.ToLower(u.Username),
		FullName:       u.FullName,
		ProfilePicture: picture,
		Biography:      u.Biography,
		IsPrivate:      u.IsPrivate,
		IsVerified:     u.IsVerified,
		MediaCount:     u.MediaCount,
		FollowerCount:  u.FollowerCount,
		FollowingCount: u.FollowingCount,
	}
}
