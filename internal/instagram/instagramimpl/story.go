package instagramimpl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Davincible/goinsta/v3"
	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/orgball2608/insta-archive/internal/instagram"
)

func (ig *InstaImpl) GetUserStories(ctx context.Context, username string) ([]domain.StoryItem, error) {
	ig.mu.Lock()
	defer ig.mu.Unlock()

	client, err := ig.session(ctx)
	if err != nil {
		return nil, err
	}

	ig.logger.Info("Get stories for username", "username", username)
	profile, err := client.VisitProfile(username)
	if err != nil {
		return nil, fmt.Errorf("failed to visit profile %s: %w", username, err)
	}

	if profile.User != nil && profile.User.IsPrivate && !profile.User.Friendship.Following {
		return nil, instagram.ErrPrivateAccount
	}

	if profile.Stories == nil {
		return nil, nil
	}

	items := make([]domain.StoryItem, 0, len(profile.Stories.Reel.Items))
	for _, item := range profile.Stories.Reel.Items {
		story, ok := toStoryItem(item, username)
		if !ok {
			ig.logger.Warn("Story has no downloadable media", "username", username, "pk", item.Pk)
			continue
		}
		items = append(items, story)
	}

	return items, nil
}

func toStoryItem(item *goinsta.Item, username string) (domain.StoryItem, bool) {
	story := domain.StoryItem{
		ID:       fmt.Sprint(item.Pk),
		Username: strings.ToLower(username),
		TakenAt:  time.Unix(item.TakenAt, 0).UTC(),
	}

	if len(item.Videos) > 0 && item.Videos[0].URL != "" {
		story.MediaURL = item.Videos[0].URL
		story.IsVideo = true
		return story, true
	}

	story.MediaURL = item.Images.GetBest()
	return story, story.MediaURL != ""
}
