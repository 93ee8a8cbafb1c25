package archiverimpl

import (
	"context"
	"errors"
	"fmt"

	"github.com/orgball2608/insta-archive/internal/archiver"
	"github.com/orgball2608/insta-archive/internal/cache"
	"github.com/orgball2608/insta-archive/internal/domain"
	storyRepo "github.com/orgball2608/insta-archive/internal/repositories/story"
)

func (a *ArchiverImpl) ArchiveStories(ctx context.Context, user *domain.InstagramUser) (archiver.Result, error) {
	var result archiver.Result

	if err := a.Limiter.Wait(ctx, user.Username); err != nil {
		return result, fmt.Errorf("rate limit wait for %s: %w", user.Username, err)
	}

	items, err := a.Instagram.GetUserStories(ctx, user.Username)
	if err != nil {
		return result, fmt.Errorf("failed to get stories for %s: %w", user.Username, err)
	}

	if len(items) == 0 {
		a.Logger.Info("No stories found for user", "username", user.Username)
		return result, nil
	}

	for _, item := range items {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		created, err := a.archiveItem(ctx, user, item)
		switch {
		case err != nil:
			result.Failed++
			a.Logger.Error("Failed to archive story", "username", user.Username, "story_id", item.ID, "error", err)
		case created:
			result.Created++
		default:
			result.Skipped++
		}
	}

	if result.Created > 0 {
		a.invalidateStoryLists(ctx)
	}

	a.Logger.Info("Stories archived",
		"username", user.Username,
		"created", result.Created,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

func (a *ArchiverImpl) archiveItem(ctx context.Context, user *domain.InstagramUser, item domain.StoryItem) (bool, error) {
	exists, err := a.StoryRepo.Exists(ctx, item.ID)
	if err != nil {
		return false, fmt.Errorf("failed to check story existence: %w", err)
	}
	if exists {
		a.Logger.Debug("Story already archived", "story_id", item.ID)
		return false, nil
	}

	saved, err := a.Media.SaveStory(ctx, user.Username, item.ID, item.MediaURL)
	if err != nil {
		return false, err
	}

	story := &domain.Story{
		StoryID:        item.ID,
		UserUUID:       user.UUID,
		Thumbnail:      saved.Thumbnail,
		BlurDataURL:    saved.BlurDataURL,
		Media:          saved.Media,
		StoryCreatedAt: item.TakenAt,
	}
	if err := a.StoryRepo.Create(ctx, story); err != nil {
		if errors.Is(err, storyRepo.ErrAlreadyExists) {
			return false, nil
		}
		if rmErr := a.Media.Remove(saved.Media, saved.Thumbnail); rmErr != nil {
			a.Logger.Warn("Failed to clean up media of unsaved story", "story_id", item.ID, "error", rmErr)
		}
		return false, fmt.Errorf("failed to save story: %w", err)
	}

	return true, nil
}

// invalidateStoryLists drops cached list responses so new or changed rows show up at once.
func (a *ArchiverImpl) invalidateStoryLists(ctx context.Context) {
	if _, err := a.Cache.DeletePrefix(ctx, cache.StoryListPrefix); err != nil {
		a.Logger.Warn("Failed to invalidate story list cache", "error", err)
	}
}
