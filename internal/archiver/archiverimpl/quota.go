package archiverimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/orgball2608/insta-archive/internal/repositories/user"
)

const quotaTTL = 48 * time.Hour

func quotaKey(kind user.AutoUpdateKind, u *domain.InstagramUser, now time.Time) string {
	return fmt.Sprintf("archiver:%s:%s:%s", kind, u.UUID, now.UTC().Format("20060102"))
}

func dailyLimit(kind user.AutoUpdateKind, u *domain.InstagramUser) int {
	if kind == user.AutoUpdateProfile {
		return u.AutoUpdateProfileLimitCount
	}
	return u.AutoUpdateStoriesLimitCount
}

// quotaLeft reports whether an automatic update of kind may still run today. A zero limit
// means unlimited.
func (a *ArchiverImpl) quotaLeft(ctx context.Context, kind user.AutoUpdateKind, u *domain.InstagramUser) (bool, error) {
	limit := dailyLimit(kind, u)
	if limit <= 0 {
		return true, nil
	}

	used, err := a.Cache.Counter(ctx, quotaKey(kind, u, a.now()))
	if err != nil {
		return false, err
	}
	return used < int64(limit), nil
}

func (a *ArchiverImpl) useQuota(ctx context.Context, kind user.AutoUpdateKind, u *domain.InstagramUser) {
	if _, err := a.Cache.Incr(ctx, quotaKey(kind, u, a.now()), quotaTTL); err != nil {
		a.Logger.Warn("Failed to record daily update", "username", u.Username, "kind", kind, "error", err)
	}
}
