package user

import (
	"fmt"

	"github.com/orgball2608/insta-archive/internal/domain"
)

var profileColumns = []string{
	"uuid",
	"instagram_id",
	"username",
	"full_name",
	"profile_picture",
	"biography",
	"is_private",
	"is_verified",
	"media_count",
	"follower_count",
	"following_count",
	"allow_auto_update_stories",
	"allow_auto_update_profile",
	"auto_update_stories_limit_count",
	"auto_update_profile_limit_count",
	"created_at",
	"updated_at",
	"updated_at_from_api",
}

// Columns returns the user columns prefixed with alias, followed by the
// has_stories and has_history annotations.
func Columns(alias string) []string {
	cols := make([]string, 0, len(profileColumns)+2)
	for _, c := range profileColumns {
		cols = append(cols, alias+"."+c)
	}
	return append(cols,
		fmt.Sprintf("EXISTS (SELECT 1 FROM stories hs WHERE hs.user_uuid = %s.uuid) AS has_stories", alias),
		fmt.Sprintf("EXISTS (SELECT 1 FROM instagram_users_history hh WHERE hh.uuid = %s.uuid) AS has_history", alias),
	)
}

// ScanDest returns scan targets matching Columns.
func ScanDest(u *domain.InstagramUser) []any {
	return append(snapshotDest(u), &u.HasStories, &u.HasHistory)
}

func snapshotDest(u *domain.InstagramUser) []any {
	return []any{
		&u.UUID,
		&u.InstagramID,
		&u.Username,
		&u.FullName,
		&u.ProfilePicture,
		&u.Biography,
		&u.IsPrivate,
		&u.IsVerified,
		&u.MediaCount,
		&u.FollowerCount,
		&u.FollowingCount,
		&u.AllowAutoUpdateStories,
		&u.AllowAutoUpdateProfile,
		&u.AutoUpdateStoriesLimitCount,
		&u.AutoUpdateProfileLimitCount,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.UpdatedAtFromAPI,
	}
}

func values(u *domain.InstagramUser) []any {
	return []any{
		u.UUID,
		u.InstagramID,
		u.Username,
		u.FullName,
		u.ProfilePicture,
		u.Biography,
		u.IsPrivate,
		u.IsVerified,
		u.MediaCount,
		u.FollowerCount,
		u.FollowingCount,
		u.AllowAutoUpdateStories,
		u.AllowAutoUpdateProfile,
		u.AutoUpdateStoriesLimitCount,
		u.AutoUpdateProfileLimitCount,
		u.CreatedAt,
		u.UpdatedAt,
		u.UpdatedAtFromAPI,
	}
}
