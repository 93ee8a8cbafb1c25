package domain

import (
	"time"

	"github.com/google/uuid"
)

// InstagramUser is an archived Instagram account.
type InstagramUser struct {
	UUID           uuid.UUID
	InstagramID    string
	Username       string
	FullName       string
	ProfilePicture string
	Biography      string
	IsPrivate      bool
	IsVerified     bool
	MediaCount     int
	FollowerCount  int
	FollowingCount int

	AllowAutoUpdateStories      bool
	AllowAutoUpdateProfile      bool
	AutoUpdateStoriesLimitCount int
	AutoUpdateProfileLimitCount int

	CreatedAt        time.Time
	UpdatedAt        time.Time
	UpdatedAtFromAPI *time.Time

	// Computed per query.
	HasStories bool
	HasHistory bool
}

// ApplyProfile copies upstream profile fields onto u.
func (u *InstagramUser) ApplyProfile(p Profile) {
	u.InstagramID = p.InstagramID
	u.Username = p.Username
	u.FullName = p.FullName
	u.ProfilePicture = p.ProfilePicture
	u.Biography = p.Biography
	u.IsPrivate = p.IsPrivate
	u.IsVerified = p.IsVerified
	u.MediaCount = p.MediaCount
	u.FollowerCount = p.FollowerCount
	u.FollowingCount = p.FollowingCount
}

const (
	HistoryCreated = "+"
	HistoryChanged = "~"
	HistoryDeleted = "-"
)

// UserHistory is a snapshot of an InstagramUser at HistoryDate.
type UserHistory struct {
	HistoryID   int
	HistoryDate time.Time
	HistoryType string
	User        InstagramUser
}

// UserSettings is a partial update of the auto-update options.
type UserSettings struct {
	AllowAutoUpdateStories      *bool
	AllowAutoUpdateProfile      *bool
	AutoUpdateStoriesLimitCount *int
	AutoUpdateProfileLimitCount *int
}

func (s UserSettings) Apply(u *InstagramUser) {
	if s.AllowAutoUpdateStories != nil {
		u.AllowAutoUpdateStories = *s.AllowAutoUpdateStories
	}
	if s.AllowAutoUpdateProfile != nil {
		u.AllowAutoUpdateProfile = *s.AllowAutoUpdateProfile
	}
	if s.AutoUpdateStoriesLimitCount != nil {
		u.AutoUpdateStoriesLimitCount = *s.AutoUpdateStoriesLimitCount
	}
	if s.AutoUpdateProfileLimitCount != nil {
		u.AutoUpdateProfileLimitCount = *s.AutoUpdateProfileLimitCount
	}
}

// UserFilter narrows user listings.
type UserFilter struct {
	Search string
	Limit  int
	Offset int
}
