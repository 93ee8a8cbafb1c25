package httpapi

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/insta-archive/internal/domain"
)

type userBase struct {
	UUID                   uuid.UUID `json:"uuid"`
	InstagramID            string    `json:"instagram_id"`
	Username               string    `json:"username"`
	FullName               string    `json:"full_name"`
	ProfilePicture         string    `json:"profile_picture"`
	Biography              string    `json:"biography"`
	IsPrivate              bool      `json:"is_private"`
	IsVerified             bool      `json:"is_verified"`
	MediaCount             int       `json:"media_count"`
	FollowerCount          int       `json:"follower_count"`
	FollowingCount         int       `json:"following_count"`
	AllowAutoUpdateStories bool      `json:"allow_auto_update_stories"`
	AllowAutoUpdateProfile bool      `json:"allow_auto_update_profile"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

type UserList struct {
	userBase
	APIUpdatedAt *time.Time `json:"api_updated_at"`
	HasStories   bool       `json:"has_stories"`
	HasHistory   bool       `json:"has_history"`
}

type UserDetail struct {
	userBase
	AutoUpdateStoriesLimitCount int        `json:"auto_update_stories_limit_count"`
	AutoUpdateProfileLimitCount int        `json:"auto_update_profile_limit_count"`
	UpdatedAtFromAPI            *time.Time `json:"updated_at_from_api"`
	HasStories                  bool       `json:"has_stories"`
	HasHistory                  bool       `json:"has_history"`
}

type UserHistory struct {
	HistoryID   int       `json:"history_id"`
	HistoryDate time.Time `json:"history_date"`
	HistoryType string    `json:"history_type"`
	userBase
	AutoUpdateStoriesLimitCount int        `json:"auto_update_stories_limit_count"`
	AutoUpdateProfileLimitCount int        `json:"auto_update_profile_limit_count"`
	UpdatedAtFromAPI            *time.Time `json:"updated_at_from_api"`
}

type StoryList struct {
	StoryID        string    `json:"story_id"`
	User           *UserList `json:"user"`
	Thumbnail      string    `json:"thumbnail"`
	BlurDataURL    string    `json:"blur_data_url"`
	Media          string    `json:"media"`
	CreatedAt      time.Time `json:"created_at"`
	StoryCreatedAt time.Time `json:"story_created_at"`
}

type StoryDetail struct {
	StoryID        string      `json:"story_id"`
	User           *UserDetail `json:"user"`
	Thumbnail      string      `json:"thumbnail"`
	BlurDataURL    string      `json:"blur_data_url"`
	Media          string      `json:"media"`
	CreatedAt      time.Time   `json:"created_at"`
	StoryCreatedAt time.Time   `json:"story_created_at"`
}

type SimilarStory struct {
	StoryList
	SimilarityScore float64 `json:"similarity_score"`
}

type AdminAccount struct {
	ID          int        `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	IsSuperuser bool       `json:"is_superuser"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

func newUserBase(u *domain.InstagramUser) userBase {
	return userBase{
		UUID:                   u.UUID,
		InstagramID:            u.InstagramID,
		Username:               u.Username,
		FullName:               u.FullName,
		ProfilePicture:         u.ProfilePicture,
		Biography:              u.Biography,
		IsPrivate:              u.IsPrivate,
		IsVerified:             u.IsVerified,
		MediaCount:             u.MediaCount,
		FollowerCount:          u.FollowerCount,
		FollowingCount:         u.FollowingCount,
		AllowAutoUpdateStories: u.AllowAutoUpdateStories,
		AllowAutoUpdateProfile: u.AllowAutoUpdateProfile,
		CreatedAt:              u.CreatedAt,
		UpdatedAt:              u.UpdatedAt,
	}
}

func newUserList(u *domain.InstagramUser) *UserList {
	if u == nil {
		return nil
	}
	return &UserList{
		userBase:     newUserBase(u),
		APIUpdatedAt: u.UpdatedAtFromAPI,
		HasStories:   u.HasStories,
		HasHistory:   u.HasHistory,
	}
}

func newUserDetail(u *domain.InstagramUser) *UserDetail {
	if u == nil {
		return nil
	}
	return &UserDetail{
		userBase:                    newUserBase(u),
		AutoUpdateStoriesLimitCount: u.AutoUpdateStoriesLimitCount,
		AutoUpdateProfileLimitCount: u.AutoUpdateProfileLimitCount,
		UpdatedAtFromAPI:            u.UpdatedAtFromAPI,
		HasStories:                  u.HasStories,
		HasHistory:                  u.HasHistory,
	}
}

func newUserHistory(h *domain.UserHistory) UserHistory {
	return UserHistory{
		HistoryID:                   h.HistoryID,
		HistoryDate:                 h.HistoryDate,
		HistoryType:                 h.HistoryType,
		userBase:                    newUserBase(&h.User),
		AutoUpdateStoriesLimitCount: h.User.AutoUpdateStoriesLimitCount,
		AutoUpdateProfileLimitCount: h.User.AutoUpdateProfileLimitCount,
		UpdatedAtFromAPI:            h.User.UpdatedAtFromAPI,
	}
}

// mediaURL renders a stored media path as an absolute URL; empty paths stay empty.
func mediaURL(base, path string) string {
	if path == "" {
		return ""
	}
	return base + "/media/" + strings.TrimPrefix(path, "/")
}

func newStoryList(base string, st *domain.Story) StoryList {
	return StoryList{
		StoryID:        st.StoryID,
		User:           newUserList(st.User),
		Thumbnail:      mediaURL(base, st.Thumbnail),
		BlurDataURL:    st.BlurDataURL,
		Media:          mediaURL(base, st.Media),
		CreatedAt:      st.CreatedAt,
		StoryCreatedAt: st.StoryCreatedAt,
	}
}

func newStoryDetail(base string, st *domain.Story) StoryDetail {
	return StoryDetail{
		StoryID:        st.StoryID,
		User:           newUserDetail(st.User),
		Thumbnail:      mediaURL(base, st.Thumbnail),
		BlurDataURL:    st.BlurDataURL,
		Media:          mediaURL(base, st.Media),
		CreatedAt:      st.CreatedAt,
		StoryCreatedAt: st.StoryCreatedAt,
	}
}

func newAdminAccount(a *domain.AdminAccount) AdminAccount {
	return AdminAccount{
		ID:          a.ID,
		Username:    a.Username,
		Email:       a.Email,
		IsSuperuser: a.IsSuperuser,
		CreatedAt:   a.CreatedAt,
		LastLoginAt: a.LastLoginAt,
	}
}
