package domain

import "time"

// Profile is an Instagram profile as returned by the upstream client.
type Profile struct {
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
}

// StoryItem is a live story as returned by the upstream client.
type StoryItem struct {
	ID       string
	Username string
	MediaURL string
	IsVideo  bool
	TakenAt  time.Time
}
