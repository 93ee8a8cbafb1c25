package domain

import (
	"time"

	"github.com/google/uuid"
)

// EmbeddingDimensions is the width of the story embedding column.
const EmbeddingDimensions = 1536

type Story struct {
	StoryID        string
	UserUUID       uuid.UUID
	Thumbnail      string
	BlurDataURL    string
	Media          string
	CreatedAt      time.Time
	StoryCreatedAt time.Time

	// User is populated by listing queries.
	User *InstagramUser
	// SimilarityScore is set only by similarity queries.
	SimilarityScore float64
}

// StoryPosition is a keyset position in the (created_at, story_id) ordering.
type StoryPosition struct {
	CreatedAt time.Time
	StoryID   string
}

// StoryFilter narrows story listings. A nil After/Before lists from the newest story.
type StoryFilter struct {
	Search   string
	UserUUID *uuid.UUID
	Limit    int
	// After returns stories older than the position, newest first.
	After *StoryPosition
	// Before returns stories newer than the position, newest first.
	Before *StoryPosition
}
