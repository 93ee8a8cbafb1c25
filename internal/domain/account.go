package domain

import "time"

// AdminAccount is an operator allowed to modify the archive.
type AdminAccount struct {
	ID           int
	Username     string
	Email        string
	PasswordHash string
	IsSuperuser  bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// ArchiveStats summarizes the archive for the admin surface.
type ArchiveStats struct {
	Users                int64
	Stories              int64
	StoriesWithEmbedding int64
	Accounts             int64
}
