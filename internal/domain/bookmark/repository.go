package bookmark

import (
	"context"
	"errors"
)

// Repository persists profiles.
type Repository interface {
	// Ensure returns the user's profile, creating an empty one if needed.
	Ensure(ctx context.Context, userID string) (Profile, error)
	// SaveBookmarks replaces the bookmark list and clears the legacy field.
	SaveBookmarks(ctx context.Context, profileID string, bookmarks []TopicBookmarks) (Profile, error)
}

// ErrProfileNotFound is returned when saving to an unknown profile id.
var ErrProfileNotFound = errors.New("bookmark: profile not found")
