package profilerepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/quiz-catalog/internal/domain/bookmark"
)

// MemoryRepository provides an in-memory profile store for tests/dev.
type MemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]bookmark.Profile
	byUser   map[string]string
	writes   int
	now      func() time.Time
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		profiles: make(map[string]bookmark.Profile),
		byUser:   make(map[string]string),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Ensure returns the user's profile, creating it when absent.
func (r *MemoryRepository) Ensure(_ context.Context, userID string) (bookmark.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byUser[userID]; ok {
		return clone(r.profiles[id]), nil
	}
	now := r.now()
	profile := bookmark.Profile{
		ID:        uuid.NewString(),
		UserID:    userID,
		Bookmarks: []bookmark.TopicBookmarks{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.profiles[profile.ID] = profile
	r.byUser[userID] = profile.ID
	return clone(profile), nil
}

// SaveBookmarks replaces the bookmark list and drops legacy data.
func (r *MemoryRepository) SaveBookmarks(_ context.Context, profileID string, bookmarks []bookmark.TopicBookmarks) (bookmark.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[profileID]
	if !ok {
		return bookmark.Profile{}, bookmark.ErrProfileNotFound
	}
	profile.Bookmarks = clone(bookmark.Profile{Bookmarks: bookmarks}).Bookmarks
	profile.Topics = nil
	profile.UpdatedAt = r.now()
	r.profiles[profileID] = profile
	r.writes++
	return clone(profile), nil
}

// Seed stores a profile as is, e.g. one still in the legacy shape.
func (r *MemoryRepository) Seed(profile bookmark.Profile) bookmark.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	r.profiles[profile.ID] = clone(profile)
	r.byUser[profile.UserID] = profile.ID
	return profile
}

// Writes counts SaveBookmarks calls.
func (r *MemoryRepository) Writes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.writes
}

func clone(p bookmark.Profile) bookmark.Profile {
	out := p
	out.Bookmarks = make([]bookmark.TopicBookmarks, len(p.Bookmarks))
	for i, entry := range p.Bookmarks {
		out.Bookmarks[i] = bookmark.TopicBookmarks{TopicID: entry.TopicID, BookmarkedSeqNos: append([]int(nil), entry.BookmarkedSeqNos...)}
	}
	if p.Topics != nil {
		out.Topics = make([]bookmark.LegacyTopicBookmarks, len(p.Topics))
		for i, entry := range p.Topics {
			out.Topics[i] = bookmark.LegacyTopicBookmarks{TopicID: entry.TopicID, Bookmarked: append([]int(nil), entry.Bookmarked...)}
		}
	}
	return out
}

var _ bookmark.Repository = (*MemoryRepository)(nil)
