package bookmark

import "time"

// TopicBookmarks holds the bookmarked positions of one topic.
type TopicBookmarks struct {
	TopicID          string `json:"topic_id"`
	BookmarkedSeqNos []int  `json:"bookmarked_seq_nos"`
}

// LegacyTopicBookmarks is the pre-migration shape of TopicBookmarks.
type LegacyTopicBookmarks struct {
	TopicID    string `json:"topic_id"`
	Bookmarked []int  `json:"bookmarked"`
}

// Profile is the per-user bookmark document. An entry exists in Bookmarks
// only while its list is non-empty.
type Profile struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Bookmarks []TopicBookmarks       `json:"bookmarks"`
	Topics    []LegacyTopicBookmarks `json:"topics,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// SeqNos returns the bookmarked positions for topicID in insertion order.
func (p Profile) SeqNos(topicID string) []int {
	for _, entry := range p.Bookmarks {
		if entry.TopicID == topicID {
			return append([]int(nil), entry.BookmarkedSeqNos...)
		}
	}
	return []int{}
}
