package bookmark

// Migrate rewrites a legacy-only profile into the current shape. It reports
// whether anything changed; a profile whose Bookmarks is already populated,
// or that has no legacy data, is returned untouched. Converted entries
// follow the same pruning rule as toggles.
func Migrate(p Profile) (Profile, bool) {
	if len(p.Bookmarks) > 0 || len(p.Topics) == 0 {
		return p, false
	}
	converted := make([]TopicBookmarks, 0, len(p.Topics))
	for _, legacy := range p.Topics {
		if len(legacy.Bookmarked) == 0 {
			continue
		}
		converted = append(converted, TopicBookmarks{
			TopicID:          legacy.TopicID,
			BookmarkedSeqNos: append([]int(nil), legacy.Bookmarked...),
		})
	}
	p.Bookmarks = converted
	p.Topics = nil
	return p, true
}

// toggle flips seqNo for topicID and prunes empty entries. It returns the new
// list and whether seqNo is now bookmarked. The input is not modified.
func toggle(bookmarks []TopicBookmarks, topicID string, seqNo int) ([]TopicBookmarks, bool) {
	out := cloneBookmarks(bookmarks)
	idx := -1
	for i, entry := range out {
		if entry.TopicID == topicID {
			idx = i
			break
		}
	}

	var marked bool
	switch {
	case idx == -1:
		out = append(out, TopicBookmarks{TopicID: topicID, BookmarkedSeqNos: []int{seqNo}})
		marked = true
	default:
		seqs := out[idx].BookmarkedSeqNos
		pos := indexOf(seqs, seqNo)
		if pos == -1 {
			out[idx].BookmarkedSeqNos = append(seqs, seqNo)
			marked = true
		} else {
			out[idx].BookmarkedSeqNos = append(seqs[:pos], seqs[pos+1:]...)
		}
	}
	return prune(out), marked
}

func removeTopic(bookmarks []TopicBookmarks, topicID string) ([]TopicBookmarks, bool) {
	out := make([]TopicBookmarks, 0, len(bookmarks))
	removed := false
	for _, entry := range bookmarks {
		if entry.TopicID == topicID {
			removed = true
			continue
		}
		out = append(out, entry)
	}
	return out, removed
}

func prune(bookmarks []TopicBookmarks) []TopicBookmarks {
	out := bookmarks[:0]
	for _, entry := range bookmarks {
		if len(entry.BookmarkedSeqNos) > 0 {
			out = append(out, entry)
		}
	}
	return out
}

func cloneBookmarks(in []TopicBookmarks) []TopicBookmarks {
	out := make([]TopicBookmarks, len(in))
	for i, entry := range in {
		out[i] = TopicBookmarks{TopicID: entry.TopicID, BookmarkedSeqNos: append([]int(nil), entry.BookmarkedSeqNos...)}
	}
	return out
}

func indexOf(values []int, target int) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}
