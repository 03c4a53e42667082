package catalog

import (
	"context"
	"log/slog"

	"github.com/yanqian/quiz-catalog/internal/infra/cache"
)

// Sequencer assigns topic scoped positions to new questions.
//
// Shift and insert are two statements with no lock between them: concurrent
// inserts at overlapping positions race and the last writer wins.
type Sequencer struct {
	repo   QuestionRepository
	cache  *cache.Aside
	logger *slog.Logger
}

// NewSequencer constructs the sequence manager.
func NewSequencer(repo QuestionRepository, aside *cache.Aside, logger *slog.Logger) *Sequencer {
	return &Sequencer{repo: repo, cache: aside, logger: logger.With("component", "catalog.sequencer")}
}

// Assign returns the seq_no the new question must be inserted at. With no
// requested position the question is appended after the last published one.
// A requested position held by a published question first moves that
// question and every later one down by one.
func (s *Sequencer) Assign(ctx context.Context, topicID string, requested *int) (int, error) {
	if requested == nil {
		last, err := s.repo.LastSeqNo(ctx, topicID)
		if err != nil {
			return 0, err
		}
		return last + 1, nil
	}

	position := *requested
	if position < 1 {
		return 0, ErrInvalidPosition
	}
	occupied, err := s.repo.ExistsAtSeqNo(ctx, topicID, position)
	if err != nil {
		return 0, err
	}
	if !occupied {
		return position, nil
	}
	shifted, err := s.repo.ShiftSeqNos(ctx, topicID, position)
	if err != nil {
		return 0, err
	}
	s.cache.InvalidatePattern(ctx, cache.QuestionsPattern)
	s.logger.Info("shifted questions for insert", "topic_id", topicID, "from", position, "count", shifted)
	return position, nil
}
