package catalog

import (
	"context"
	"log/slog"

	"github.com/yanqian/quiz-catalog/internal/infra/cache"
)

// QuestionStore serves question reads through the cache. Every question
// mutation drops the whole questions family because cached page boundaries
// depend on every seq_no in the topic.
type QuestionStore struct {
	repo   QuestionRepository
	topics *TopicStore
	cache  *cache.Aside
	logger *slog.Logger
}

// NewQuestionStore wires the question content repository.
func NewQuestionStore(repo QuestionRepository, topics *TopicStore, aside *cache.Aside, logger *slog.Logger) *QuestionStore {
	return &QuestionStore{repo: repo, topics: topics, cache: aside, logger: logger.With("component", "catalog.questions")}
}

func (s *QuestionStore) Create(ctx context.Context, q Question) (Question, error) {
	created, err := s.repo.CreateQuestion(ctx, q)
	if err != nil {
		return Question{}, err
	}
	s.cache.InvalidatePattern(ctx, cache.QuestionsPattern)
	return created, nil
}

// GetByID returns published questions only, whether served from cache or
// from the store.
func (s *QuestionStore) GetByID(ctx context.Context, id string) (Question, bool, error) {
	q, found, err := cache.Fetch(ctx, s.cache, cache.QuestionByIDKey(id), s.cache.CatalogTTL(), func(ctx context.Context) (Question, bool, error) {
		return publishedOnly(s.repo.GetQuestionByID(ctx, id))
	})
	return publishedOnly(q, found, err)
}

// GetBySlug returns published questions only.
func (s *QuestionStore) GetBySlug(ctx context.Context, slug string) (Question, bool, error) {
	q, found, err := cache.Fetch(ctx, s.cache, cache.QuestionBySlugKey(slug), s.cache.CatalogTTL(), func(ctx context.Context) (Question, bool, error) {
		return publishedOnly(s.repo.GetQuestionBySlug(ctx, slug))
	})
	return publishedOnly(q, found, err)
}

// Lookup reads the store directly and ignores status, for write paths.
func (s *QuestionStore) Lookup(ctx context.Context, id string) (Question, bool, error) {
	return s.repo.GetQuestionByID(ctx, id)
}

// LookupBySlug is Lookup keyed by qn_slug.
func (s *QuestionStore) LookupBySlug(ctx context.Context, slug string) (Question, bool, error) {
	return s.repo.GetQuestionBySlug(ctx, slug)
}

func (s *QuestionStore) Update(ctx context.Context, id string, patch QuestionPatch) (Question, error) {
	updated, err := s.repo.UpdateQuestion(ctx, id, patch)
	if err != nil {
		return Question{}, err
	}
	s.cache.InvalidatePattern(ctx, cache.QuestionsPattern)
	return updated, nil
}

func (s *QuestionStore) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteQuestion(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidatePattern(ctx, cache.QuestionsPattern)
	return nil
}

// GetQuestionsByIndex returns the page of published questions starting at
// the 1-based index, ordered by seq_no.
func (s *QuestionStore) GetQuestionsByIndex(ctx context.Context, topicSlug string, index, limit int) (QuestionPage, error) {
	return s.page(ctx, cache.QuestionPageKey(topicSlug, index, limit), topicSlug, nil, index, limit)
}

// GetQuestionsByTags is GetQuestionsByIndex restricted to questions carrying
// any of tags.
func (s *QuestionStore) GetQuestionsByTags(ctx context.Context, topicSlug string, index int, tags []string, limit int) (QuestionPage, error) {
	tags = cache.NormalizeTags(tags)
	return s.page(ctx, cache.QuestionTagsPageKey(topicSlug, tags, index, limit), topicSlug, tags, index, limit)
}

// GetBookmarkedQuestions pages over the published questions whose seq_no is
// bookmarked. The result is per user and is not cached.
func (s *QuestionStore) GetBookmarkedQuestions(ctx context.Context, topicSlug string, index int, seqNos []int, limit int) (QuestionPage, error) {
	topic, err := s.topic(ctx, topicSlug)
	if err != nil {
		return QuestionPage{}, err
	}
	if len(seqNos) == 0 {
		return QuestionPage{Questions: []Question{}}, nil
	}
	questions, err := s.repo.FindQuestions(ctx, QuestionFilter{
		TopicID: topic.ID,
		SeqNos:  seqNos,
		Skip:    skipFor(index),
		Limit:   limit,
	})
	if err != nil {
		return QuestionPage{}, err
	}
	return QuestionPage{Questions: questions, TotalCount: len(seqNos)}, nil
}

func (s *QuestionStore) page(ctx context.Context, key, topicSlug string, tags []string, index, limit int) (QuestionPage, error) {
	var cached QuestionPage
	if s.cache.Read(ctx, key, &cached) {
		return cached, nil
	}
	topic, err := s.topic(ctx, topicSlug)
	if err != nil {
		return QuestionPage{}, err
	}
	filter := QuestionFilter{TopicID: topic.ID, Tags: tags}
	total, err := s.repo.CountQuestions(ctx, filter)
	if err != nil {
		return QuestionPage{}, err
	}
	filter.Skip = skipFor(index)
	filter.Limit = limit
	questions, err := s.repo.FindQuestions(ctx, filter)
	if err != nil {
		return QuestionPage{}, err
	}
	result := QuestionPage{Questions: questions, TotalCount: total}
	if len(questions) > 0 {
		s.cache.Write(ctx, key, result, s.cache.CatalogTTL())
	}
	return result, nil
}

func (s *QuestionStore) topic(ctx context.Context, slug string) (Topic, error) {
	topic, found, err := s.topics.GetBySlug(ctx, slug)
	if err != nil {
		return Topic{}, err
	}
	if !found {
		return Topic{}, ErrNotFound
	}
	return topic, nil
}

func skipFor(index int) int {
	if index < 1 {
		return 0
	}
	return index - 1
}

func publishedOnly(q Question, found bool, err error) (Question, bool, error) {
	if err != nil || !found {
		return Question{}, false, err
	}
	if !q.Published() {
		return Question{}, false, nil
	}
	return q, true, nil
}
