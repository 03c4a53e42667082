package catalog

import (
	"context"
	"log/slog"

	"github.com/yanqian/quiz-catalog/internal/infra/cache"
)

// TopicStore serves topic reads through the cache.
type TopicStore struct {
	repo   TopicRepository
	cache  *cache.Aside
	logger *slog.Logger
}

// NewTopicStore wires the topic content repository.
func NewTopicStore(repo TopicRepository, aside *cache.Aside, logger *slog.Logger) *TopicStore {
	return &TopicStore{repo: repo, cache: aside, logger: logger.With("component", "catalog.topics")}
}

func (s *TopicStore) Create(ctx context.Context, t Topic) (Topic, error) {
	created, err := s.repo.CreateTopic(ctx, t)
	if err != nil {
		return Topic{}, err
	}
	// providers embed their topics
	s.cache.InvalidatePatterns(ctx, cache.TopicsPattern, cache.ProvidersPattern)
	return created, nil
}

func (s *TopicStore) List(ctx context.Context) ([]Topic, error) {
	topics, _, err := cache.Fetch(ctx, s.cache, cache.TopicsAllKey(), s.cache.CatalogTTL(), func(ctx context.Context) ([]Topic, bool, error) {
		list, err := s.repo.ListTopics(ctx)
		return list, err == nil, err
	})
	return topics, err
}

func (s *TopicStore) ListByProvider(ctx context.Context, providerID string) ([]Topic, error) {
	topics, _, err := cache.Fetch(ctx, s.cache, cache.TopicsByProviderKey(providerID), s.cache.CatalogTTL(), func(ctx context.Context) ([]Topic, bool, error) {
		list, err := s.repo.ListTopicsByProvider(ctx, providerID)
		return list, err == nil, err
	})
	return topics, err
}

func (s *TopicStore) GetByID(ctx context.Context, id string) (Topic, bool, error) {
	return cache.Fetch(ctx, s.cache, cache.TopicByIDKey(id), s.cache.CatalogTTL(), func(ctx context.Context) (Topic, bool, error) {
		return s.repo.GetTopicByID(ctx, id)
	})
}

func (s *TopicStore) GetBySlug(ctx context.Context, slug string) (Topic, bool, error) {
	return cache.Fetch(ctx, s.cache, cache.TopicBySlugKey(slug), s.cache.CatalogTTL(), func(ctx context.Context) (Topic, bool, error) {
		return s.repo.GetTopicBySlug(ctx, slug)
	})
}

func (s *TopicStore) Update(ctx context.Context, id string, patch TopicPatch) (Topic, error) {
	updated, err := s.repo.UpdateTopic(ctx, id, patch)
	if err != nil {
		return Topic{}, err
	}
	s.invalidateStructure(ctx)
	return updated, nil
}

func (s *TopicStore) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteTopic(ctx, id); err != nil {
		return err
	}
	s.invalidateStructure(ctx)
	return nil
}

// IncrementQuestionCount is called by question creation.
func (s *TopicStore) IncrementQuestionCount(ctx context.Context, id string) error {
	return s.adjustQuestionCount(ctx, id, 1)
}

// DecrementQuestionCount is called by question removal.
func (s *TopicStore) DecrementQuestionCount(ctx context.Context, id string) error {
	return s.adjustQuestionCount(ctx, id, -1)
}

func (s *TopicStore) adjustQuestionCount(ctx context.Context, id string, delta int) error {
	if err := s.repo.AdjustQuestionCount(ctx, id, delta); err != nil {
		return err
	}
	s.cache.InvalidatePatterns(ctx, cache.TopicsPattern, cache.QuestionsPattern)
	s.logger.Debug("question count adjusted", "topic_id", id, "delta", delta)
	return nil
}

// Questions embed a topic snapshot and providers embed their topics.
func (s *TopicStore) invalidateStructure(ctx context.Context) {
	s.cache.InvalidatePatterns(ctx, cache.TopicsPattern, cache.ProvidersPattern, cache.QuestionsPattern)
}
