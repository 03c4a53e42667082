package catalog

import (
	"context"
	"log/slog"

	"github.com/yanqian/quiz-catalog/internal/infra/cache"
)

// ProviderStore serves provider reads through the cache and invalidates the
// affected key families after every write.
type ProviderStore struct {
	repo   ProviderRepository
	cache  *cache.Aside
	logger *slog.Logger
}

// NewProviderStore wires the provider content repository.
func NewProviderStore(repo ProviderRepository, aside *cache.Aside, logger *slog.Logger) *ProviderStore {
	return &ProviderStore{repo: repo, cache: aside, logger: logger.With("component", "catalog.providers")}
}

func (s *ProviderStore) Create(ctx context.Context, p Provider) (Provider, error) {
	created, err := s.repo.CreateProvider(ctx, p)
	if err != nil {
		return Provider{}, err
	}
	s.cache.InvalidatePatterns(ctx, cache.ProvidersPattern, cache.TopicsPattern)
	return created, nil
}

func (s *ProviderStore) List(ctx context.Context) ([]Provider, error) {
	providers, _, err := cache.Fetch(ctx, s.cache, cache.ProvidersAllKey(), s.cache.CatalogTTL(), func(ctx context.Context) ([]Provider, bool, error) {
		list, err := s.repo.ListProviders(ctx)
		return list, err == nil, err
	})
	return providers, err
}

func (s *ProviderStore) GetByID(ctx context.Context, id string) (Provider, bool, error) {
	return cache.Fetch(ctx, s.cache, cache.ProviderByIDKey(id), s.cache.CatalogTTL(), func(ctx context.Context) (Provider, bool, error) {
		return s.repo.GetProviderByID(ctx, id)
	})
}

func (s *ProviderStore) GetBySlug(ctx context.Context, slug string) (Provider, bool, error) {
	return cache.Fetch(ctx, s.cache, cache.ProviderBySlugKey(slug), s.cache.CatalogTTL(), func(ctx context.Context) (Provider, bool, error) {
		return s.repo.GetProviderBySlug(ctx, slug)
	})
}

func (s *ProviderStore) Update(ctx context.Context, id string, patch ProviderPatch) (Provider, error) {
	updated, err := s.repo.UpdateProvider(ctx, id, patch)
	if err != nil {
		return Provider{}, err
	}
	s.invalidateProvider(ctx, id)
	return updated, nil
}

func (s *ProviderStore) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteProvider(ctx, id); err != nil {
		return err
	}
	s.invalidateProvider(ctx, id)
	return nil
}

// IncrementTopicCount is called by topic creation, never by the store itself.
func (s *ProviderStore) IncrementTopicCount(ctx context.Context, id string) error {
	return s.adjustTopicCount(ctx, id, 1)
}

// DecrementTopicCount is called by topic removal.
func (s *ProviderStore) DecrementTopicCount(ctx context.Context, id string) error {
	return s.adjustTopicCount(ctx, id, -1)
}

func (s *ProviderStore) adjustTopicCount(ctx context.Context, id string, delta int) error {
	if err := s.repo.AdjustTopicCount(ctx, id, delta); err != nil {
		return err
	}
	s.cache.InvalidatePattern(ctx, cache.ProvidersPattern)
	s.logger.Debug("topic count adjusted", "provider_id", id, "delta", delta)
	return nil
}

// Slug keys are not derivable from the id alone, so the family pattern
// covers them. Topic reads embed provider fields.
func (s *ProviderStore) invalidateProvider(ctx context.Context, id string) {
	s.cache.Invalidate(ctx, cache.ProviderByIDKey(id), cache.ProvidersAllKey())
	s.cache.InvalidatePatterns(ctx, cache.ProvidersPattern, cache.TopicsPattern)
}
