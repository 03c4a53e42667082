package catalogrepo

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/quiz-catalog/internal/domain/catalog"
)

// MemoryRepository provides an in-memory catalog store for tests/dev. It
// enforces the same unique and reference constraints as the Postgres schema.
type MemoryRepository struct {
	mu        sync.RWMutex
	providers map[string]catalog.Provider
	topics    map[string]catalog.Topic
	questions map[string]catalog.Question
	now       func() time.Time
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		providers: make(map[string]catalog.Provider),
		topics:    make(map[string]catalog.Topic),
		questions: make(map[string]catalog.Question),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Ping always succeeds.
func (r *MemoryRepository) Ping(context.Context) error { return nil }

// Providers.

func (r *MemoryRepository) CreateProvider(_ context.Context, p catalog.Provider) (catalog.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.providerSlugTaken(p.ProviderSlug, "") {
		return catalog.Provider{}, catalog.ErrConflict
	}
	now := r.now()
	p.ID = uuid.NewString()
	p.TopicCount = 0
	p.Topics = nil
	p.CreatedAt, p.UpdatedAt = now, now
	r.providers[p.ID] = p
	return p, nil
}

func (r *MemoryRepository) GetProviderByID(_ context.Context, id string) (catalog.Provider, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	if !ok {
		return catalog.Provider{}, false, nil
	}
	return r.withTopics(p), true, nil
}

func (r *MemoryRepository) GetProviderBySlug(_ context.Context, slug string) (catalog.Provider, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.providers {
		if p.ProviderSlug == slug {
			return r.withTopics(p), true, nil
		}
	}
	return catalog.Provider{}, false, nil
}

func (r *MemoryRepository) ListProviders(_ context.Context) ([]catalog.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]catalog.Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (r *MemoryRepository) UpdateProvider(_ context.Context, id string, patch catalog.ProviderPatch) (catalog.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[id]
	if !ok {
		return catalog.Provider{}, catalog.ErrNotFound
	}
	if patch.ProviderSlug != nil && r.providerSlugTaken(*patch.ProviderSlug, id) {
		return catalog.Provider{}, catalog.ErrConflict
	}
	if patch.Provider != nil {
		p.Provider = *patch.Provider
	}
	if patch.ProviderSlug != nil {
		p.ProviderSlug = *patch.ProviderSlug
	}
	p.UpdatedAt = r.now()
	r.providers[id] = p
	return p, nil
}

func (r *MemoryRepository) DeleteProvider(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[id]; !ok {
		return catalog.ErrNotFound
	}
	for _, t := range r.topics {
		if t.ProviderID == id {
			return catalog.ErrInvalidReference
		}
	}
	delete(r.providers, id)
	return nil
}

func (r *MemoryRepository) AdjustTopicCount(_ context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[id]
	if !ok {
		return catalog.ErrNotFound
	}
	p.TopicCount += delta
	p.UpdatedAt = r.now()
	r.providers[id] = p
	return nil
}

// Topics.

func (r *MemoryRepository) CreateTopic(_ context.Context, t catalog.Topic) (catalog.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[t.ProviderID]; !ok {
		return catalog.Topic{}, catalog.ErrInvalidReference
	}
	if r.topicSlugTaken(t.TopicSlug, "") {
		return catalog.Topic{}, catalog.ErrConflict
	}
	now := r.now()
	t.ID = uuid.NewString()
	t.QnCount = 0
	t.Tags = cloneStrings(t.Tags)
	t.Provider = nil
	t.CreatedAt, t.UpdatedAt = now, now
	r.topics[t.ID] = t
	return r.withProvider(t), nil
}

func (r *MemoryRepository) GetTopicByID(_ context.Context, id string) (catalog.Topic, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.topics[id]
	if !ok {
		return catalog.Topic{}, false, nil
	}
	return r.withProvider(t), true, nil
}

func (r *MemoryRepository) GetTopicBySlug(_ context.Context, slug string) (catalog.Topic, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.topics {
		if t.TopicSlug == slug {
			return r.withProvider(t), true, nil
		}
	}
	return catalog.Topic{}, false, nil
}

func (r *MemoryRepository) ListTopics(_ context.Context) ([]catalog.Topic, error) {
	return r.listTopics(func(catalog.Topic) bool { return true }, true), nil
}

func (r *MemoryRepository) ListTopicsByProvider(_ context.Context, providerID string) ([]catalog.Topic, error) {
	return r.listTopics(func(t catalog.Topic) bool { return t.ProviderID == providerID }, false), nil
}

func (r *MemoryRepository) UpdateTopic(_ context.Context, id string, patch catalog.TopicPatch) (catalog.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topics[id]
	if !ok {
		return catalog.Topic{}, catalog.ErrNotFound
	}
	if patch.TopicSlug != nil && r.topicSlugTaken(*patch.TopicSlug, id) {
		return catalog.Topic{}, catalog.ErrConflict
	}
	if patch.ProviderID != nil {
		if _, ok := r.providers[*patch.ProviderID]; !ok {
			return catalog.Topic{}, catalog.ErrInvalidReference
		}
		t.ProviderID = *patch.ProviderID
	}
	if patch.Topic != nil {
		t.Topic = *patch.Topic
	}
	if patch.TopicSlug != nil {
		t.TopicSlug = *patch.TopicSlug
	}
	if patch.Tags != nil {
		t.Tags = cloneStrings(*patch.Tags)
	}
	t.UpdatedAt = r.now()
	r.topics[id] = t
	return r.withProvider(t), nil
}

func (r *MemoryRepository) DeleteTopic(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.topics[id]; !ok {
		return catalog.ErrNotFound
	}
	for _, q := range r.questions {
		if q.TopicID == id {
			return catalog.ErrInvalidReference
		}
	}
	delete(r.topics, id)
	return nil
}

func (r *MemoryRepository) AdjustQuestionCount(_ context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topics[id]
	if !ok {
		return catalog.ErrNotFound
	}
	t.QnCount += delta
	t.UpdatedAt = r.now()
	r.topics[id] = t
	return nil
}

// Questions.

func (r *MemoryRepository) CreateQuestion(_ context.Context, q catalog.Question) (catalog.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.topics[q.TopicID]; !ok {
		return catalog.Question{}, catalog.ErrInvalidReference
	}
	if r.questionSlugTaken(q.QnSlug, "") {
		return catalog.Question{}, catalog.ErrConflict
	}
	now := r.now()
	q.ID = uuid.NewString()
	q.Options = slices.Clone(q.Options)
	q.Tags = cloneStrings(q.Tags)
	q.Topic = nil
	q.CreatedAt, q.UpdatedAt = now, now
	r.questions[q.ID] = q
	return r.withTopic(q), nil
}

func (r *MemoryRepository) GetQuestionByID(_ context.Context, id string) (catalog.Question, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.questions[id]
	if !ok {
		return catalog.Question{}, false, nil
	}
	return r.withTopic(q), true, nil
}

func (r *MemoryRepository) GetQuestionBySlug(_ context.Context, slug string) (catalog.Question, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, q := range r.questions {
		if q.QnSlug == slug {
			return r.withTopic(q), true, nil
		}
	}
	return catalog.Question{}, false, nil
}

func (r *MemoryRepository) UpdateQuestion(_ context.Context, id string, patch catalog.QuestionPatch) (catalog.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.questions[id]
	if !ok {
		return catalog.Question{}, catalog.ErrNotFound
	}
	if patch.QnSlug != nil && r.questionSlugTaken(*patch.QnSlug, id) {
		return catalog.Question{}, catalog.ErrConflict
	}
	if patch.TopicID != nil {
		if _, ok := r.topics[*patch.TopicID]; !ok {
			return catalog.Question{}, catalog.ErrInvalidReference
		}
		q.TopicID = *patch.TopicID
	}
	applyQuestionPatch(&q, patch)
	q.UpdatedAt = r.now()
	r.questions[id] = q
	return r.withTopic(q), nil
}

func (r *MemoryRepository) DeleteQuestion(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.questions[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(r.questions, id)
	return nil
}

func (r *MemoryRepository) LastSeqNo(_ context.Context, topicID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	last := 0
	for _, q := range r.questions {
		if q.TopicID == topicID && q.Published() && q.SeqNo > last {
			last = q.SeqNo
		}
	}
	return last, nil
}

func (r *MemoryRepository) ExistsAtSeqNo(_ context.Context, topicID string, seqNo int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, q := range r.questions {
		if q.TopicID == topicID && q.Published() && q.SeqNo == seqNo {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) ShiftSeqNos(_ context.Context, topicID string, from int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var shifted int64
	now := r.now()
	for id, q := range r.questions {
		if q.TopicID == topicID && q.SeqNo >= from {
			q.SeqNo++
			q.UpdatedAt = now
			r.questions[id] = q
			shifted++
		}
	}
	return shifted, nil
}

func (r *MemoryRepository) FindQuestions(_ context.Context, filter catalog.QuestionFilter) ([]catalog.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := r.matchQuestions(filter)
	sort.Slice(matched, func(i, j int) bool { return matched[i].SeqNo < matched[j].SeqNo })
	start := min(filter.Skip, len(matched))
	end := len(matched)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(matched))
	}
	out := make([]catalog.Question, 0, end-start)
	for _, q := range matched[start:end] {
		out = append(out, r.withTopic(q))
	}
	return out, nil
}

func (r *MemoryRepository) CountQuestions(_ context.Context, filter catalog.QuestionFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matchQuestions(filter)), nil
}

func (r *MemoryRepository) matchQuestions(filter catalog.QuestionFilter) []catalog.Question {
	var out []catalog.Question
	for _, q := range r.questions {
		if q.TopicID != filter.TopicID || !q.Published() {
			continue
		}
		if len(filter.Tags) > 0 && !sharesTag(q.Tags, filter.Tags) {
			continue
		}
		if len(filter.SeqNos) > 0 && !slices.Contains(filter.SeqNos, q.SeqNo) {
			continue
		}
		out = append(out, q)
	}
	return out
}

// Snapshot helpers expect r.mu to be held.

func (r *MemoryRepository) withTopics(p catalog.Provider) catalog.Provider {
	p.Topics = []catalog.Topic{}
	for _, t := range r.topics {
		if t.ProviderID == p.ID {
			p.Topics = append(p.Topics, t)
		}
	}
	sort.Slice(p.Topics, func(i, j int) bool {
		return newerFirst(p.Topics[i].CreatedAt, p.Topics[j].CreatedAt, p.Topics[i].ID, p.Topics[j].ID)
	})
	return p
}

func (r *MemoryRepository) withProvider(t catalog.Topic) catalog.Topic {
	if p, ok := r.providers[t.ProviderID]; ok {
		t.Provider = &catalog.ProviderRef{ID: p.ID, Provider: p.Provider, ProviderSlug: p.ProviderSlug}
	}
	return t
}

func (r *MemoryRepository) withTopic(q catalog.Question) catalog.Question {
	if t, ok := r.topics[q.TopicID]; ok {
		q.Topic = &catalog.TopicRef{ID: t.ID, Topic: t.Topic, TopicSlug: t.TopicSlug, ProviderID: t.ProviderID, QnCount: t.QnCount}
	}
	return q
}

func (r *MemoryRepository) listTopics(keep func(catalog.Topic) bool, includeProvider bool) []catalog.Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]catalog.Topic, 0)
	for _, t := range r.topics {
		if !keep(t) {
			continue
		}
		if includeProvider {
			t = r.withProvider(t)
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out
}

func (r *MemoryRepository) providerSlugTaken(slug, except string) bool {
	for id, p := range r.providers {
		if id != except && p.ProviderSlug == slug {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) topicSlugTaken(slug, except string) bool {
	for id, t := range r.topics {
		if id != except && t.TopicSlug == slug {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) questionSlugTaken(slug, except string) bool {
	for id, q := range r.questions {
		if id != except && q.QnSlug == slug {
			return true
		}
	}
	return false
}

var _ catalog.Repository = (*MemoryRepository)(nil)
