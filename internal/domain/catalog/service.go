package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yanqian/quiz-catalog/internal/infra/cache"
	apperrors "github.com/yanqian/quiz-catalog/pkg/errors"
	"github.com/yanqian/quiz-catalog/pkg/slug"
)

// Service exposes the catalog operations to the transport layer. Failures are
// *apperrors.AppError values.
type Service interface {
	CreateProvider(ctx context.Context, in CreateProviderInput) (Provider, error)
	ListProviders(ctx context.Context) ([]Provider, error)
	GetProvider(ctx context.Context, id string) (Provider, error)
	GetProviderBySlug(ctx context.Context, slug string) (Provider, error)
	UpdateProvider(ctx context.Context, id string, in UpdateProviderInput) (Provider, error)
	DeleteProvider(ctx context.Context, id string) error

	CreateTopic(ctx context.Context, in CreateTopicInput) (Topic, error)
	ListTopics(ctx context.Context) ([]Topic, error)
	GetTopic(ctx context.Context, id string) (Topic, error)
	GetTopicBySlug(ctx context.Context, slug string) (Topic, error)
	ListTopicsByProvider(ctx context.Context, providerID string) ([]Topic, error)
	ListTopicsByProviderSlug(ctx context.Context, providerSlug string) ([]Topic, error)
	UpdateTopic(ctx context.Context, id string, in UpdateTopicInput) (Topic, error)
	DeleteTopic(ctx context.Context, id string) error

	CreateQuestion(ctx context.Context, in CreateQuestionInput) (Question, error)
	GetQuestion(ctx context.Context, id string) (Question, error)
	GetQuestionBySlug(ctx context.Context, slug string) (Question, error)
	ListQuestions(ctx context.Context, query QuestionQuery) (QuestionPage, error)
	BookmarkedQuestions(ctx context.Context, topicSlug string, index int, seqNos []int, limit int) (QuestionPage, error)
	UpdateQuestion(ctx context.Context, id string, in UpdateQuestionInput) (Question, error)
	DeleteQuestion(ctx context.Context, id string) error

	// PageLimit resolves the page size used for a requested limit.
	PageLimit(requested int) int
}

type service struct {
	cfg       Config
	providers *ProviderStore
	topics    *TopicStore
	questions *QuestionStore
	sequencer *Sequencer
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewService wires up the catalog domain.
func NewService(cfg Config, providers *ProviderStore, topics *TopicStore, questions *QuestionStore, sequencer *Sequencer, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg.withDefaults(),
		providers: providers,
		topics:    topics,
		questions: questions,
		sequencer: sequencer,
		validate:  newValidator(),
		logger:    logger.With("component", "catalog.service"),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *service) PageLimit(requested int) int {
	return s.cfg.PageLimit(requested)
}

// Providers.

func (s *service) CreateProvider(ctx context.Context, in CreateProviderInput) (Provider, error) {
	if err := s.check(in); err != nil {
		return Provider{}, err
	}
	name := strings.TrimSpace(in.Provider)
	providerSlug := slug.Make(name)
	if providerSlug == "" {
		return Provider{}, apperrors.Wrap(apperrors.CodeInvalidInput, "provider name must contain letters or digits", nil)
	}
	created, err := s.providers.Create(ctx, Provider{Provider: name, ProviderSlug: providerSlug})
	if err != nil {
		return Provider{}, s.storeError("provider", err)
	}
	s.logger.Info("provider created", "provider_id", created.ID, "slug", created.ProviderSlug)
	return created, nil
}

func (s *service) ListProviders(ctx context.Context) ([]Provider, error) {
	providers, err := s.providers.List(ctx)
	if err != nil {
		return nil, s.storeError("provider", err)
	}
	return providers, nil
}

func (s *service) GetProvider(ctx context.Context, id string) (Provider, error) {
	return s.foundProvider(s.providers.GetByID(ctx, id))
}

func (s *service) GetProviderBySlug(ctx context.Context, providerSlug string) (Provider, error) {
	return s.foundProvider(s.providers.GetBySlug(ctx, providerSlug))
}

func (s *service) UpdateProvider(ctx context.Context, id string, in UpdateProviderInput) (Provider, error) {
	if err := s.check(in); err != nil {
		return Provider{}, err
	}
	var patch ProviderPatch
	if in.Provider != nil {
		name := strings.TrimSpace(*in.Provider)
		providerSlug := slug.Make(name)
		if providerSlug == "" {
			return Provider{}, apperrors.Wrap(apperrors.CodeInvalidInput, "provider name must contain letters or digits", nil)
		}
		patch.Provider = &name
		patch.ProviderSlug = &providerSlug
	}
	updated, err := s.providers.Update(ctx, id, patch)
	if err != nil {
		return Provider{}, s.storeError("provider", err)
	}
	return updated, nil
}

func (s *service) DeleteProvider(ctx context.Context, id string) error {
	if err := s.providers.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrInvalidReference) {
			return apperrors.Wrap(apperrors.CodeConflict, "provider still owns topics", err)
		}
		return s.storeError("provider", err)
	}
	s.logger.Info("provider deleted", "provider_id", id)
	return nil
}

func (s *service) foundProvider(p Provider, found bool, err error) (Provider, error) {
	if err != nil {
		return Provider{}, s.storeError("provider", err)
	}
	if !found {
		return Provider{}, apperrors.Wrap(apperrors.CodeNotFound, "Provider not found", nil)
	}
	return p, nil
}

// Topics.

func (s *service) CreateTopic(ctx context.Context, in CreateTopicInput) (Topic, error) {
	if err := s.check(in); err != nil {
		return Topic{}, err
	}
	provider, err := s.GetProviderBySlug(ctx, slug.Make(in.Provider))
	if err != nil {
		return Topic{}, err
	}
	name := strings.TrimSpace(in.Topic)
	topicSlug := slug.Make(name)
	if topicSlug == "" {
		return Topic{}, apperrors.Wrap(apperrors.CodeInvalidInput, "topic name must contain letters or digits", nil)
	}
	created, err := s.topics.Create(ctx, Topic{
		Topic:      name,
		TopicSlug:  topicSlug,
		ProviderID: provider.ID,
		Tags:       cache.NormalizeTags(in.Tags),
	})
	if err != nil {
		return Topic{}, s.storeError("topic", err)
	}
	if err := s.providers.IncrementTopicCount(ctx, provider.ID); err != nil {
		return Topic{}, s.storeError("provider", err)
	}
	s.logger.Info("topic created", "topic_id", created.ID, "provider_id", provider.ID)
	return created, nil
}

func (s *service) ListTopics(ctx context.Context) ([]Topic, error) {
	topics, err := s.topics.List(ctx)
	if err != nil {
		return nil, s.storeError("topic", err)
	}
	return topics, nil
}

func (s *service) GetTopic(ctx context.Context, id string) (Topic, error) {
	return s.foundTopic(s.topics.GetByID(ctx, id))
}

func (s *service) GetTopicBySlug(ctx context.Context, topicSlug string) (Topic, error) {
	return s.foundTopic(s.topics.GetBySlug(ctx, topicSlug))
}

func (s *service) ListTopicsByProvider(ctx context.Context, providerID string) ([]Topic, error) {
	topics, err := s.topics.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, s.storeError("topic", err)
	}
	return topics, nil
}

func (s *service) ListTopicsByProviderSlug(ctx context.Context, providerSlug string) ([]Topic, error) {
	provider, err := s.GetProviderBySlug(ctx, providerSlug)
	if err != nil {
		return nil, err
	}
	return s.ListTopicsByProvider(ctx, provider.ID)
}

func (s *service) UpdateTopic(ctx context.Context, id string, in UpdateTopicInput) (Topic, error) {
	if err := s.check(in); err != nil {
		return Topic{}, err
	}
	current, err := s.GetTopic(ctx, id)
	if err != nil {
		return Topic{}, err
	}
	var patch TopicPatch
	if in.Topic != nil {
		name := strings.TrimSpace(*in.Topic)
		topicSlug := slug.Make(name)
		if topicSlug == "" {
			return Topic{}, apperrors.Wrap(apperrors.CodeInvalidInput, "topic name must contain letters or digits", nil)
		}
		patch.Topic = &name
		patch.TopicSlug = &topicSlug
	}
	moved := in.ProviderID != nil && *in.ProviderID != current.ProviderID
	if moved {
		if _, err := s.GetProvider(ctx, *in.ProviderID); err != nil {
			return Topic{}, err
		}
		patch.ProviderID = in.ProviderID
	}
	if in.Tags != nil {
		tags := cache.NormalizeTags(*in.Tags)
		patch.Tags = &tags
	}
	updated, err := s.topics.Update(ctx, id, patch)
	if err != nil {
		return Topic{}, s.storeError("topic", err)
	}
	if moved {
		if err := s.providers.DecrementTopicCount(ctx, current.ProviderID); err != nil {
			return Topic{}, s.storeError("provider", err)
		}
		if err := s.providers.IncrementTopicCount(ctx, *in.ProviderID); err != nil {
			return Topic{}, s.storeError("provider", err)
		}
	}
	return updated, nil
}

func (s *service) DeleteTopic(ctx context.Context, id string) error {
	current, err := s.GetTopic(ctx, id)
	if err != nil {
		return err
	}
	if err := s.topics.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrInvalidReference) {
			return apperrors.Wrap(apperrors.CodeConflict, "topic still owns questions", err)
		}
		return s.storeError("topic", err)
	}
	if err := s.providers.DecrementTopicCount(ctx, current.ProviderID); err != nil {
		return s.storeError("provider", err)
	}
	s.logger.Info("topic deleted", "topic_id", id, "provider_id", current.ProviderID)
	return nil
}

func (s *service) foundTopic(t Topic, found bool, err error) (Topic, error) {
	if err != nil {
		return Topic{}, s.storeError("topic", err)
	}
	if !found {
		return Topic{}, apperrors.Wrap(apperrors.CodeNotFound, "Topic not found", nil)
	}
	return t, nil
}

// Questions.

func (s *service) CreateQuestion(ctx context.Context, in CreateQuestionInput) (Question, error) {
	if err := s.check(in); err != nil {
		return Question{}, err
	}
	topic, err := s.GetTopicBySlug(ctx, slug.Make(in.Topic))
	if err != nil {
		return Question{}, err
	}
	text := strings.TrimSpace(in.Question)
	questionSlug := slug.Question(text)
	if err := s.ensureSlugFree(ctx, questionSlug, ""); err != nil {
		return Question{}, err
	}
	seqNo, err := s.sequencer.Assign(ctx, topic.ID, in.SeqNo)
	if err != nil {
		return Question{}, s.storeError("question", err)
	}
	status := in.Status
	if status == "" {
		status = StatusPublished
	}
	created, err := s.questions.Create(ctx, Question{
		TopicID:     topic.ID,
		SeqNo:       seqNo,
		QnSlug:      questionSlug,
		Question:    text,
		Answer:      *in.Answer,
		Options:     in.Options,
		Explanation: in.Explanation,
		ImageURL:    in.ImageURL,
		Difficulty:  in.Difficulty,
		Tags:        cache.NormalizeTags(in.Tags),
		Status:      status,
		IsPremium:   in.IsPremium,
	})
	if err != nil {
		return Question{}, s.storeError("question", err)
	}
	if err := s.topics.IncrementQuestionCount(ctx, topic.ID); err != nil {
		return Question{}, s.storeError("topic", err)
	}
	s.logger.Info("question created", "question_id", created.ID, "topic_id", topic.ID, "seq_no", seqNo)
	return created, nil
}

func (s *service) GetQuestion(ctx context.Context, id string) (Question, error) {
	return s.foundQuestion(s.questions.GetByID(ctx, id))
}

func (s *service) GetQuestionBySlug(ctx context.Context, questionSlug string) (Question, error) {
	return s.foundQuestion(s.questions.GetBySlug(ctx, questionSlug))
}

func (s *service) ListQuestions(ctx context.Context, query QuestionQuery) (QuestionPage, error) {
	if strings.TrimSpace(query.TopicSlug) == "" {
		return QuestionPage{}, apperrors.Wrap(apperrors.CodeInvalidInput, "topic_slug is required", nil)
	}
	if query.Index < 1 {
		return QuestionPage{}, apperrors.Wrap(apperrors.CodeInvalidInput, "index is required and must be a valid number", nil)
	}
	limit := s.cfg.PageLimit(query.Limit)
	var (
		page QuestionPage
		err  error
	)
	if tags := cache.NormalizeTags(query.Tags); len(tags) > 0 {
		page, err = s.questions.GetQuestionsByTags(ctx, query.TopicSlug, query.Index, tags, limit)
	} else {
		page, err = s.questions.GetQuestionsByIndex(ctx, query.TopicSlug, query.Index, limit)
	}
	if err != nil {
		return QuestionPage{}, s.storeError("topic", err)
	}
	return page, nil
}

func (s *service) BookmarkedQuestions(ctx context.Context, topicSlug string, index int, seqNos []int, limit int) (QuestionPage, error) {
	if index < 1 {
		return QuestionPage{}, apperrors.Wrap(apperrors.CodeInvalidInput, "index must be a valid number", nil)
	}
	page, err := s.questions.GetBookmarkedQuestions(ctx, topicSlug, index, seqNos, s.cfg.PageLimit(limit))
	if err != nil {
		return QuestionPage{}, s.storeError("topic", err)
	}
	return page, nil
}

func (s *service) UpdateQuestion(ctx context.Context, id string, in UpdateQuestionInput) (Question, error) {
	if err := s.check(in); err != nil {
		return Question{}, err
	}
	current, found, err := s.questions.Lookup(ctx, id)
	if err != nil {
		return Question{}, s.storeError("question", err)
	}
	if !found {
		return Question{}, apperrors.Wrap(apperrors.CodeNotFound, "Question not found", nil)
	}

	patch := QuestionPatch{
		SeqNo:       in.SeqNo,
		Answer:      in.Answer,
		Options:     in.Options,
		Explanation: in.Explanation,
		ImageURL:    in.ImageURL,
		Difficulty:  in.Difficulty,
		Status:      in.Status,
		IsPremium:   in.IsPremium,
	}
	if in.Tags != nil {
		tags := cache.NormalizeTags(*in.Tags)
		patch.Tags = &tags
	}
	if in.Question != nil {
		text := strings.TrimSpace(*in.Question)
		questionSlug := slug.Question(text)
		if err := s.ensureSlugFree(ctx, questionSlug, id); err != nil {
			return Question{}, err
		}
		patch.Question = &text
		patch.QnSlug = &questionSlug
	}
	var movedTo string
	if in.Topic != nil {
		topic, err := s.GetTopicBySlug(ctx, slug.Make(*in.Topic))
		if err != nil {
			return Question{}, err
		}
		if topic.ID != current.TopicID {
			movedTo = topic.ID
			patch.TopicID = &movedTo
		}
	}

	// A new position or a topic move goes through the sequencer so the target
	// slot is freed the same way an insert frees it. A move without seq_no
	// keeps the current number.
	targetTopic, targetSeq := current.TopicID, current.SeqNo
	if movedTo != "" {
		targetTopic = movedTo
	}
	if in.SeqNo != nil {
		targetSeq = *in.SeqNo
	}
	if targetTopic != current.TopicID || targetSeq != current.SeqNo {
		assigned, err := s.sequencer.Assign(ctx, targetTopic, &targetSeq)
		if err != nil {
			return Question{}, s.storeError("question", err)
		}
		patch.SeqNo = &assigned
	}

	updated, err := s.questions.Update(ctx, id, patch)
	if err != nil {
		return Question{}, s.storeError("question", err)
	}
	if movedTo != "" {
		if err := s.topics.DecrementQuestionCount(ctx, current.TopicID); err != nil {
			return Question{}, s.storeError("topic", err)
		}
		if err := s.topics.IncrementQuestionCount(ctx, movedTo); err != nil {
			return Question{}, s.storeError("topic", err)
		}
	}
	return updated, nil
}

func (s *service) DeleteQuestion(ctx context.Context, id string) error {
	current, found, err := s.questions.Lookup(ctx, id)
	if err != nil {
		return s.storeError("question", err)
	}
	if !found {
		return apperrors.Wrap(apperrors.CodeNotFound, "Question not found", nil)
	}
	if err := s.questions.Delete(ctx, id); err != nil {
		return s.storeError("question", err)
	}
	if err := s.topics.DecrementQuestionCount(ctx, current.TopicID); err != nil {
		return s.storeError("topic", err)
	}
	s.logger.Info("question deleted", "question_id", id, "topic_id", current.TopicID)
	return nil
}

// ensureSlugFree rejects a qn_slug held by another question of any status.
// Call it before the sequencer runs.
func (s *service) ensureSlugFree(ctx context.Context, questionSlug, exceptID string) error {
	existing, found, err := s.questions.LookupBySlug(ctx, questionSlug)
	if err != nil {
		return s.storeError("question", err)
	}
	if found && existing.ID != exceptID {
		return s.storeError("question", ErrConflict)
	}
	return nil
}

func (s *service) foundQuestion(q Question, found bool, err error) (Question, error) {
	if err != nil {
		return Question{}, s.storeError("question", err)
	}
	if !found {
		return Question{}, apperrors.Wrap(apperrors.CodeNotFound, "Question not found", nil)
	}
	return q, nil
}

// check runs struct validation and reports the first failing field.
func (s *service) check(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		msg := fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
		if fe.Tag() == "required" {
			msg = fe.Field() + " is required"
		}
		return apperrors.Wrap(apperrors.CodeInvalidInput, msg, err)
	}
	return apperrors.Wrap(apperrors.CodeInvalidInput, "invalid payload", err)
}

// storeError maps repository errors onto the transport facing taxonomy.
func (s *service) storeError(entity string, err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return apperrors.Wrap(apperrors.CodeNotFound, capitalize(entity)+" not found", err)
	case errors.Is(err, ErrConflict):
		return apperrors.Wrap(apperrors.CodeConflict, entity+" already exists", err)
	case errors.Is(err, ErrInvalidReference):
		return apperrors.Wrap(apperrors.CodeInvalidInput, entity+" references a missing record", err)
	case errors.Is(err, ErrInvalidPosition):
		return apperrors.Wrap(apperrors.CodeInvalidInput, "seq_no must be a positive integer", err)
	}
	s.logger.Error("catalog store failure", "entity", entity, "error", err)
	return apperrors.Wrap(apperrors.CodeInternal, entity+" store failure", err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
