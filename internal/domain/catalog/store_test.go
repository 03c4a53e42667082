package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/quiz-catalog/internal/domain/catalog"
	"github.com/yanqian/quiz-catalog/internal/infra/cache"
	apperrors "github.com/yanqian/quiz-catalog/pkg/errors"
)

func TestPaginationConsistency(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedAlgebra(t, 5)

	first, err := h.svc.ListQuestions(ctx, catalog.QuestionQuery{TopicSlug: "algebra", Index: 1, Limit: 2})
	require.NoError(t, err)
	second, err := h.svc.ListQuestions(ctx, catalog.QuestionQuery{TopicSlug: "algebra", Index: 3, Limit: 2})
	require.NoError(t, err)
	whole, err := h.svc.ListQuestions(ctx, catalog.QuestionQuery{TopicSlug: "algebra", Index: 1, Limit: 4})
	require.NoError(t, err)

	joined := append(append([]catalog.Question{}, first.Questions...), second.Questions...)
	require.Equal(t, seqNos(whole.Questions), seqNos(joined))
	require.Equal(t, []int{1, 2, 3, 4}, seqNos(joined))
	require.Equal(t, 5, first.TotalCount)
	require.Equal(t, first.TotalCount, whole.TotalCount)
}

func TestTagsPage_CountsSamePredicate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedAlgebra(t, 0)
	answer := 1
	for i, tags := range [][]string{{"linear"}, {"quadratic"}, {"Linear", "basics"}} {
		_, err := h.svc.CreateQuestion(ctx, catalog.CreateQuestionInput{
			Topic: "Algebra", Question: []string{"one", "two", "three"}[i], Answer: &answer,
			Options:    []catalog.Option{{OptionNo: 1, OptionText: "a"}},
			Difficulty: catalog.DifficultyMedium, Tags: tags,
		})
		require.NoError(t, err)
	}

	page, err := h.svc.ListQuestions(ctx, catalog.QuestionQuery{TopicSlug: "algebra", Index: 1, Limit: 1, Tags: []string{"basics", "LINEAR"}})
	require.NoError(t, err)
	require.Equal(t, 2, page.TotalCount)
	require.Equal(t, []int{1}, seqNos(page.Questions))

	// the reordered tag set hits the same cache entry
	_, hit, err := h.kv.Get(ctx, cache.QuestionTagsPageKey("algebra", []string{"linear", "basics"}, 1, 1))
	require.NoError(t, err)
	require.True(t, hit)
}

func TestUnknownTopicPageIsNotFound(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.ListQuestions(context.Background(), catalog.QuestionQuery{TopicSlug: "nope", Index: 1})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = h.svc.ListQuestions(context.Background(), catalog.QuestionQuery{TopicSlug: "nope", Index: 0})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestUnpublishedQuestionInvisibleRegardlessOfCache(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	seeded := h.seedAlgebra(t, 1)
	q := seeded[0]

	// cache the published copy, then unpublish behind the cache's back
	_, err := h.svc.GetQuestionBySlug(ctx, q.QnSlug)
	require.NoError(t, err)
	draft := catalog.StatusDraft
	_, err = h.repo.UpdateQuestion(ctx, q.ID, catalog.QuestionPatch{Status: &draft})
	require.NoError(t, err)
	stale := q
	stale.Status = catalog.StatusDraft
	h.aside.Write(ctx, cache.QuestionBySlugKey(q.QnSlug), stale, h.aside.CatalogTTL())

	_, err = h.svc.GetQuestionBySlug(ctx, q.QnSlug)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	_, err = h.svc.GetQuestion(ctx, q.ID)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	// write paths still reach drafts
	require.NoError(t, h.svc.DeleteQuestion(ctx, q.ID))
	topic, err := h.svc.GetTopicBySlug(ctx, "algebra")
	require.NoError(t, err)
	require.Zero(t, topic.QnCount)
}

func TestCacheCoherence_WriteThenRead(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedAlgebra(t, 1)

	providers, err := h.svc.ListProviders(ctx)
	require.NoError(t, err)
	require.Len(t, providers, 1)
	provider := providers[0]
	require.Equal(t, 1, provider.TopicCount)

	bySlug, err := h.svc.GetProviderBySlug(ctx, "khan-academy")
	require.NoError(t, err)
	require.Len(t, bySlug.Topics, 1)
	topics, err := h.svc.ListTopics(ctx)
	require.NoError(t, err)
	require.Equal(t, "Khan Academy", topics[0].Provider.Provider)

	renamed := "Khan Labs"
	_, err = h.svc.UpdateProvider(ctx, provider.ID, catalog.UpdateProviderInput{Provider: &renamed})
	require.NoError(t, err)

	got, err := h.svc.GetProvider(ctx, provider.ID)
	require.NoError(t, err)
	require.Equal(t, "khan-labs", got.ProviderSlug)
	_, err = h.svc.GetProviderBySlug(ctx, "khan-academy")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	topics, err = h.svc.ListTopics(ctx)
	require.NoError(t, err)
	require.Equal(t, "Khan Labs", topics[0].Provider.Provider)

	// question edits replace cached pages
	page, err := h.svc.ListQuestions(ctx, catalog.QuestionQuery{TopicSlug: "algebra", Index: 1})
	require.NoError(t, err)
	text := "What is the value of x?"
	_, err = h.svc.UpdateQuestion(ctx, page.Questions[0].ID, catalog.UpdateQuestionInput{Question: &text})
	require.NoError(t, err)
	page, err = h.svc.ListQuestions(ctx, catalog.QuestionQuery{TopicSlug: "algebra", Index: 1})
	require.NoError(t, err)
	require.Equal(t, text, page.Questions[0].Question)

	// topic rename reaches embedded question snapshots
	topicName := "Linear Algebra"
	_, err = h.svc.UpdateTopic(ctx, topics[0].ID, catalog.UpdateTopicInput{Topic: &topicName})
	require.NoError(t, err)
	q, err := h.svc.GetQuestion(ctx, page.Questions[0].ID)
	require.NoError(t, err)
	require.Equal(t, "linear-algebra", q.Topic.TopicSlug)
}

func TestCounters_MoveQuestionBetweenTopics(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	seeded := h.seedAlgebra(t, 2)
	_, err := h.svc.CreateTopic(ctx, catalog.CreateTopicInput{Topic: "Geometry", Provider: "Khan Academy"})
	require.NoError(t, err)

	geometry := "Geometry"
	moved, err := h.svc.UpdateQuestion(ctx, seeded[0].ID, catalog.UpdateQuestionInput{Topic: &geometry})
	require.NoError(t, err)
	require.Equal(t, "geometry", moved.Topic.TopicSlug)

	algebra, err := h.svc.GetTopicBySlug(ctx, "algebra")
	require.NoError(t, err)
	require.Equal(t, 1, algebra.QnCount)
	geo, err := h.svc.GetTopicBySlug(ctx, "geometry")
	require.NoError(t, err)
	require.Equal(t, 1, geo.QnCount)

	provider, err := h.svc.GetProviderBySlug(ctx, "khan-academy")
	require.NoError(t, err)
	require.Equal(t, 2, provider.TopicCount)
}

func TestServiceValidationAndConflicts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.CreateProvider(ctx, catalog.CreateProviderInput{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	h.seedAlgebra(t, 1)
	_, err = h.svc.CreateProvider(ctx, catalog.CreateProviderInput{Provider: "khan   academy"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	_, err = h.svc.CreateTopic(ctx, catalog.CreateTopicInput{Topic: "Calculus", Provider: "Unknown"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = h.svc.CreateQuestion(ctx, catalog.CreateQuestionInput{Topic: "Algebra", Question: "missing answer"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	topic, err := h.svc.GetTopicBySlug(ctx, "algebra")
	require.NoError(t, err)
	err = h.svc.DeleteTopic(ctx, topic.ID)
	require.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	err = h.svc.DeleteProvider(ctx, topic.ProviderID)
	require.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	require.Equal(t, 1, h.svc.PageLimit(0))
	require.Equal(t, 10, h.svc.PageLimit(500))
}

func TestBookmarkedQuestionsPage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedAlgebra(t, 4)

	page, err := h.svc.BookmarkedQuestions(ctx, "algebra", 2, []int{4, 2, 9}, 1)
	require.NoError(t, err)
	require.Equal(t, 3, page.TotalCount)
	require.Equal(t, []int{4}, seqNos(page.Questions))

	empty, err := h.svc.BookmarkedQuestions(ctx, "algebra", 1, nil, 1)
	require.NoError(t, err)
	require.Empty(t, empty.Questions)
}
