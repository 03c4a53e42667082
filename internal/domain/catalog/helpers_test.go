package catalog_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/quiz-catalog/internal/domain/catalog"
	"github.com/yanqian/quiz-catalog/internal/infra/cache"
	"github.com/yanqian/quiz-catalog/internal/infra/catalogrepo"
	"github.com/yanqian/quiz-catalog/internal/infra/kvstore"
)

type harness struct {
	svc       catalog.Service
	repo      *catalogrepo.MemoryRepository
	kv        *kvstore.MemoryStore
	aside     *cache.Aside
	questions *catalog.QuestionStore
	topics    *catalog.TopicStore
	sequencer *catalog.Sequencer
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := newTestLogger()
	repo := catalogrepo.NewMemoryRepository()
	kv := kvstore.NewMemoryStore()
	aside := cache.NewAside(kv, cache.JSONCodec{}, cache.Config{}, nil, logger)
	providers := catalog.NewProviderStore(repo, aside, logger)
	topics := catalog.NewTopicStore(repo, aside, logger)
	questions := catalog.NewQuestionStore(repo, topics, aside, logger)
	sequencer := catalog.NewSequencer(repo, aside, logger)
	svc := catalog.NewService(catalog.Config{DefaultPageSize: 1, MaxPageSize: 10}, providers, topics, questions, sequencer, logger)
	return &harness{svc: svc, repo: repo, kv: kv, aside: aside, questions: questions, topics: topics, sequencer: sequencer}
}

// seedAlgebra creates provider "Khan Academy", topic "Algebra" and n
// published questions at seq_no 1..n.
func (h *harness) seedAlgebra(t *testing.T, n int) []catalog.Question {
	t.Helper()
	ctx := context.Background()
	_, err := h.svc.CreateProvider(ctx, catalog.CreateProviderInput{Provider: "Khan Academy"})
	require.NoError(t, err)
	_, err = h.svc.CreateTopic(ctx, catalog.CreateTopicInput{Topic: "Algebra", Provider: "Khan Academy"})
	require.NoError(t, err)
	out := make([]catalog.Question, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, h.addQuestion(t, fmt.Sprintf("Algebra question number %d", i), nil))
	}
	return out
}

func (h *harness) addQuestion(t *testing.T, text string, seqNo *int) catalog.Question {
	t.Helper()
	answer := 1
	q, err := h.svc.CreateQuestion(context.Background(), catalog.CreateQuestionInput{
		SeqNo:      seqNo,
		Topic:      "Algebra",
		Question:   text,
		Answer:     &answer,
		Options:    []catalog.Option{{OptionNo: 1, OptionText: "yes"}, {OptionNo: 2, OptionText: "no"}},
		Difficulty: catalog.DifficultyEasy,
	})
	require.NoError(t, err)
	return q
}

func intPtr(v int) *int { return &v }

func seqNos(qs []catalog.Question) []int {
	out := make([]int, len(qs))
	for i, q := range qs {
		out[i] = q.SeqNo
	}
	return out
}
