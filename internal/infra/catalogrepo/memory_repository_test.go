package catalogrepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/quiz-catalog/internal/domain/catalog"
)

func seedTopic(t *testing.T, repo *MemoryRepository) catalog.Topic {
	t.Helper()
	ctx := context.Background()
	provider, err := repo.CreateProvider(ctx, catalog.Provider{Provider: "Khan", ProviderSlug: "khan"})
	require.NoError(t, err)
	topic, err := repo.CreateTopic(ctx, catalog.Topic{Topic: "Algebra", TopicSlug: "algebra", ProviderID: provider.ID})
	require.NoError(t, err)
	return topic
}

func TestMemoryRepository_Constraints(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	topic := seedTopic(t, repo)

	_, err := repo.CreateProvider(ctx, catalog.Provider{Provider: "Khan", ProviderSlug: "khan"})
	require.ErrorIs(t, err, catalog.ErrConflict)

	_, err = repo.CreateTopic(ctx, catalog.Topic{Topic: "X", TopicSlug: "x", ProviderID: "missing"})
	require.ErrorIs(t, err, catalog.ErrInvalidReference)

	require.ErrorIs(t, repo.DeleteProvider(ctx, topic.ProviderID), catalog.ErrInvalidReference)
	require.ErrorIs(t, repo.AdjustQuestionCount(ctx, "missing", 1), catalog.ErrNotFound)

	_, err = repo.UpdateQuestion(ctx, "missing", catalog.QuestionPatch{})
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestMemoryRepository_FilteredQueries(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	topic := seedTopic(t, repo)

	add := func(seq int, slug string, status catalog.Status, tags ...string) {
		_, err := repo.CreateQuestion(ctx, catalog.Question{
			TopicID: topic.ID, SeqNo: seq, QnSlug: slug, Question: slug, Status: status, Tags: tags,
		})
		require.NoError(t, err)
	}
	add(3, "c", catalog.StatusPublished, "linear")
	add(1, "a", catalog.StatusPublished, "linear", "basics")
	add(2, "b", catalog.StatusPublished, "quadratic")
	add(4, "d", catalog.StatusDraft, "linear")

	last, err := repo.LastSeqNo(ctx, topic.ID)
	require.NoError(t, err)
	require.Equal(t, 3, last)

	occupied, err := repo.ExistsAtSeqNo(ctx, topic.ID, 4)
	require.NoError(t, err)
	require.False(t, occupied, "drafts do not occupy positions")

	page, err := repo.FindQuestions(ctx, catalog.QuestionFilter{TopicID: topic.ID, Skip: 1, Limit: 5})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, []int{2, 3}, []int{page[0].SeqNo, page[1].SeqNo})
	require.Equal(t, "algebra", page[0].Topic.TopicSlug)

	count, err := repo.CountQuestions(ctx, catalog.QuestionFilter{TopicID: topic.ID, Tags: []string{"linear"}})
	require.NoError(t, err)
	require.Equal(t, 2, count)

	bookmarked, err := repo.FindQuestions(ctx, catalog.QuestionFilter{TopicID: topic.ID, SeqNos: []int{3, 1}})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "c"}, []string{bookmarked[0].QnSlug, bookmarked[1].QnSlug})

	shifted, err := repo.ShiftSeqNos(ctx, topic.ID, 2)
	require.NoError(t, err)
	require.EqualValues(t, 3, shifted, "shift covers drafts too")
}

func TestQuestionPredicate_SharedBetweenPageAndCount(t *testing.T) {
	where, args := questionPredicate(catalog.QuestionFilter{TopicID: "t1", Tags: []string{"a"}, SeqNos: []int{2}})
	require.Equal(t, `WHERE q.topic_id = $1 AND q.status = 'published' AND q.tags && $2::text[] AND q.seq_no = ANY($3::int[])`, where)
	require.Len(t, args, 3)
}
