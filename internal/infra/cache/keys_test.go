package cache

import (
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeysAreDeterministic(t *testing.T) {
	require.Equal(t, "providers:all", ProvidersAllKey())
	require.Equal(t, "providers:id:p1", ProviderByIDKey("p1"))
	require.Equal(t, "topics:slug:algebra", TopicBySlugKey("algebra"))
	require.Equal(t, "topics:provider:p1", TopicsByProviderKey("p1"))
	require.Equal(t, "questions:topic:algebra:index:3:limit:2", QuestionPageKey("algebra", 3, 2))
	require.Equal(t, "profile:u1", ProfileKey("u1"))
	require.Equal(t, QuestionPageKey("algebra", 1, 1), QuestionPageKey("algebra", 1, 1))
	require.NotEqual(t, QuestionPageKey("algebra", 1, 2), QuestionPageKey("algebra", 2, 1))
}

func TestQuestionTagsPageKeyIgnoresTagOrder(t *testing.T) {
	a := QuestionTagsPageKey("algebra", []string{"matrix", "Vectors", "matrix"}, 1, 1)
	b := QuestionTagsPageKey("algebra", []string{" vectors", "matrix"}, 1, 1)

	require.Equal(t, a, b)
	require.Equal(t, "questions:topic:algebra:tags:matrix,vectors:index:1:limit:1", a)
}

func TestPatternsCoverTheirFamilies(t *testing.T) {
	cases := []struct {
		pattern string
		key     string
		match   bool
	}{
		{QuestionsPattern, QuestionPageKey("algebra", 1, 1), true},
		{QuestionsPattern, QuestionTagsPageKey("algebra", []string{"a"}, 1, 1), true},
		{QuestionsPattern, TopicBySlugKey("algebra"), false},
		{ProvidersPattern, ProviderBySlugKey("acme"), true},
		{TopicByIDPattern("t1"), TopicByIDKey("t1"), true},
		{TopicsByProviderPattern("p1"), TopicsByProviderKey("p1"), true},
		{QuestionsByTopicPattern("algebra"), QuestionPageKey("algebra", 4, 1), true},
		{QuestionsByTopicPattern("algebra"), QuestionPageKey("geometry", 4, 1), false},
		{ProfilePattern, ProfileKey("u1"), true},
	}

	for _, tc := range cases {
		ok, err := path.Match(tc.pattern, tc.key)
		require.NoError(t, err)
		require.Equal(t, tc.match, ok, "%s vs %s", tc.pattern, tc.key)
	}
}
