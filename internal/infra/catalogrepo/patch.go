package catalogrepo

import (
	"slices"
	"time"

	"github.com/yanqian/quiz-catalog/internal/domain/catalog"
)

func applyQuestionPatch(q *catalog.Question, patch catalog.QuestionPatch) {
	if patch.SeqNo != nil {
		q.SeqNo = *patch.SeqNo
	}
	if patch.QnSlug != nil {
		q.QnSlug = *patch.QnSlug
	}
	if patch.Question != nil {
		q.Question = *patch.Question
	}
	if patch.Answer != nil {
		q.Answer = *patch.Answer
	}
	if patch.Options != nil {
		q.Options = slices.Clone(*patch.Options)
	}
	if patch.Explanation != nil {
		q.Explanation = *patch.Explanation
	}
	if patch.ImageURL != nil {
		q.ImageURL = *patch.ImageURL
	}
	if patch.Difficulty != nil {
		q.Difficulty = *patch.Difficulty
	}
	if patch.Tags != nil {
		q.Tags = cloneStrings(*patch.Tags)
	}
	if patch.Status != nil {
		q.Status = *patch.Status
	}
	if patch.IsPremium != nil {
		q.IsPremium = *patch.IsPremium
	}
}

func sharesTag(have, want []string) bool {
	for _, tag := range want {
		if slices.Contains(have, tag) {
			return true
		}
	}
	return false
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}

// newerFirst orders by creation time descending, breaking ties by id.
func newerFirst(a, b time.Time, aID, bID string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aID < bID
}
