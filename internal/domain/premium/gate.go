package premium

import (
	"context"
	"log/slog"

	"github.com/yanqian/quiz-catalog/internal/domain/catalog"
	apperrors "github.com/yanqian/quiz-catalog/pkg/errors"
)

// SubscriptionChecker asks the subscription service whether a user holds
// premium access to a topic.
type SubscriptionChecker interface {
	IsPremium(ctx context.Context, userID, topicID string) (bool, error)
}

// Gate hides premium questions from callers without an entitlement.
type Gate struct {
	checker SubscriptionChecker
	logger  *slog.Logger
}

// NewGate constructs the premium gate.
func NewGate(checker SubscriptionChecker, logger *slog.Logger) *Gate {
	return &Gate{checker: checker, logger: logger.With("component", "premium.gate")}
}

// Filter drops premium questions unless userID is entitled. All questions
// are assumed to share the first question's topic, so at most one
// subscription call is made. When single is set, an empty result is a
// premium_required error rather than an empty list. An empty userID means
// an anonymous caller.
func (g *Gate) Filter(ctx context.Context, questions []catalog.Question, userID string, single bool) ([]catalog.Question, error) {
	if !hasPremium(questions) {
		return questions, nil
	}
	if userID != "" && g.entitled(ctx, userID, questions[0].TopicID) {
		return questions, nil
	}
	free := make([]catalog.Question, 0, len(questions))
	for _, q := range questions {
		if !q.IsPremium {
			free = append(free, q)
		}
	}
	if single && len(free) == 0 {
		return nil, apperrors.Wrap(apperrors.CodePremiumRequired, "Subscription required to access this content", nil)
	}
	return free, nil
}

// entitled treats any subscription failure as non-premium.
func (g *Gate) entitled(ctx context.Context, userID, topicID string) bool {
	premium, err := g.checker.IsPremium(ctx, userID, topicID)
	if err != nil {
		g.logger.Warn("subscription check failed, treating as non-premium", "user_id", userID, "topic_id", topicID, "error", err)
		return false
	}
	return premium
}

func hasPremium(questions []catalog.Question) bool {
	for _, q := range questions {
		if q.IsPremium {
			return true
		}
	}
	return false
}
