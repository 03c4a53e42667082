package premium

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/quiz-catalog/internal/domain/catalog"
	apperrors "github.com/yanqian/quiz-catalog/pkg/errors"
)

type stubChecker struct {
	premium bool
	err     error
	calls   []string
}

func (s *stubChecker) IsPremium(_ context.Context, userID, topicID string) (bool, error) {
	s.calls = append(s.calls, userID+"/"+topicID)
	return s.premium, s.err
}

func newTestGate(checker SubscriptionChecker) *Gate {
	return NewGate(checker, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var (
	freeQ    = catalog.Question{ID: "free", TopicID: "t1"}
	premiumQ = catalog.Question{ID: "paid", TopicID: "t1", IsPremium: true}
)

func TestFilter_NoPremiumSkipsSubscriptionCall(t *testing.T) {
	checker := &stubChecker{}
	out, err := newTestGate(checker).Filter(context.Background(), []catalog.Question{freeQ}, "u1", true)
	require.NoError(t, err)
	require.Equal(t, []catalog.Question{freeQ}, out)
	require.Empty(t, checker.calls)
}

func TestFilter_AnonymousDropsPremium(t *testing.T) {
	checker := &stubChecker{premium: true}
	gate := newTestGate(checker)

	out, err := gate.Filter(context.Background(), []catalog.Question{premiumQ, freeQ}, "", false)
	require.NoError(t, err)
	require.Equal(t, []catalog.Question{freeQ}, out)

	_, err = gate.Filter(context.Background(), []catalog.Question{premiumQ}, "", true)
	require.True(t, apperrors.IsCode(err, apperrors.CodePremiumRequired))
	require.Empty(t, checker.calls)
}

func TestFilter_AuthenticatedUsesOneCall(t *testing.T) {
	checker := &stubChecker{premium: true}
	out, err := newTestGate(checker).Filter(context.Background(), []catalog.Question{premiumQ, freeQ}, "u1", false)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, []string{"u1/t1"}, checker.calls)

	checker = &stubChecker{premium: false}
	out, err = newTestGate(checker).Filter(context.Background(), []catalog.Question{premiumQ, freeQ}, "u1", false)
	require.NoError(t, err)
	require.Equal(t, []catalog.Question{freeQ}, out)
}

func TestFilter_SubscriptionErrorMeansNotPremium(t *testing.T) {
	checker := &stubChecker{premium: true, err: errors.New("timeout")}
	gate := newTestGate(checker)

	_, err := gate.Filter(context.Background(), []catalog.Question{premiumQ}, "u1", true)
	require.True(t, apperrors.IsCode(err, apperrors.CodePremiumRequired))

	out, err := gate.Filter(context.Background(), []catalog.Question{premiumQ}, "u1", false)
	require.NoError(t, err)
	require.Empty(t, out)
}
