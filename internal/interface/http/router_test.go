package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/quiz-catalog/internal/domain/auth"
	"github.com/yanqian/quiz-catalog/internal/domain/bookmark"
	"github.com/yanqian/quiz-catalog/internal/domain/catalog"
	"github.com/yanqian/quiz-catalog/internal/domain/premium"
	"github.com/yanqian/quiz-catalog/internal/infra/cache"
	"github.com/yanqian/quiz-catalog/internal/infra/catalogrepo"
	"github.com/yanqian/quiz-catalog/internal/infra/config"
	"github.com/yanqian/quiz-catalog/internal/infra/kvstore"
	"github.com/yanqian/quiz-catalog/internal/infra/profilerepo"
	apperrors "github.com/yanqian/quiz-catalog/pkg/errors"
)

const (
	adminToken = "Bearer admin"
	userToken  = "Bearer user"
)

func TestRouter_CatalogLifecycle(t *testing.T) {
	server := newRouterUnderTest(t, nil)

	rec := performRequest(server, http.MethodPost, "/api/v1/providers", `{"provider":"Khan Academy"}`, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	provider := decodeData[catalog.Provider](t, rec)
	require.Equal(t, "khan-academy", provider.ProviderSlug)

	rec = performRequest(server, http.MethodPost, "/api/v1/topics", `{"topic":"Algebra","provider":"Khan Academy"}`, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code)

	for _, text := range []string{"What is x if x plus one is two", "What is y if y times two is four"} {
		body := `{"topic":"Algebra","question":"` + text + `","answer":1,"difficulty":"easy","options":[{"option_no":1,"option_text":"a"}]}`
		rec = performRequest(server, http.MethodPost, "/api/v1/questions", body, adminToken)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec = performRequest(server, http.MethodGet, "/api/v1/questions?topic_slug=algebra&index=1&limit=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeData[struct {
		Questions  []catalog.Question `json:"questions"`
		TotalCount int                `json:"total_count"`
		Limit      int                `json:"limit"`
	}](t, rec)
	require.Equal(t, 2, page.TotalCount)
	require.Equal(t, 5, page.Limit)
	require.Equal(t, []int{1, 2}, []int{page.Questions[0].SeqNo, page.Questions[1].SeqNo})

	rec = performRequest(server, http.MethodGet, "/api/v1/providers/slug/khan-academy", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, decodeData[catalog.Provider](t, rec).TopicCount)

	rec = performRequest(server, http.MethodDelete, "/api/v1/providers/"+provider.ID, "", adminToken)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_WriteRequiresAdmin(t *testing.T) {
	server := newRouterUnderTest(t, nil)

	rec := performRequest(server, http.MethodPost, "/api/v1/providers", `{"provider":"Khan"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, apperrors.CodeUnauthorized, decodeError(t, rec).Error.Code)

	rec = performRequest(server, http.MethodPost, "/api/v1/providers", `{"provider":"Khan"}`, userToken)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, apperrors.CodeForbidden, decodeError(t, rec).Error.Code)
}

func TestRouter_QuestionsValidation(t *testing.T) {
	server := newRouterUnderTest(t, nil)

	rec := performRequest(server, http.MethodGet, "/api/v1/questions?index=1", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	require.Equal(t, "error", body.Status)
	require.Equal(t, apperrors.CodeInvalidInput, body.Error.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/questions?topic_slug=algebra&index=abc", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/questions?topic_slug=missing&index=1", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_PremiumGate(t *testing.T) {
	checker := &stubChecker{premium: map[string]bool{"u-paying": true}}
	server := newRouterUnderTest(t, checker)
	seedPremiumTopic(t, server)

	// Anonymous single-item page on a premium question.
	rec := performRequest(server, http.MethodGet, "/api/v1/questions?topic_slug=algebra&index=2&limit=1", "", "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, apperrors.CodePremiumRequired, decodeError(t, rec).Error.Code)
	require.Zero(t, checker.calls)

	// Anonymous multi-item page drops premium items but keeps the total.
	rec = performRequest(server, http.MethodGet, "/api/v1/questions?topic_slug=algebra&index=1&limit=2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeData[struct {
		Questions  []catalog.Question `json:"questions"`
		TotalCount int                `json:"total_count"`
	}](t, rec)
	require.Len(t, page.Questions, 1)
	require.Equal(t, 2, page.TotalCount)

	rec = performRequest(server, http.MethodGet, "/api/v1/questions?topic_slug=algebra&index=2&limit=1", "", "Bearer paying")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, checker.calls)
}

func TestRouter_Bookmarks(t *testing.T) {
	server := newRouterUnderTest(t, nil)
	seedPremiumTopic(t, server)

	rec := performRequest(server, http.MethodPost, "/api/v1/profile/bookmark/toggle", `{"topic_slug":"algebra","seq_no":1}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/v1/profile/bookmark/toggle", `{"topic_slug":"algebra","seq_no":1}`, userToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decodeData[map[string]bool](t, rec)["is_bookmarked"])

	rec = performRequest(server, http.MethodPost, "/api/v1/profile/bookmark/check", `{"topic_slug":"algebra","seq_no":1}`, userToken)
	require.True(t, decodeData[map[string]bool](t, rec)["is_bookmarked"])

	rec = performRequest(server, http.MethodPost, "/api/v1/profile/bookmark/toggle", `{"topic_slug":"algebra","seq_no":9}`, userToken)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/questions/bookmarked?topic_slug=algebra&index=1", "", userToken)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeData[struct {
		Questions       []catalog.Question `json:"questions"`
		TotalBookmarked int                `json:"total_bookmarked"`
		SeqNos          []int              `json:"bookmarked_seq_nos"`
	}](t, rec)
	require.Equal(t, 1, got.TotalBookmarked)
	require.Equal(t, []int{1}, got.SeqNos)
	require.Equal(t, 1, got.Questions[0].SeqNo)

	rec = performRequest(server, http.MethodPost, "/api/v1/profile/bookmark/clear", `{"topic_slug":"algebra"}`, userToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/v1/profile/bookmark", `{"topic_slug":"algebra"}`, userToken)
	require.Empty(t, decodeData[map[string][]int](t, rec)["bookmarks"])

	rec = performRequest(server, http.MethodGet, "/api/v1/questions/bookmarked?topic_slug=algebra&index=1", "", userToken)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Health(t *testing.T) {
	server := newRouterUnderTest(t, nil)

	rec := performRequest(server, http.MethodGet, "/health/detailed", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeData[map[string]any](t, rec)
	require.Equal(t, "healthy", body["status"])
}

func TestIPRateLimiter(t *testing.T) {
	limiter := newIPRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 2})
	now := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return now }

	require.True(t, limiter.allow("1.1.1.1"))
	require.True(t, limiter.allow("1.1.1.1"))
	require.False(t, limiter.allow("1.1.1.1"))
	require.True(t, limiter.allow("2.2.2.2"))

	now = now.Add(time.Minute)
	require.True(t, limiter.allow("1.1.1.1"))
}

func seedPremiumTopic(t *testing.T, server *http.Server) {
	t.Helper()
	require.Equal(t, http.StatusCreated, performRequest(server, http.MethodPost, "/api/v1/providers", `{"provider":"Khan Academy"}`, adminToken).Code)
	require.Equal(t, http.StatusCreated, performRequest(server, http.MethodPost, "/api/v1/topics", `{"topic":"Algebra","provider":"Khan Academy"}`, adminToken).Code)
	free := `{"topic":"Algebra","question":"Free warm up question","answer":1,"difficulty":"easy","options":[{"option_no":1,"option_text":"a"}]}`
	paid := `{"topic":"Algebra","question":"Premium hard question","answer":1,"difficulty":"hard","is_premium":true,"options":[{"option_no":1,"option_text":"a"}]}`
	require.Equal(t, http.StatusCreated, performRequest(server, http.MethodPost, "/api/v1/questions", free, adminToken).Code)
	require.Equal(t, http.StatusCreated, performRequest(server, http.MethodPost, "/api/v1/questions", paid, adminToken).Code)
}

func performRequest(server *http.Server, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
		req.Header.Set(headerRefreshToken, "refresh")
		req.Header.Set(headerService, "cortex")
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, checker premium.SubscriptionChecker) *http.Server {
	t.Helper()
	logger := newTestLogger()
	if checker == nil {
		checker = &stubChecker{}
	}

	repo := catalogrepo.NewMemoryRepository()
	aside := cache.NewAside(kvstore.NewMemoryStore(), cache.JSONCodec{}, cache.Config{}, nil, logger)
	topics := catalog.NewTopicStore(repo, aside, logger)
	catalogSvc := catalog.NewService(
		catalog.Config{DefaultPageSize: 1, MaxPageSize: 10},
		catalog.NewProviderStore(repo, aside, logger),
		topics,
		catalog.NewQuestionStore(repo, topics, aside, logger),
		catalog.NewSequencer(repo, aside, logger),
		logger,
	)
	bookmarkSvc := bookmark.NewService(profilerepo.NewMemoryRepository(), catalogSvc, aside, logger)
	authSvc := auth.NewService(auth.Config{AdminEmails: []string{"admin@example.com"}}, stubIdentity{}, logger)

	handler := NewHandler(catalogSvc, bookmarkSvc, premium.NewGate(checker, logger), logger)
	health := NewHealthHandler(HealthChecks{"store": repo, "cache": aside}, logger)
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	return NewRouter(cfg, handler, health, authSvc, nil, prometheus.NewRegistry(), logger)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

// stubIdentity resolves "Bearer <name>" to user u-<name>.
type stubIdentity struct{}

func (stubIdentity) Profile(_ context.Context, creds auth.Credentials) (auth.User, error) {
	switch creds.Authorization {
	case adminToken:
		return auth.User{ID: "u-admin", Email: "Admin@example.com", IsActive: true}, nil
	case userToken:
		return auth.User{ID: "u-user", Email: "user@example.com", IsActive: true}, nil
	case "Bearer paying":
		return auth.User{ID: "u-paying", Email: "paying@example.com", IsActive: true}, nil
	}
	return auth.User{}, &auth.UpstreamError{Status: http.StatusUnauthorized, Message: "invalid token"}
}

type stubChecker struct {
	premium map[string]bool
	calls   int
}

func (s *stubChecker) IsPremium(_ context.Context, userID, _ string) (bool, error) {
	s.calls++
	return s.premium[userID], nil
}

type envelope[T any] struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Msg    string `json:"msg"`
	Data   T      `json:"data"`
	Error  struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var body envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	require.Equal(t, "success", body.Status)
	return body.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) envelope[struct{}] {
	t.Helper()
	var body envelope[struct{}]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}
