package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/quiz-catalog/internal/domain/bookmark"
	"github.com/yanqian/quiz-catalog/internal/domain/catalog"
	"github.com/yanqian/quiz-catalog/internal/domain/premium"
	apperrors "github.com/yanqian/quiz-catalog/pkg/errors"
)

// Handler wires the HTTP transport to the catalog services.
type Handler struct {
	catalogSvc  catalog.Service
	bookmarkSvc bookmark.Service
	gate        *premium.Gate
	logger      *slog.Logger
}

// NewHandler constructs the catalog HTTP handler.
func NewHandler(catalogSvc catalog.Service, bookmarkSvc bookmark.Service, gate *premium.Gate, logger *slog.Logger) *Handler {
	return &Handler{
		catalogSvc:  catalogSvc,
		bookmarkSvc: bookmarkSvc,
		gate:        gate,
		logger:      logger.With("component", "http.handler"),
	}
}

// Providers

func (h *Handler) CreateProvider(c *gin.Context) {
	var req catalog.CreateProviderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	provider, err := h.catalogSvc.CreateProvider(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Provider created successfully", provider)
}

func (h *Handler) ListProviders(c *gin.Context) {
	providers, err := h.catalogSvc.ListProviders(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Providers fetched successfully", providers)
}

func (h *Handler) GetProvider(c *gin.Context) {
	provider, err := h.catalogSvc.GetProvider(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Provider fetched successfully", provider)
}

func (h *Handler) GetProviderBySlug(c *gin.Context) {
	provider, err := h.catalogSvc.GetProviderBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Provider fetched successfully", provider)
}

func (h *Handler) UpdateProvider(c *gin.Context) {
	var req catalog.UpdateProviderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	provider, err := h.catalogSvc.UpdateProvider(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Provider updated successfully", provider)
}

func (h *Handler) DeleteProvider(c *gin.Context) {
	if err := h.catalogSvc.DeleteProvider(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusNoContent, "", nil)
}

// Topics

func (h *Handler) CreateTopic(c *gin.Context) {
	var req catalog.CreateTopicInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	topic, err := h.catalogSvc.CreateTopic(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Topic created successfully", topic)
}

func (h *Handler) ListTopics(c *gin.Context) {
	topics, err := h.catalogSvc.ListTopics(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Topics fetched successfully", topics)
}

func (h *Handler) GetTopic(c *gin.Context) {
	topic, err := h.catalogSvc.GetTopic(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Topic fetched successfully", topic)
}

func (h *Handler) GetTopicBySlug(c *gin.Context) {
	topic, err := h.catalogSvc.GetTopicBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Topic fetched successfully", topic)
}

func (h *Handler) ListTopicsByProvider(c *gin.Context) {
	topics, err := h.catalogSvc.ListTopicsByProvider(c.Request.Context(), c.Param("providerId"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Topics fetched successfully", topics)
}

func (h *Handler) ListTopicsByProviderSlug(c *gin.Context) {
	topics, err := h.catalogSvc.ListTopicsByProviderSlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Topics fetched successfully", topics)
}

func (h *Handler) UpdateTopic(c *gin.Context) {
	var req catalog.UpdateTopicInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	topic, err := h.catalogSvc.UpdateTopic(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Topic updated successfully", topic)
}

func (h *Handler) DeleteTopic(c *gin.Context) {
	if err := h.catalogSvc.DeleteTopic(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusNoContent, "", nil)
}

// Questions

func (h *Handler) CreateQuestion(c *gin.Context) {
	var req catalog.CreateQuestionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	question, err := h.catalogSvc.CreateQuestion(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Question created successfully", question)
}

// ListQuestions serves one page of a topic, optionally filtered by tags.
func (h *Handler) ListQuestions(c *gin.Context) {
	query := catalog.QuestionQuery{
		TopicSlug: c.Query("topic_slug"),
		Index:     queryInt(c, "index"),
		Limit:     queryInt(c, "limit"),
		Tags:      splitTags(c.Query("tags")),
	}
	page, err := h.catalogSvc.ListQuestions(c.Request.Context(), query)
	if err != nil {
		fail(c, err)
		return
	}
	if len(page.Questions) == 0 {
		fail(c, apperrors.Wrap(apperrors.CodeNotFound, "No questions found", nil))
		return
	}
	limit := h.catalogSvc.PageLimit(query.Limit)
	visible, err := h.gate.Filter(c.Request.Context(), page.Questions, userID(c), limit == 1)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Questions fetched successfully", gin.H{
		"questions":   visible,
		"count":       len(visible),
		"total_count": page.TotalCount,
		"limit":       limit,
	})
}

// ListBookmarkedQuestions pages through the caller's bookmarks for a topic.
func (h *Handler) ListBookmarkedQuestions(c *gin.Context) {
	user, _ := currentUser(c)
	topicSlug := c.Query("topic_slug")
	if strings.TrimSpace(topicSlug) == "" {
		badRequest(c, "topic_slug is required", nil)
		return
	}
	index := queryInt(c, "index")
	if index < 1 {
		badRequest(c, "index must be a valid number", nil)
		return
	}
	seqNos, err := h.bookmarkSvc.List(c.Request.Context(), user.ID, topicSlug)
	if err != nil {
		fail(c, err)
		return
	}
	if len(seqNos) == 0 {
		fail(c, apperrors.Wrap(apperrors.CodeNotFound, "No bookmarks found for this topic", nil))
		return
	}
	requested := queryInt(c, "limit")
	page, err := h.catalogSvc.BookmarkedQuestions(c.Request.Context(), topicSlug, index, seqNos, requested)
	if err != nil {
		fail(c, err)
		return
	}
	if len(page.Questions) == 0 {
		fail(c, apperrors.Wrap(apperrors.CodeNotFound, "Bookmarked question not found with the specified index", nil))
		return
	}
	visible, err := h.gate.Filter(c.Request.Context(), page.Questions, user.ID, h.catalogSvc.PageLimit(requested) == 1)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Bookmarked question fetched successfully", gin.H{
		"questions":          visible,
		"total_bookmarked":   page.TotalCount,
		"bookmarked_seq_nos": seqNos,
	})
}

func (h *Handler) GetQuestionBySlug(c *gin.Context) {
	question, err := h.catalogSvc.GetQuestionBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	visible, err := h.gate.Filter(c.Request.Context(), []catalog.Question{question}, userID(c), true)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Question fetched successfully", visible[0])
}

func (h *Handler) UpdateQuestion(c *gin.Context) {
	var req catalog.UpdateQuestionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	question, err := h.catalogSvc.UpdateQuestion(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Question updated successfully", question)
}

func (h *Handler) DeleteQuestion(c *gin.Context) {
	if err := h.catalogSvc.DeleteQuestion(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusNoContent, "", nil)
}

// queryInt returns 0 for missing or malformed values; services reject them.
func queryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil {
		return 0
	}
	return v
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
