package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type bookmarkRequest struct {
	TopicSlug string `json:"topic_slug"`
	SeqNo     *int   `json:"seq_no"`
}

func (h *Handler) bindBookmark(c *gin.Context, needSeq bool) (bookmarkRequest, bool) {
	var req bookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return req, false
	}
	if strings.TrimSpace(req.TopicSlug) == "" {
		badRequest(c, "topic_slug is required", nil)
		return req, false
	}
	if needSeq && req.SeqNo == nil {
		badRequest(c, "seq_no is required", nil)
		return req, false
	}
	return req, true
}

// TopicBookmarks lists the caller's bookmarked sequence numbers for a topic.
func (h *Handler) TopicBookmarks(c *gin.Context) {
	req, ok := h.bindBookmark(c, false)
	if !ok {
		return
	}
	seqNos, err := h.bookmarkSvc.List(c.Request.Context(), userID(c), req.TopicSlug)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Bookmarks retrieved successfully", gin.H{"bookmarks": seqNos})
}

func (h *Handler) CheckBookmark(c *gin.Context) {
	req, ok := h.bindBookmark(c, true)
	if !ok {
		return
	}
	marked, err := h.bookmarkSvc.IsBookmarked(c.Request.Context(), userID(c), req.TopicSlug, *req.SeqNo)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Bookmark status retrieved", gin.H{"is_bookmarked": marked})
}

func (h *Handler) ToggleBookmark(c *gin.Context) {
	req, ok := h.bindBookmark(c, true)
	if !ok {
		return
	}
	marked, err := h.bookmarkSvc.Toggle(c.Request.Context(), userID(c), req.TopicSlug, *req.SeqNo)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Bookmark toggled successfully", gin.H{"is_bookmarked": marked})
}

func (h *Handler) ClearBookmarks(c *gin.Context) {
	req, ok := h.bindBookmark(c, false)
	if !ok {
		return
	}
	if err := h.bookmarkSvc.Clear(c.Request.Context(), userID(c), req.TopicSlug); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Topic bookmarks cleared successfully", nil)
}
