package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/forum/backend/internal/forum"
	"github.com/emilythestrangee/forum/backend/internal/models"
)

type ReplyHandler struct {
	svc *forum.Service
}

func NewReplyHandler(svc *forum.Service) *ReplyHandler {
	return &ReplyHandler{svc: svc}
}

// GetReplies returns all replies for a thread, oldest first
func (h *ReplyHandler) GetReplies(c *gin.Context) {
	threadID, ok := parseID(c, "id")
	if !ok {
		return
	}

	replies, err := h.svc.ListReplies(c.Request.Context(), threadID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, replies)
}

// CreateReply appends a reply to a thread (PROTECTED)
func (h *ReplyHandler) CreateReply(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	threadID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input models.CreateReplyRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.svc.AppendReply(c.Request.Context(), threadID, userID, input.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reply)
}
