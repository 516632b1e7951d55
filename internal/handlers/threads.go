package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/forum/backend/internal/forum"
	"github.com/emilythestrangee/forum/backend/internal/models"
)

type ThreadHandler struct {
	svc *forum.Service
}

func NewThreadHandler(svc *forum.Service) *ThreadHandler {
	return &ThreadHandler{svc: svc}
}

// ThreadView is a thread together with the caller's vote on it.
type ThreadView struct {
	Thread *models.Thread    `json:"thread"`
	MyVote *models.Direction `json:"my_vote"`
}

// GetThreads lists one page of threads, filtered by ?category= and ordered by ?sort=.
func (h *ThreadHandler) GetThreads(c *gin.Context) {
	threads, err := h.svc.ListThreads(c.Request.Context(), forum.ThreadQuery{
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, threads)
}

// GetThread returns a thread and counts the view.
func (h *ThreadHandler) GetThread(c *gin.Context) {
	threadID, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	thread, err := h.svc.GetThread(ctx, threadID)
	if err != nil {
		respondError(c, err)
		return
	}

	userID, signedIn := extractUserID(c)
	viewer := "ip:" + c.ClientIP()
	if signedIn {
		viewer = "user:" + strconv.Itoa(userID)
	}
	h.svc.RecordView(ctx, threadID, viewer)

	view := ThreadView{Thread: thread}
	if signedIn {
		view.MyVote, err = h.svc.CurrentVote(ctx, threadID, userID)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, view)
}

// CreateThread creates a new thread (PROTECTED - requires authentication)
func (h *ThreadHandler) CreateThread(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.CreateThreadRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	thread, err := h.svc.CreateThread(c.Request.Context(), userID, forum.NewThread{
		Title:    input.Title,
		Category: input.Category,
		Content:  input.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, thread)
}

// VoteThread casts, changes or retracts the caller's vote.
func (h *ThreadHandler) VoteThread(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	threadID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input models.VoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	direction, err := models.ParseDirection(input.Direction)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.svc.CastVote(c.Request.Context(), threadID, userID, direction)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ThreadView{Thread: &res.Thread, MyVote: res.Direction})
}
