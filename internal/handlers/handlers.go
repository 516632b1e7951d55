package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/forum/backend/internal/forum"
	"github.com/emilythestrangee/forum/backend/internal/identity"
)

// Handler combines all handler types
type Handler struct {
	Auth   *AuthHandler
	Thread *ThreadHandler
	Reply  *ReplyHandler
}

// NewHandler wires every sub-handler to the shared dependencies.
func NewHandler(db *gorm.DB, svc *forum.Service, tokens *identity.Tokens, broker *identity.Broker) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(db, tokens, broker),
		Thread: NewThreadHandler(svc),
		Reply:  NewReplyHandler(svc),
	}
}

// extractUserID returns the id set by the auth middleware.
func extractUserID(c *gin.Context) (int, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, v > 0
	case uint:
		return int(v), v > 0
	case float64:
		return int(v), v > 0
	default:
		return 0, false
	}
}

func parseID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}
