package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/forum/backend/internal/forum"
)

// StatusFor maps forum errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, forum.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, forum.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, forum.ErrNotFound):
		return http.StatusNotFound
	case forum.IsContention(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusConflict:
		msg = "Concurrent update, please retry"
	case http.StatusInternalServerError:
		log.Printf("[HANDLERS] %s %s: %v", c.Request.Method, c.FullPath(), err)
		msg = "Internal server error"
		if errors.Is(err, forum.ErrTransactionFailed) {
			msg = forum.ErrTransactionFailed.Error()
		}
	}
	c.JSON(status, gin.H{"error": msg})
}
