package httpserver

import (
	"errors"
	"net/http"

	"github.com/azrishaharin/KonMari/internal/domain"
	"github.com/azrishaharin/KonMari/internal/service/auth"
	"github.com/gin-gonic/gin"
)

// respondError maps domain and auth errors onto HTTP statuses with a JSON
// error body. Unknown errors become 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, auth.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, auth.ErrInvalidCode):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid verification code"})
	case errors.Is(err, auth.ErrInvalidGrant):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid registration grant"})
	case errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
