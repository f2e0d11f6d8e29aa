package httpserver

import (
	"net/http"

	"github.com/azrishaharin/KonMari/internal/domain"
	"github.com/azrishaharin/KonMari/internal/state"
	"github.com/gin-gonic/gin"
)

func getSettingsHandler(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := store.Settings()
		if s == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func updateSettingsHandler(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.SettingsUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		updated, err := store.UpdateSettings(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}
