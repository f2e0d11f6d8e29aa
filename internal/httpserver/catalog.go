package httpserver

import (
	"net/http"

	"github.com/azrishaharin/KonMari/internal/domain"
	"github.com/azrishaharin/KonMari/internal/state"
	"github.com/gin-gonic/gin"
)

func listPlansHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"plans": domain.Plans()})
	}
}

func metricsHandler(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, store.Metrics())
	}
}
