package httpserver

import (
	"net/http"
	"time"

	"github.com/azrishaharin/KonMari/internal/domain"
	"github.com/azrishaharin/KonMari/internal/schedule"
	"github.com/azrishaharin/KonMari/internal/state"
	"github.com/gin-gonic/gin"
)

type completePickupRequest struct {
	Notes string `json:"notes"`
}

// listPickupsHandler serves the daily board plus the schedule header: which
// day the next pickup falls on and whether the completion window is open.
func listPickupsHandler(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		pickups := store.DailyPickups()
		if pickups == nil {
			pickups = []domain.DailyPickup{}
		}
		c.JSON(http.StatusOK, gin.H{
			"next_pickup_day":  schedule.NextPickupDay(now).String(),
			"next_pickup_date": schedule.NextPickupDate(now).Format("2006-01-02"),
			"pickup_open":      schedule.IsPickupTime(now),
			"pickups":          pickups,
		})
	}
}

func listCompletedHandler(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		completed := store.CompletedPickups()
		if completed == nil {
			completed = []domain.CompletedPickup{}
		}
		c.JSON(http.StatusOK, gin.H{"completed_pickups": completed})
	}
}

// completePickupHandler records a completion. The time window gates the UI
// only; the server accepts at any hour and reports pickup_open so clients
// can render the guard.
func completePickupHandler(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req completePickupRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
				return
			}
		}
		cp, err := store.MarkPickupComplete(c.Request.Context(), c.Param("customerID"), req.Notes)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"completed_pickup": cp,
			"pickup_open":      schedule.IsPickupTime(time.Now()),
		})
	}
}
