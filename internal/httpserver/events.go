package httpserver

import (
	"io"
	"net/http"

	"github.com/azrishaharin/KonMari/internal/changefeed"
	"github.com/gin-gonic/gin"
)

var subscribableTables = map[string]bool{
	"customers":         true,
	"completed_pickups": true,
}

// eventsHandler streams change-feed events for one table as server-sent
// events. The subscription lives exactly as long as the request.
func eventsHandler(broker *changefeed.Broker) gin.HandlerFunc {
	return func(c *gin.Context) {
		table := c.DefaultQuery("table", "customers")
		if !subscribableTables[table] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown table"})
			return
		}

		events, cancel := broker.Subscribe(table)
		defer cancel()

		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Stream(func(w io.Writer) bool {
			select {
			case <-c.Request.Context().Done():
				return false
			case e, ok := <-events:
				if !ok {
					return false
				}
				c.SSEvent(string(e.Type), e)
				return true
			}
		})
	}
}
