package httpserver

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/azrishaharin/KonMari/internal/service/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// deviceIDKey is the gin context key the auth middleware stores the caller's
// device id under.
const deviceIDKey = "deviceID"

// buildRouter wires routes for the dashboard API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/login", loginHandler(deps.AuthSvc))
		authGroup.POST("/verify", verifyHandler(deps.AuthSvc))
		authGroup.POST("/devices", registerDeviceHandler(deps.AuthSvc))
		authGroup.GET("/devices/:deviceID", checkDeviceHandler(deps.AuthSvc))
	}

	api := router.Group("/api", authRequired(deps.AuthSvc))
	{
		api.GET("/customers", listCustomersHandler(deps.Store))
		api.POST("/customers", createCustomerHandler(deps.Store))
		api.GET("/customers/:id", getCustomerHandler(deps.Store))
		api.PATCH("/customers/:id", updateCustomerHandler(deps.Store))
		api.DELETE("/customers/:id", deleteCustomerHandler(deps.Store))

		api.GET("/pickups", listPickupsHandler(deps.Store))
		api.GET("/pickups/completed", listCompletedHandler(deps.Store))
		api.POST("/pickups/:customerID/complete", completePickupHandler(deps.Store))

		api.GET("/settings", getSettingsHandler(deps.Store))
		api.PATCH("/settings", updateSettingsHandler(deps.Store))

		api.GET("/plans", listPlansHandler())
		api.GET("/metrics", metricsHandler(deps.Store))

		api.GET("/events", eventsHandler(deps.Broker))
	}

	return router
}

// authRequired validates the Bearer session token and stores the device id.
func authRequired(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		deviceID, err := svc.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(deviceIDKey, deviceID)
		c.Next()
	}
}
