package httpserver

import (
	"errors"
	"net/http"

	"github.com/azrishaharin/KonMari/internal/domain"
	"github.com/azrishaharin/KonMari/internal/service/auth"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Identity string `json:"identity" binding:"required"`
}

type verifyRequest struct {
	Identity string `json:"identity" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

type registerDeviceRequest struct {
	RegistrationToken string `json:"registration_token" binding:"required"`
	DeviceName        string `json:"device_name" binding:"required"`
}

// loginHandler starts the flow: allow-list check, then the code goes out of
// band. 202 on success; the response body never carries the code.
func loginHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "identity required"})
			return
		}
		if err := svc.Start(c.Request.Context(), req.Identity); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "verification code sent"})
	}
}

func verifyHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "identity and code required"})
			return
		}
		grant, err := svc.Verify(c.Request.Context(), req.Identity, req.Code)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"registration_token": grant})
	}
}

func registerDeviceHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerDeviceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "registration_token and device_name required"})
			return
		}
		d, token, err := svc.RegisterDevice(c.Request.Context(), req.RegistrationToken, req.DeviceName)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"device_id": d.DeviceID,
			"token":     token,
		})
	}
}

// checkDeviceHandler is the bypass check on app load: a verified device id
// gets a fresh session token without rerunning the flow.
func checkDeviceHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, token, err := svc.CheckDevice(c.Request.Context(), c.Param("deviceID"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusOK, gin.H{"verified": false})
				return
			}
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"verified":   d.Verified,
			"token":      token,
			"last_login": d.LastLogin,
		})
	}
}
