package httpserver

import (
	"net/http"

	"github.com/azrishaharin/KonMari/internal/domain"
	"github.com/azrishaharin/KonMari/internal/state"
	"github.com/gin-gonic/gin"
)

type createCustomerRequest struct {
	Name             string                  `json:"name" binding:"required"`
	Email            string                  `json:"email" binding:"required"`
	Phone            string                  `json:"phone" binding:"required"`
	Address          string                  `json:"address" binding:"required"`
	SubscriptionType domain.SubscriptionType `json:"subscription_type" binding:"required"`
	PaymentStatus    domain.PaymentStatus    `json:"payment_status"`
}

func listCustomersHandler(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		customers := store.Customers()
		if customers == nil {
			customers = []domain.Customer{}
		}
		c.JSON(http.StatusOK, gin.H{"customers": customers})
	}
}

func createCustomerHandler(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createCustomerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name, email, phone, address and subscription_type are required"})
			return
		}
		created, err := store.AddCustomer(c.Request.Context(), domain.Customer{
			Name:             req.Name,
			Email:            req.Email,
			Phone:            req.Phone,
			Address:          req.Address,
			SubscriptionType: req.SubscriptionType,
			PaymentStatus:    req.PaymentStatus,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func getCustomerHandler(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer, err := store.GetCustomer(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func updateCustomerHandler(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.CustomerUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		updated, err := store.UpdateCustomer(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func deleteCustomerHandler(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
