package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	checkoutsvc "storefront/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

type checkoutRequest struct {
	Items []checkoutsvc.Item `json:"items" binding:"required"`
}

func checkoutHandler(svc *checkoutsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		res, err := svc.BeginCheckout(c.Request.Context(), currentUser(c), req.Items)
		if err != nil {
			respondCheckoutError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func respondCheckoutError(c *gin.Context, err error) {
	var stockErr *domain.StockError
	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "insufficient stock",
			"productId": stockErr.ProductID,
			"product":   stockErr.Name,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
	case errors.Is(err, domain.ErrProductUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "product not found"})
	case errors.Is(err, domain.ErrGateway):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment provider unavailable, please try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
