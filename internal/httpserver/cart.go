package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
	"github.com/gin-gonic/gin"
)

type cartResponse struct {
	Cart   *domain.Cart      `json:"cart"`
	Totals domain.CartTotals `json:"totals"`
}

func toCartResponse(cart *domain.Cart) cartResponse {
	return cartResponse{Cart: cart, Totals: cartsvc.ComputeTotals(cart.Lines)}
}

func getCartHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Get(c.Request.Context(), currentUser(c))
		if err != nil {
			respondCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

func addCartItemHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "productId required"})
			return
		}
		cart, err := svc.AddItem(c.Request.Context(), currentUser(c), req.ProductID)
		if err != nil {
			respondCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func setCartQuantityHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req setQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		cart, err := svc.SetQuantity(c.Request.Context(), currentUser(c), c.Param("productId"), req.Quantity)
		if err != nil {
			respondCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func removeCartItemHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.RemoveItem(c.Request.Context(), currentUser(c), c.Param("productId"))
		if err != nil {
			respondCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func clearCartHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Clear(c.Request.Context(), currentUser(c)); err != nil {
			respondCartError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrQuantityLimit):
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity limit exceeded"})
	case errors.Is(err, domain.ErrProductUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "product not found"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
