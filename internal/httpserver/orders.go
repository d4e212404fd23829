package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
	ordersvc "storefront/internal/service/order"
	"github.com/gin-gonic/gin"
)

// getOrderHandler serves order status for the confirmation page. Status is
// the only user-facing payment signal; webhook processing stays invisible.
func getOrderHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.Get(c.Request.Context(), currentUser(c), c.Param("orderId"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func listProductsHandler(repo productrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := repo.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if products == nil {
			products = []domain.Product{}
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}
