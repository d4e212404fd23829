package httpserver

import (
	"log"
	"time"

	"storefront/internal/ratelimit"
	productrepo "storefront/internal/repository/product"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	ordersvc "storefront/internal/service/order"
	paymentsvc "storefront/internal/service/payment"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps carries the wired services the handlers need.
type Deps struct {
	CartSvc     *cartsvc.Service
	CheckoutSvc *checkoutsvc.Service
	OrderSvc    *ordersvc.Service
	PaymentSvc  *paymentsvc.Service
	ProductRepo productrepo.Repository

	Limiter            *ratelimit.Limiter
	CheckoutRateLimit  int
	CheckoutRateWindow time.Duration
	WebhookRateLimit   int
	WebhookRateWindow  time.Duration
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.GET("/products", listProductsHandler(deps.ProductRepo))
	router.POST("/webhook/payment",
		rateLimitMiddleware(deps.Limiter, "webhook", deps.WebhookRateLimit, deps.WebhookRateWindow, logger),
		webhookHandler(deps.PaymentSvc, logger))

	authed := router.Group("/")
	authed.Use(authMiddleware())
	{
		authed.GET("/cart", getCartHandler(deps.CartSvc))
		authed.POST("/cart/items", addCartItemHandler(deps.CartSvc))
		authed.PATCH("/cart/items/:productId", setCartQuantityHandler(deps.CartSvc))
		authed.DELETE("/cart/items/:productId", removeCartItemHandler(deps.CartSvc))
		authed.DELETE("/cart", clearCartHandler(deps.CartSvc))

		checkout := authed.Group("/")
		checkout.Use(rateLimitMiddleware(deps.Limiter, "checkout", deps.CheckoutRateLimit, deps.CheckoutRateWindow, logger))
		checkout.POST("/checkout", checkoutHandler(deps.CheckoutSvc))

		authed.GET("/orders/:orderId", getOrderHandler(deps.OrderSvc))
	}

	return router
}
