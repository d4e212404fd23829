package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/events"
	"storefront/internal/gateway"
	"storefront/internal/httpserver"
	"storefront/internal/ratelimit"
	cartrepo "storefront/internal/repository/cart"
	inventoryrepo "storefront/internal/repository/inventory"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	ordersvc "storefront/internal/service/order"
	paymentsvc "storefront/internal/service/payment"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	limiter := ratelimit.New(redisClient)

	// Event publishing is best effort: the storefront runs without a broker.
	var publisher *events.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = events.NewPublisher(cfg.AMQPURL, logger)
		if err != nil {
			logger.Printf("amqp unavailable, order events disabled: %v", err)
		} else {
			defer publisher.Close()
		}
	}

	gatewayClient := gateway.NewHTTPClient(cfg.GatewayBaseURL, cfg.GatewayAPIKey, cfg.GatewayTimeout, logger)

	productRepo := productrepo.NewPostgres(dbpool, logger)
	inventoryRepo := inventoryrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool)

	cartService := cartsvc.New(cartRepo, productRepo, cfg.MaxLineQuantity)
	checkoutService := checkoutsvc.New(productRepo, inventoryRepo, orderRepo, cartService, gatewayClient, checkoutsvc.Pricing{
		TaxRateBps:            cfg.TaxRateBps,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		ShippingFlatCents:     cfg.ShippingFlatCents,
		Currency:              cfg.Currency,
		SuccessURL:            cfg.CheckoutSuccessURL,
		CancelURL:             cfg.CheckoutCancelURL,
	}, logger)
	orderService := ordersvc.New(orderRepo, logger)

	var paymentService *paymentsvc.Service
	if publisher != nil {
		paymentService = paymentsvc.New(orderRepo, inventoryRepo, publisher, cfg.WebhookSecret, logger)
	} else {
		paymentService = paymentsvc.New(orderRepo, inventoryRepo, nil, cfg.WebhookSecret, logger)
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSvc:     cartService,
		CheckoutSvc: checkoutService,
		OrderSvc:    orderService,
		PaymentSvc:  paymentService,
		ProductRepo: productRepo,

		Limiter:            limiter,
		CheckoutRateLimit:  cfg.CheckoutRateLimit,
		CheckoutRateWindow: cfg.CheckoutRateWindow,
		WebhookRateLimit:   cfg.WebhookRateLimit,
		WebhookRateWindow:  cfg.WebhookRateWindow,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
