package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/db"
	orderrepo "storefront/internal/repository/order"
	ordersvc "storefront/internal/service/order"

	"golang.org/x/sync/errgroup"
)

// The sweeper runs the two scheduled jobs: cancelling stale PENDING orders
// (abandoned checkouts never commit inventory, so cancellation needs no
// cleanup) and reporting PAID orders whose inventory decrement never landed.
func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[sweeper] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	orders := ordersvc.New(orderrepo.NewPostgres(pool, logger), logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runEvery(ctx, cfg.SweepInterval, func(ctx context.Context) {
			if _, err := orders.SweepStale(ctx, cfg.PendingOrderTTL); err != nil {
				logger.Printf("sweep stale: %v", err)
			}
		})
	})
	g.Go(func() error {
		return runEvery(ctx, cfg.SweepInterval, func(ctx context.Context) {
			if _, err := orders.ReportMissingStock(ctx); err != nil {
				logger.Printf("consistency report: %v", err)
			}
		})
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Fatalf("sweeper stopped: %v", err)
	}
	logger.Println("sweeper stopped")
}

func runEvery(ctx context.Context, interval time.Duration, fn func(context.Context)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fn(ctx)
	for {
		select {
		case <-ticker.C:
			fn(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
