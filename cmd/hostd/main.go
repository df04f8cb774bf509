package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/marketplace-orders/internal/coupon"
	"github.com/jcmexdev/marketplace-orders/internal/hostd/httpx"
	"github.com/jcmexdev/marketplace-orders/internal/order"
	"github.com/jcmexdev/marketplace-orders/internal/pkg/lock"
	"github.com/jcmexdev/marketplace-orders/internal/pkg/telemetry"
	"github.com/jcmexdev/marketplace-orders/internal/split"
	"github.com/jcmexdev/marketplace-orders/internal/statussync"
	"github.com/jcmexdev/marketplace-orders/internal/statussync/projection/sqlite"
	"github.com/jcmexdev/marketplace-orders/internal/stock"
	"github.com/jcmexdev/marketplace-orders/internal/storage/memory"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "hostd"))
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	projections, err := sqlite.Open(getEnv("PROJECTIONS_DB", "./data/projections.db"))
	if err != nil {
		slog.Error("failed to open projection store", "error", err)
		os.Exit(1)
	}
	defer projections.Close()

	var locker lock.Locker
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisLocker := lock.NewRedisLocker(redisAddr, "marketplace-orders")
		defer redisLocker.Close()
		locker = redisLocker
	} else {
		locker = lock.NewMemoryLocker()
	}

	orders := memory.NewOrderStore()
	catalog := seedCatalog()
	rules := seedRules()
	flags := memory.NewFlags()
	events := memory.NewEventRecorder()

	factory := split.NewFactory(rules)
	orchestrator := split.NewOrchestrator(orders, catalog, factory, events, projections, locker)
	synchronizer := statussync.NewSynchronizer(orders, projections, projections,
		statussync.SplitterFunc(func(ctx context.Context, parentID string) error {
			return orchestrator.Split(ctx, parentID, split.Options{})
		}))
	guard := coupon.NewGuard(catalog, flags)
	reconciler := stock.NewReconciler(orders, catalog)

	handler := httpx.NewHandler(orders, orchestrator, synchronizer, guard, reconciler)
	router := httpx.NewRouter(handler)

	addr := ":" + getEnv("PORT", "8080")
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	slog.Info("marketplace order host running", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

// seedCatalog loads a small demo catalog: two vendors, three products.
func seedCatalog() *memory.Catalog {
	catalog := memory.NewCatalog()
	catalog.AddProduct(order.Product{ID: "prod_1", Name: "Product One", VendorID: "vendor_1", ManagesStock: true, Stock: 15})
	catalog.AddProduct(order.Product{ID: "prod_2", Name: "Product Two", VendorID: "vendor_1", ManagesStock: true, Stock: 10})
	catalog.AddProduct(order.Product{ID: "prod_3", Name: "Product Three", VendorID: "vendor_2", ManagesStock: false})
	return catalog
}

// seedRules installs a flat 10% platform commission as the fallback rule.
func seedRules() *memory.Rules {
	return memory.NewRules(split.CommissionRule{
		Percent: decimal.NewFromInt(10),
		Flat:    decimal.Zero,
	})
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
