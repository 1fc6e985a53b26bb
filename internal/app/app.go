package app

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storekit/checkout/internal/domain/catalog"
	"github.com/storekit/checkout/internal/domain/checkout"
	"github.com/storekit/checkout/internal/domain/discount"
	"github.com/storekit/checkout/internal/domain/inventory"
	"github.com/storekit/checkout/internal/domain/order"
	"github.com/storekit/checkout/internal/domain/payment"
	"github.com/storekit/checkout/internal/handler"
	paymentgw "github.com/storekit/checkout/internal/payment"
	"github.com/storekit/checkout/internal/storage/memory"
	"github.com/storekit/checkout/internal/storage/postgres"
	"github.com/storekit/checkout/pkg/health"
	"github.com/storekit/checkout/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Storage: PostgreSQL when configured, in-memory otherwise.
	var (
		cat    *catalog.Catalog
		stock  inventory.Service
		orders order.Repository
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})

		cat, err = postgres.NewProductRepository(pool).LoadCatalog(ctx)
		if err != nil {
			return errors.Wrap(err, "load catalog")
		}
		stock = postgres.NewStockRepository(pool)
		orders = postgres.NewOrderRepository(pool)
		lg.Info("Using PostgreSQL storage", zap.Int("products", cat.Len()))
	} else {
		memStock := memory.NewStock()
		cat = catalog.New()
		if cfg.CatalogFile != "" {
			if err := loadCatalogFile(cfg.CatalogFile, cat, memStock); err != nil {
				return errors.Wrap(err, "load catalog file")
			}
		}
		stock = memStock
		orders = memory.NewOrderRepository()
		lg.Info("Using in-memory storage", zap.Int("products", cat.Len()))
	}
	healthSvc.Start(ctx, 10*time.Second)

	// Payment gateway: remote when configured, fake otherwise.
	var gateway payment.Gateway
	if cfg.PaymentGatewayURL != "" {
		gateway = paymentgw.NewHTTPGateway(paymentgw.HTTPGatewayConfig{
			ChargeURL:      cfg.PaymentGatewayURL,
			TracerProvider: m.TracerProvider(),
		})
		lg.Info("Using remote payment gateway", zap.String("url", cfg.PaymentGatewayURL))
	} else {
		gateway = paymentgw.FakeGateway{}
		lg.Info("Using fake payment gateway")
	}

	// Domain services.
	engine := discount.NewEngine()
	if cfg.Discounts.Bulk {
		engine.AddRule(discount.BulkRule{})
	}
	if cfg.Discounts.Order {
		engine.AddRule(discount.OrderRule{})
	}
	checkoutSvc := checkout.NewService(gateway, stock, engine, orders)

	// HTTP handlers.
	h, err := handler.NewHandler(cat, stock, checkoutSvc, orders, m.TracerProvider(), m.MeterProvider())
	if err != nil {
		return errors.Wrap(err, "create handler")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}
	healthSvc.SetReady(true)

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// loadCatalogFile seeds the catalog and stock levels from a JSONL file, one
// product object per line: {"sku": "...", "name": "...", "price": 2.00,
// "quantity": 50}. Files ending in .gz are decompressed on the fly.
func loadCatalogFile(path string, cat *catalog.Catalog, stock *memory.Stock) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open")
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrap(err, "gzip reader")
		}
		defer gz.Close()
		r = gz
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		p, quantity, err := parseProductLine(raw)
		if err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
		cat.Add(p)
		stock.Set(p.SKU, quantity)
	}
	return scanner.Err()
}

func parseProductLine(raw string) (catalog.Product, int, error) {
	var (
		sku, name string
		price     decimal.Decimal
		quantity  int
	)
	d := jx.DecodeStr(raw)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "sku":
			v, err := d.Str()
			sku = v
			return err
		case "name":
			v, err := d.Str()
			name = v
			return err
		case "price":
			n, err := d.Num()
			if err != nil {
				return err
			}
			price, err = decimal.NewFromString(n.String())
			return err
		case "quantity":
			v, err := d.Int()
			quantity = v
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		return catalog.Product{}, 0, err
	}

	p, err := catalog.NewProduct(sku, name, price)
	if err != nil {
		return catalog.Product{}, 0, err
	}
	return p, quantity, nil
}
