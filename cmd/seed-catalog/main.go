// Command seed-catalog loads product feed files into the database. Feeds are
// gzip-compressed JSONL, one product per line:
//
//	{"sku": "A1", "name": "Widget", "price": 2.00, "quantity": 50}
//
// Files are parsed concurrently; a later file wins when two feeds carry the
// same SKU.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/storekit/checkout/internal/domain/catalog"
	"github.com/storekit/checkout/internal/storage/postgres"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	progressEvery = 10_000
)

// seedProduct is one parsed feed line.
type seedProduct struct {
	product  catalog.Product
	quantity int
}

func main() {
	var databaseURL string
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	files := flag.Args()
	if len(files) == 0 {
		slog.Error("no feed files given: pass one or more .jsonl or .jsonl.gz paths")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, files, databaseURL); err != nil {
		slog.Error("catalog seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog seed completed successfully")
}

func run(ctx context.Context, files []string, databaseURL string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	slog.Info("parsing feeds", slog.Int("files", len(files)))

	parsed, err := parseFeeds(ctx, files)
	if err != nil {
		return errors.Wrap(err, "parse feeds")
	}

	merged := mergeFeeds(parsed)
	slog.Info("feeds merged", slog.Int("products", len(merged)))

	if len(merged) == 0 {
		slog.Info("nothing to seed")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return writeProducts(ctx, pool, merged)
}

// parseFeeds parses all feed files concurrently, one goroutine per file.
func parseFeeds(ctx context.Context, files []string) ([][]seedProduct, error) {
	results := make([][]seedProduct, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(parseFeedFile(ctx, i, f, results))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func parseFeedFile(ctx context.Context, idx int, path string, results [][]seedProduct) func() error {
	return func() error {
		var (
			products []seedProduct
			count    uint64
		)
		if err := streamFeed(ctx, path, func(line string) error {
			sp, err := parseLine(line)
			if err != nil {
				return err
			}
			products = append(products, sp)
			count++
			if count%progressEvery == 0 {
				slog.Info("parse progress", slog.Int("file", idx+1), slog.Uint64("products", count))
			}
			return nil
		}); err != nil {
			return errors.Wrapf(err, "parse %s", path)
		}

		slog.Info("parse complete", slog.Int("file", idx+1), slog.Uint64("products", count))
		results[idx] = products
		return nil
	}
}

// mergeFeeds flattens per-file results into one slice with unique SKUs.
// A bloom filter screens for repeats cheaply; the exact map settles false
// positives. Later files overwrite earlier ones.
func mergeFeeds(parsed [][]seedProduct) []seedProduct {
	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	index := make(map[string]int)

	var merged []seedProduct
	var duplicates int
	for _, products := range parsed {
		for _, sp := range products {
			if seen.TestString(sp.product.SKU) {
				if i, ok := index[sp.product.SKU]; ok {
					merged[i] = sp
					duplicates++
					continue
				}
			}
			seen.AddString(sp.product.SKU)
			index[sp.product.SKU] = len(merged)
			merged = append(merged, sp)
		}
	}

	if duplicates > 0 {
		slog.Info("duplicate SKUs overwritten", slog.Int("count", duplicates))
	}
	return merged
}

// streamFeed opens a feed file, decompressing when gzip-suffixed, and calls
// fn for each non-empty line.
func streamFeed(ctx context.Context, path string, fn func(line string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var scanner *bufio.Scanner
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		scanner = bufio.NewScanner(gz)
	} else {
		scanner = bufio.NewScanner(f)
	}
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		if err := fn(raw); err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
	}

	return scanner.Err()
}

func parseLine(raw string) (seedProduct, error) {
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
		return seedProduct{}, err
	}

	p, err := catalog.NewProduct(sku, name, price)
	if err != nil {
		return seedProduct{}, err
	}
	return seedProduct{product: p, quantity: quantity}, nil
}

// writeProducts upserts products and their stock levels.
func writeProducts(ctx context.Context, pool *pgxpool.Pool, products []seedProduct) error {
	slog.Info("writing products", slog.Int("count", len(products)))

	productRepo := postgres.NewProductRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)

	for i, sp := range products {
		if err := productRepo.Upsert(ctx, sp.product); err != nil {
			return errors.Wrapf(err, "upsert product %s", sp.product.SKU)
		}
		if err := stockRepo.Set(ctx, sp.product.SKU, sp.quantity); err != nil {
			return errors.Wrapf(err, "set stock for %s", sp.product.SKU)
		}

		if (i+1)%100 == 0 || i+1 == len(products) {
			slog.Info("write progress", slog.Int("written", i+1), slog.Int("total", len(products)))
		}
	}

	return nil
}
