// backend-go/internal/report/report.go
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/optiqo/lenshop/backend-go/internal/domain"
	"github.com/optiqo/lenshop/backend-go/internal/repository"
	"github.com/optiqo/lenshop/backend-go/internal/stock"
	"github.com/optiqo/lenshop/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

// Reporter produces a point-in-time stock summary across the catalog:
// one row per product with its current stock, alert state, and suggested
// replenishment. Meant to run from a cron or by hand, not per request.
type Reporter struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	configs  repository.AlertConfigRepository
	objects  storage.ObjectStorage
	workers  int
}

func NewReporter(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	configs repository.AlertConfigRepository,
	objects storage.ObjectStorage,
	workers int,
) *Reporter {
	if workers < 1 {
		workers = 4
	}
	return &Reporter{
		products: products,
		orders:   orders,
		configs:  configs,
		objects:  objects,
		workers:  workers,
	}
}

// Line is one product's summary row.
type Line struct {
	SKU            string
	Name           string
	Kind           domain.CategoryKind
	TotalStock     int
	DegreesStocked int
	InAlert        bool
	SuggestedQty   int
}

// Generate computes summary lines for every product, fanning the
// per-product queries out over a fixed worker pool.
func (r *Reporter) Generate(ctx context.Context) ([]Line, error) {
	products, err := r.products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	jobChan := make(chan *domain.Product, len(products))
	errChan := make(chan error, r.workers)
	lines := make([]Line, 0, len(products))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobChan {
				line, err := r.summarize(ctx, p)
				if err != nil {
					log.Error().Err(err).Str("sku", p.SKU).Msg("Failed to summarize product")
					select {
					case errChan <- err:
					default:
					}
					continue
				}
				mu.Lock()
				lines = append(lines, line)
				mu.Unlock()
			}
		}()
	}

	for _, p := range products {
		select {
		case <-ctx.Done():
			close(jobChan)
			return nil, ctx.Err()
		case jobChan <- p:
		}
	}
	close(jobChan)

	wg.Wait()
	close(errChan)
	if err := <-errChan; err != nil {
		return nil, err
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].SKU < lines[j].SKU })
	return lines, nil
}

func (r *Reporter) summarize(ctx context.Context, p *domain.Product) (Line, error) {
	orders, err := r.orders.ListOrders(ctx, repository.OrderFilter{ProductID: p.ID})
	if err != nil {
		return Line{}, fmt.Errorf("failed to list orders for %s: %w", p.SKU, err)
	}
	cfg, err := r.configs.GetConfig(ctx, p.ID)
	if err != nil {
		return Line{}, fmt.Errorf("failed to load alert config for %s: %w", p.SKU, err)
	}

	line := Line{
		SKU:  p.SKU,
		Name: p.Name,
		Kind: p.Kind,
	}
	if p.Kind.IsLens() {
		byDegree := stock.LensStock(orders)
		for _, qty := range byDegree {
			line.TotalStock += qty
			if qty > 0 {
				line.DegreesStocked++
			}
		}
	} else {
		line.TotalStock = stock.TotalStock(orders)
	}

	if item := stock.Evaluate(p, cfg, orders); item != nil {
		line.InAlert = true
		for _, s := range item.Suggestions {
			line.SuggestedQty += s.Quantity
		}
	}
	return line, nil
}

// RenderCSV writes the summary lines as CSV.
func RenderCSV(lines []Line) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"sku", "name", "kind", "total_stock", "degrees_stocked", "in_alert", "suggested_qty"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}
	for _, line := range lines {
		record := []string{
			line.SKU,
			line.Name,
			string(line.Kind),
			strconv.Itoa(line.TotalStock),
			strconv.Itoa(line.DegreesStocked),
			strconv.FormatBool(line.InAlert),
			strconv.Itoa(line.SuggestedQty),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Archive generates the report and uploads it under
// reports/stock_{YYYYMMDD}.csv.
func (r *Reporter) Archive(ctx context.Context, now time.Time) (string, error) {
	if r.objects == nil {
		return "", fmt.Errorf("report storage is not configured")
	}
	lines, err := r.Generate(ctx)
	if err != nil {
		return "", err
	}
	data, err := RenderCSV(lines)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("reports/stock_%s.csv", now.Format("20060102"))
	if err := r.objects.UploadObject(ctx, key, data); err != nil {
		return "", fmt.Errorf("failed to archive report: %w", err)
	}
	log.Info().Str("key", key).Int("products", len(lines)).Msg("Archived stock report")
	return key, nil
}
