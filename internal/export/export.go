// backend-go/internal/export/export.go
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/optiqo/lenshop/backend-go/internal/domain"
	"github.com/optiqo/lenshop/backend-go/internal/purchase"
	"github.com/optiqo/lenshop/backend-go/internal/repository"
	"github.com/optiqo/lenshop/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

// Service renders purchase orders to CSV and optionally archives them in
// object storage. Storage may be nil when no bucket is configured; Render
// still works, Archive returns an error.
type Service struct {
	orders  repository.OrderRepository
	objects storage.ObjectStorage
}

func NewService(orders repository.OrderRepository, objects storage.ObjectStorage) *Service {
	return &Service{orders: orders, objects: objects}
}

// Render returns the CSV content for one purchase order. Rows are written
// in catalog order (cylinder ascending, sphere ascending), followed by a
// total line.
func (s *Service) Render(ctx context.Context, orderID int64) (string, []byte, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return "", nil, err
	}
	data, err := renderCSV(order)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%s.csv", order.OrderNo), data, nil
}

// Archive renders the order and uploads it under exports/{order_no}.csv.
func (s *Service) Archive(ctx context.Context, orderID int64) (string, error) {
	if s.objects == nil {
		return "", fmt.Errorf("export storage is not configured")
	}
	name, data, err := s.Render(ctx, orderID)
	if err != nil {
		return "", err
	}
	key := "exports/" + name
	if err := s.objects.UploadObject(ctx, key, data); err != nil {
		return "", fmt.Errorf("failed to archive export: %w", err)
	}
	log.Info().Str("key", key).Int("bytes", len(data)).Msg("Archived purchase order export")
	return key, nil
}

// ListArchived lists previously archived exports.
func (s *Service) ListArchived(ctx context.Context) ([]storage.ObjectInfo, error) {
	if s.objects == nil {
		return nil, fmt.Errorf("export storage is not configured")
	}
	return s.objects.ListObjects(ctx, "exports/")
}

func renderCSV(order *domain.PurchaseOrder) ([]byte, error) {
	rows := make([]domain.PurchaseRow, len(order.Rows))
	copy(rows, order.Rows)
	purchase.SortRows(rows)

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"order_no", "product", "degree", "quantity", "unit_price", "amount"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	var totalQty int
	var totalAmount float64
	for _, row := range rows {
		amount := float64(row.Quantity) * row.UnitPrice
		totalQty += row.Quantity
		totalAmount += amount
		record := []string{
			order.OrderNo,
			order.ProductName,
			row.Degree,
			strconv.Itoa(row.Quantity),
			strconv.FormatFloat(row.UnitPrice, 'f', 2, 64),
			strconv.FormatFloat(amount, 'f', 2, 64),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	total := []string{
		order.OrderNo,
		order.ProductName,
		"total",
		strconv.Itoa(totalQty),
		"",
		strconv.FormatFloat(totalAmount, 'f', 2, 64),
	}
	if err := writer.Write(total); err != nil {
		return nil, err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
