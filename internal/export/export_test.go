package export

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/optiqo/lenshop/backend-go/internal/domain"
	"github.com/optiqo/lenshop/backend-go/internal/repository"
	"github.com/optiqo/lenshop/backend-go/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrders struct {
	order *domain.PurchaseOrder
}

func (s *stubOrders) GetOrder(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	if s.order == nil || s.order.ID != id {
		return nil, domain.ErrNotFound
	}
	return s.order, nil
}

func (s *stubOrders) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]*domain.PurchaseOrder, error) {
	return nil, nil
}

func (s *stubOrders) CreateOrder(ctx context.Context, order *domain.PurchaseOrder) error { return nil }
func (s *stubOrders) UpdateRows(ctx context.Context, id int64, rows []domain.PurchaseRow) error {
	return nil
}
func (s *stubOrders) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	return nil
}
func (s *stubOrders) MarkStockIn(ctx context.Context, id int64, at time.Time) error { return nil }

type memObjects struct {
	objects map[string][]byte
}

func (m *memObjects) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	var infos []storage.ObjectInfo
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, storage.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return infos, nil
}

func (m *memObjects) GetObject(ctx context.Context, key string) ([]byte, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

func (m *memObjects) UploadObject(ctx context.Context, key string, data []byte) error {
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[key] = data
	return nil
}

func testOrder() *domain.PurchaseOrder {
	return &domain.PurchaseOrder{
		ID:          7,
		OrderNo:     "CG2024010101",
		ProductID:   1,
		ProductName: "1.61 Aspheric",
		Status:      domain.OrderActive,
		Rows: []domain.PurchaseRow{
			{Degree: "-2.00/-0.50", Quantity: 2, UnitPrice: 10},
			{Degree: "-2.25/0.00", Quantity: 1, UnitPrice: 10},
			{Degree: "-2.00/0.00", Quantity: 3, UnitPrice: 10},
		},
	}
}

func TestRenderOrderCSV(t *testing.T) {
	svc := NewService(&stubOrders{order: testOrder()}, nil)

	name, data, err := svc.Render(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "CG2024010101.csv", name)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "order_no,product,degree,quantity,unit_price,amount", lines[0])
	// Cylinder ascending, then sphere ascending.
	assert.Contains(t, lines[1], "-2.00/-0.50")
	assert.Contains(t, lines[2], "-2.25/0.00")
	assert.Contains(t, lines[3], "-2.00/0.00")
	assert.Equal(t, "CG2024010101,1.61 Aspheric,total,6,,60.00", lines[4])
}

func TestRenderUnknownOrder(t *testing.T) {
	svc := NewService(&stubOrders{}, nil)
	_, _, err := svc.Render(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestArchiveUploadsUnderExports(t *testing.T) {
	objects := &memObjects{}
	svc := NewService(&stubOrders{order: testOrder()}, objects)

	key, err := svc.Archive(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "exports/CG2024010101.csv", key)

	data, err := objects.GetObject(context.Background(), key)
	require.NoError(t, err)
	assert.Contains(t, string(data), "total")

	infos, err := svc.ListArchived(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
}

func TestArchiveWithoutStorage(t *testing.T) {
	svc := NewService(&stubOrders{order: testOrder()}, nil)
	_, err := svc.Archive(context.Background(), 7)
	assert.Error(t, err)
}
