// backend-go/internal/domain/models.go
package domain

import "time"

// Product represents a retail product. Lens products carry a power range:
// the set of grid cell keys the product is manufacturable in.
type Product struct {
	ID            int64        `json:"id" db:"id"`
	SKU           string       `json:"sku" db:"sku"`
	Name          string       `json:"name" db:"name"`
	Kind          CategoryKind `json:"kind" db:"kind"`
	PowerRange    []string     `json:"power_range" db:"-"`
	PurchasePrice float64      `json:"purchase_price" db:"purchase_price"`
	SalePrice     float64      `json:"sale_price" db:"sale_price"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// PurchaseRow is one line of a purchase order. Degree is blank for
// non-lens products.
type PurchaseRow struct {
	Degree    string  `json:"degree"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// PurchaseOrder is a purchase order for a single product.
type PurchaseOrder struct {
	ID          int64         `json:"id" db:"id"`
	OrderNo     string        `json:"order_no" db:"order_no"`
	ProductID   int64         `json:"product_id" db:"product_id"`
	ProductName string        `json:"product_name" db:"product_name"`
	Rows        []PurchaseRow `json:"rows" db:"-"`
	Status      OrderStatus   `json:"status" db:"status"`
	StockInAt   *time.Time    `json:"stock_in_at" db:"stock_in_at"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// StockedIn reports whether the order has been received into stock.
func (o *PurchaseOrder) StockedIn() bool {
	return o.StockInAt != nil
}

// AlertConfig is a product's stock alert configuration. At most one per
// product; absence means "no alert configured", not "threshold zero".
type AlertConfig struct {
	ProductID  int64          `json:"product_id" db:"product_id"`
	Kind       AlertKind      `json:"kind" db:"kind"`
	Thresholds map[string]int `json:"thresholds,omitempty" db:"-"`
	Threshold  int            `json:"threshold" db:"threshold"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// AlertItem is one product's evaluation result: whether it is in alert
// and the suggested replenishment per degree (or total for non-lens).
type AlertItem struct {
	ProductID   int64        `json:"product_id"`
	ProductName string       `json:"product_name"`
	Kind        AlertKind    `json:"kind"`
	Suggestions []Suggestion `json:"suggestions"`
	Purchased   bool         `json:"purchased"`
}

// Suggestion is a suggested replenishment quantity. Degree is blank for
// simple (non-lens) configs.
type Suggestion struct {
	Degree    string `json:"degree"`
	Stock     int    `json:"stock"`
	Threshold int    `json:"threshold"`
	Quantity  int    `json:"quantity"`
}
