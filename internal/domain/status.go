// backend-go/internal/domain/status.go
package domain

// OrderStatus is the lifecycle status of a purchase order.
type OrderStatus string

const (
	OrderActive    OrderStatus = "active"
	OrderCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	return s == OrderActive || s == OrderCancelled
}

// Order number prefixes. CG marks a normal purchase, YJ a purchase
// triggered from the stock alert list.
const (
	OrderPrefixNormal = "CG"
	OrderPrefixAlert  = "YJ"
)

// CategoryKind classifies a product's category once, at load time,
// instead of re-comparing category names throughout.
type CategoryKind string

const (
	KindLens    CategoryKind = "lens"
	KindFrame   CategoryKind = "frame"
	KindService CategoryKind = "service"
	KindOther   CategoryKind = "other"
)

// IsLens reports whether the product tracks stock per degree.
func (k CategoryKind) IsLens() bool {
	return k == KindLens
}

// AlertKind distinguishes per-degree lens configs from single-threshold
// simple configs.
type AlertKind string

const (
	AlertLens   AlertKind = "lens"
	AlertSimple AlertKind = "simple"
)
