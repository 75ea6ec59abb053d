package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrackingPolicy define el esquema de identidad de stock de un producto.
type TrackingPolicy string

// Políticas de seguimiento soportadas por el catálogo.
const (
	TrackingSimple     TrackingPolicy = "SIMPLE"      // sin discriminador
	TrackingSerialized TrackingPolicy = "SERIALIZED"  // una unidad por número de serie
	TrackingLot        TrackingPolicy = "LOT_TRACKED" // agrupado por código de lote
	TrackingExpirable  TrackingPolicy = "EXPIRABLE"   // agrupado por fecha de vencimiento (FIFO)
	TrackingVariant    TrackingPolicy = "VARIANT"
)

// IsValid indica si la política es una de las conocidas.
func (p TrackingPolicy) IsValid() bool {
	switch p {
	case TrackingSimple, TrackingSerialized, TrackingLot, TrackingExpirable, TrackingVariant:
		return true
	}
	return false
}

// Product es la vista del catálogo que necesita el inventario.
// El CRUD de productos vive fuera de este servicio; aquí solo se consulta.
type Product struct {
	ID              string
	SKU             string
	Name            string
	UnitMeasure     string
	TrackingPolicy  TrackingPolicy
	IsVariantParent bool
	ParentID        string // vacío si no es variante
	SalePrice       decimal.Decimal
	PurchasePrice   decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}
