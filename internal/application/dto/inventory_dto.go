package dto

import "time"

// StockMovementRequest body para POST /api/inventory/increase y /decrease.
// Los campos de seguimiento aplican según la política del producto.
type StockMovementRequest struct {
	ProductID      string   `json:"product_id"`
	WarehouseID    string   `json:"warehouse_id"`
	Quantity       int64    `json:"quantity"`
	SerialNumbers  []string `json:"serial_numbers,omitempty"`
	LotCode        string   `json:"lot_code,omitempty"`
	ExpirationDate string   `json:"expiration_date,omitempty"` // YYYY-MM-DD
}

// AllocationDTO registro de stock afectado por un movimiento.
type AllocationDTO struct {
	Kind     string `json:"kind,omitempty"` // SERIAL | LOT | EXPIRATION; vacío = simple
	Value    string `json:"value,omitempty"`
	Quantity int64  `json:"quantity"`
}

// StockMovementResponse resultado de un movimiento aplicado.
type StockMovementResponse struct {
	Direction   string          `json:"direction"`
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    int64           `json:"quantity"`
	Allocations []AllocationDTO `json:"allocations"`
}

// AvailabilityResponse cantidad disponible de un producto en una bodega (suma de todos sus registros).
type AvailabilityResponse struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Available   int64  `json:"available"`
}

// StockRecordDTO registro de stock para listados.
type StockRecordDTO struct {
	ID                 string    `json:"id"`
	ProductID          string    `json:"product_id"`
	WarehouseID        string    `json:"warehouse_id"`
	DiscriminatorKind  string    `json:"discriminator_kind,omitempty"`
	DiscriminatorValue string    `json:"discriminator_value,omitempty"`
	Quantity           int64     `json:"quantity"`
	UpdatedAt          time.Time `json:"updated_at"`
}
