package entity

import (
	"fmt"
	"time"
)

// DiscriminatorKind tipo de sub-llave que distingue registros de stock del mismo producto y bodega.
type DiscriminatorKind string

const (
	DiscriminatorNone       DiscriminatorKind = ""
	DiscriminatorSerial     DiscriminatorKind = "SERIAL"
	DiscriminatorLot        DiscriminatorKind = "LOT"
	DiscriminatorExpiration DiscriminatorKind = "EXPIRATION"
)

// ExpirationLayout formato de la fecha de vencimiento dentro del discriminador.
// Al ser ISO, el orden lexicográfico coincide con el cronológico.
const ExpirationLayout = "2006-01-02"

// Discriminator identifica un registro dentro de (producto, bodega).
type Discriminator struct {
	Kind  DiscriminatorKind `json:"kind"`
	Value string            `json:"value,omitempty"`
}

// NoDiscriminator registro sin sub-llave (seguimiento simple).
func NoDiscriminator() Discriminator { return Discriminator{} }

// SerialDiscriminator registro de una unidad serializada.
func SerialDiscriminator(serial string) Discriminator {
	return Discriminator{Kind: DiscriminatorSerial, Value: serial}
}

// LotDiscriminator registro de un lote.
func LotDiscriminator(code string) Discriminator {
	return Discriminator{Kind: DiscriminatorLot, Value: code}
}

// ExpirationDiscriminator registro de un lote por vencimiento; se normaliza al día (UTC).
func ExpirationDiscriminator(date time.Time) Discriminator {
	return Discriminator{Kind: DiscriminatorExpiration, Value: date.UTC().Format(ExpirationLayout)}
}

// Expiration devuelve la fecha de vencimiento si el discriminador es de tipo EXPIRATION.
func (d Discriminator) Expiration() (time.Time, bool) {
	if d.Kind != DiscriminatorExpiration {
		return time.Time{}, false
	}
	t, err := time.Parse(ExpirationLayout, d.Value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (d Discriminator) String() string {
	if d.Kind == DiscriminatorNone {
		return "-"
	}
	return fmt.Sprintf("%s:%s", d.Kind, d.Value)
}

// StockKey llave única de un registro de stock.
type StockKey struct {
	ProductID     string
	WarehouseID   string
	Discriminator Discriminator
}

// StockRecord cantidad en existencia de un producto en una bodega para un discriminador.
// Quantity nunca es negativa; un registro serializado siempre tiene Quantity = 1.
type StockRecord struct {
	ID            string
	ProductID     string
	WarehouseID   string
	Discriminator Discriminator
	Quantity      int64
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Key devuelve la llave única del registro.
func (s *StockRecord) Key() StockKey {
	return StockKey{ProductID: s.ProductID, WarehouseID: s.WarehouseID, Discriminator: s.Discriminator}
}
