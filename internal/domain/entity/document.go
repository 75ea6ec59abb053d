package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind tipo de documento comercial que mueve inventario.
type DocumentKind string

const (
	DocumentKindSale            DocumentKind = "SALE"
	DocumentKindPurchaseReceipt DocumentKind = "PURCHASE_RECEIPT"
)

// DocumentStatus estado del ciclo de vida: DRAFT → CONFIRMED → CANCELLED (terminal).
type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "DRAFT"
	DocumentStatusConfirmed DocumentStatus = "CONFIRMED"
	DocumentStatusCancelled DocumentStatus = "CANCELLED"
)

// Allocation registro de stock afectado por una línea al confirmar.
type Allocation struct {
	Discriminator Discriminator `json:"discriminator"`
	Quantity      int64         `json:"quantity"`
}

// DocumentItem línea de un documento.
type DocumentItem struct {
	ID             string
	ProductID      string
	Quantity       int64
	UnitPrice      decimal.Decimal
	LineTotal      decimal.Decimal // Quantity × UnitPrice
	SerialNumbers  []string
	LotCode        string
	ExpirationDate *time.Time
	Allocations    []Allocation // llenado al confirmar
}

// Document cabecera compartida por ventas y recepciones de compra.
// Items y totales solo son editables mientras Status = DRAFT.
type Document struct {
	ID            string
	Kind          DocumentKind
	Status        DocumentStatus
	WarehouseID   string
	PartnerID     string // cliente (venta) o proveedor (recepción)
	DocumentDate  time.Time
	Currency      string
	PaymentType   string // solo ventas
	InvoiceNumber string // solo recepciones
	Comment       string
	Items         []DocumentItem
	TotalAmount   decimal.Decimal
	TotalQuantity int64

	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ConfirmedBy        string
	ConfirmedAt        *time.Time
	CancelledBy        string
	CancelledAt        *time.Time
	CancellationReason string
	DeletedAt          *time.Time
}

// RecalculateTotals recalcula el total de cada línea y los totales agregados.
func (d *Document) RecalculateTotals() {
	amount := decimal.Zero
	var qty int64
	for i := range d.Items {
		it := &d.Items[i]
		it.LineTotal = it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
		amount = amount.Add(it.LineTotal)
		qty += it.Quantity
	}
	d.TotalAmount = amount
	d.TotalQuantity = qty
}

// IsDeleted indica si el documento fue eliminado lógicamente.
func (d *Document) IsDeleted() bool { return d.DeletedAt != nil }
