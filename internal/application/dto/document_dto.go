package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentItemRequest línea de una venta o recepción de compra.
type DocumentItemRequest struct {
	ProductID      string          `json:"product_id"`
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	SerialNumbers  []string        `json:"serial_numbers,omitempty"`
	LotCode        string          `json:"lot_code,omitempty"`
	ExpirationDate string          `json:"expiration_date,omitempty"` // YYYY-MM-DD
}

// CreateDocumentRequest body para POST /api/sales y /api/purchase-receipts.
// PartnerID es el cliente (venta) o el proveedor (recepción).
type CreateDocumentRequest struct {
	WarehouseID   string                `json:"warehouse_id"`
	PartnerID     string                `json:"partner_id,omitempty"`
	DocumentDate  string                `json:"document_date,omitempty"`
	Currency      string                `json:"currency,omitempty"`
	PaymentType   string                `json:"payment_type,omitempty"`
	InvoiceNumber string                `json:"invoice_number,omitempty"`
	Comment       string                `json:"comment,omitempty"`
	Items         []DocumentItemRequest `json:"items"`
}

// UpdateDocumentRequest parche de un borrador; los campos ausentes no cambian.
type UpdateDocumentRequest struct {
	WarehouseID   *string                `json:"warehouse_id,omitempty"`
	PartnerID     *string                `json:"partner_id,omitempty"`
	DocumentDate  *string                `json:"document_date,omitempty"`
	Currency      *string                `json:"currency,omitempty"`
	PaymentType   *string                `json:"payment_type,omitempty"`
	InvoiceNumber *string                `json:"invoice_number,omitempty"`
	Comment       *string                `json:"comment,omitempty"`
	Items         *[]DocumentItemRequest `json:"items,omitempty"`
}

// CancelDocumentRequest body opcional para POST /:id/cancel.
type CancelDocumentRequest struct {
	Reason string `json:"reason,omitempty"`
}

// DocumentItemResponse línea en respuestas.
type DocumentItemResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	LineTotal      decimal.Decimal `json:"line_total"`
	SerialNumbers  []string        `json:"serial_numbers,omitempty"`
	LotCode        string          `json:"lot_code,omitempty"`
	ExpirationDate string          `json:"expiration_date,omitempty"`
	Allocations    []AllocationDTO `json:"allocations,omitempty"`
}

// DocumentResponse venta o recepción de compra.
type DocumentResponse struct {
	ID                 string                 `json:"id"`
	Kind               string                 `json:"kind"`
	Status             string                 `json:"status"`
	WarehouseID        string                 `json:"warehouse_id"`
	PartnerID          string                 `json:"partner_id,omitempty"`
	DocumentDate       time.Time              `json:"document_date"`
	Currency           string                 `json:"currency,omitempty"`
	PaymentType        string                 `json:"payment_type,omitempty"`
	InvoiceNumber      string                 `json:"invoice_number,omitempty"`
	Comment            string                 `json:"comment,omitempty"`
	Items              []DocumentItemResponse `json:"items"`
	TotalAmount        decimal.Decimal        `json:"total_amount"`
	TotalQuantity      int64                  `json:"total_quantity"`
	CreatedBy          string                 `json:"created_by"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
	ConfirmedBy        string                 `json:"confirmed_by,omitempty"`
	ConfirmedAt        *time.Time             `json:"confirmed_at,omitempty"`
	CancelledBy        string                 `json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time             `json:"cancelled_at,omitempty"`
	CancellationReason string                 `json:"cancellation_reason,omitempty"`
}

// DocumentListResponse página de documentos.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
