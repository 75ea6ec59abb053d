package documents

import "time"

// Tipos de evento publicados.
const (
	EventDocumentConfirmed = "document.confirmed"
	EventDocumentCancelled = "document.cancelled"
)

// DocumentEvent notificación de una transición que movió (o no) inventario.
type DocumentEvent struct {
	Type        string      `json:"type"`
	Kind        string      `json:"kind"`
	DocumentID  string      `json:"document_id"`
	Status      string      `json:"status"`
	WarehouseID string      `json:"warehouse_id"`
	Actor       string      `json:"actor"`
	Reason      string      `json:"reason,omitempty"`
	Direction   string      `json:"direction,omitempty"` // vacío si no hubo movimiento
	Lines       []EventLine `json:"lines,omitempty"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

// EventLine cantidad movida por producto.
type EventLine struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}
