package documents

import (
	"github.com/jhoicas/erp-inventario/internal/domain/entity"
	dominventory "github.com/jhoicas/erp-inventario/internal/domain/inventory"
)

// Flow parametriza el ciclo de vida por tipo de documento: qué movimiento aplica la confirmación.
// La anulación de un documento confirmado aplica el movimiento inverso.
type Flow struct {
	Kind      entity.DocumentKind
	OnConfirm dominventory.Direction
	label     string // plural usado en mensajes de error
}

// SaleFlow ventas: confirmar descuenta stock.
var SaleFlow = Flow{Kind: entity.DocumentKindSale, OnConfirm: dominventory.Decrease, label: "las ventas"}

// PurchaseReceiptFlow recepciones de compra: confirmar suma stock.
var PurchaseReceiptFlow = Flow{Kind: entity.DocumentKindPurchaseReceipt, OnConfirm: dominventory.Increase, label: "las recepciones de compra"}

// OnCancel movimiento aplicado al anular un documento confirmado.
func (f Flow) OnCancel() dominventory.Direction { return f.OnConfirm.Inverse() }
