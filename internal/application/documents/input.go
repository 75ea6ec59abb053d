package documents

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-inventario/internal/domain/entity"
)

// ItemInput línea de entrada para crear o reemplazar las líneas de un documento.
type ItemInput struct {
	ProductID      string
	Quantity       int64
	UnitPrice      decimal.Decimal
	SerialNumbers  []string
	LotCode        string
	ExpirationDate *time.Time
}

// CreateInput datos para crear un documento en borrador.
type CreateInput struct {
	WarehouseID   string
	PartnerID     string
	DocumentDate  time.Time
	Currency      string
	PaymentType   string
	InvoiceNumber string
	Comment       string
	Items         []ItemInput
}

// UpdateInput parche de un borrador; los campos nil no cambian.
// Si Items no es nil reemplaza todas las líneas y se recalculan los totales.
type UpdateInput struct {
	WarehouseID   *string
	PartnerID     *string
	DocumentDate  *time.Time
	Currency      *string
	PaymentType   *string
	InvoiceNumber *string
	Comment       *string
	Items         *[]ItemInput
}

func buildItems(in []ItemInput, newID func() string) []entity.DocumentItem {
	items := make([]entity.DocumentItem, 0, len(in))
	for _, it := range in {
		items = append(items, entity.DocumentItem{
			ID:             newID(),
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			SerialNumbers:  append([]string(nil), it.SerialNumbers...),
			LotCode:        it.LotCode,
			ExpirationDate: it.ExpirationDate,
		})
	}
	return items
}
