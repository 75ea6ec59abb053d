// Package pdf genera la representación impresa de ventas y recepciones de compra.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tipo de documento │  N° + Fecha + Estado            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  BODEGA / TERCERO / Moneda / Pago o factura de proveedor     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | Seguimiento | P.Unit | Total       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Unidades / TOTAL                                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: Auditoría (creado/confirmado/anulado) + QR del ID   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/erp-inventario/internal/application/documents"
	"github.com/jhoicas/erp-inventario/internal/domain/entity"
)

var _ documents.PDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

const dateLayout = "02/01/2006"

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa documents.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateDocumentPDF genera el PDF y devuelve sus bytes. warehouse y products pueden venir incompletos.
func (g *MarotoPDFGenerator) GenerateDocumentPDF(
	_ context.Context,
	doc *entity.Document,
	warehouse *entity.Warehouse,
	products map[string]*entity.Product,
) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("pdf: documento nil")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(documentTitle(doc.Kind), true).
		WithAuthor(doc.CreatedBy, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(doc, warehouse))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(doc.Items, products) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range auditFooterRows(doc) {
		m.AddRows(r)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func documentTitle(kind entity.DocumentKind) string {
	if kind == entity.DocumentKindPurchaseReceipt {
		return "RECEPCIÓN DE COMPRA"
	}
	return "VENTA"
}

func statusLabel(s entity.DocumentStatus) string {
	switch s {
	case entity.DocumentStatusDraft:
		return "BORRADOR"
	case entity.DocumentStatusConfirmed:
		return "CONFIRMADO"
	case entity.DocumentStatusCancelled:
		return "ANULADO"
	}
	return string(s)
}

// headerRow: tipo de documento (izq) y número, fecha y estado (der).
func headerRow(doc *entity.Document) core.Row {
	statusColor := colorPrimary
	if doc.Status == entity.DocumentStatusCancelled {
		statusColor = colorRed
	}
	return row.New(20).Add(
		col.New(7).Add(
			text.New(documentTitle(doc.Kind), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(statusLabel(doc.Status), props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 9, Color: statusColor,
			}),
		),
		col.New(5).Add(
			text.New("N° "+shortID(doc.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Fecha: "+doc.DocumentDate.Format(dateLayout), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New("Moneda: "+nonEmpty(doc.Currency, "—"), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

// partiesRow: bodega y tercero (cliente o proveedor).
func partiesRow(doc *entity.Document, warehouse *entity.Warehouse) core.Row {
	whName, whAddress := doc.WarehouseID, "—"
	if warehouse != nil {
		whName = warehouse.Name
		whAddress = nonEmpty(warehouse.Address, "—")
	}
	partnerLabel, extra := "CLIENTE", "Forma de pago: "+nonEmpty(doc.PaymentType, "—")
	if doc.Kind == entity.DocumentKindPurchaseReceipt {
		partnerLabel, extra = "PROVEEDOR", "Factura proveedor: "+nonEmpty(doc.InvoiceNumber, "—")
	}
	return row.New(16).Add(
		col.New(6).Add(
			text.New("BODEGA", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(whName, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(whAddress, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
		col.New(6).Add(
			text.New(partnerLabel, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(doc.PartnerID, "—"), props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(extra, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Producto", 4, align.Left),
		h("Seguimiento", 3, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

// tableDetailRows: una fila por línea del documento.
func tableDetailRows(items []entity.DocumentItem, products map[string]*entity.Product) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		name := it.ProductID
		if p, ok := products[it.ProductID]; ok && p != nil {
			name = p.SKU + " " + p.Name
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", it.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(4).Add(text.New(
				name,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				trackingLabel(it),
				props.Text{Size: 7, Align: align.Left, Top: 1, Left: 1, Color: colorGray},
			)),
			col.New(2).Add(text.New(
				"$"+formatMoney(it.UnitPrice.StringFixed(0)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				"$"+formatMoney(it.LineTotal.StringFixed(0)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

func trackingLabel(it entity.DocumentItem) string {
	var parts []string
	if len(it.SerialNumbers) > 0 {
		parts = append(parts, "S/N "+strings.Join(it.SerialNumbers, ", "))
	}
	if it.LotCode != "" {
		parts = append(parts, "Lote "+it.LotCode)
	}
	if it.ExpirationDate != nil {
		parts = append(parts, "Vence "+it.ExpirationDate.Format(dateLayout))
	}
	if len(parts) == 0 {
		return "—"
	}
	return strings.Join(parts, " | ")
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(doc *entity.Document) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2, Top: 6,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: 6,
		})
	}

	return row.New(18).Add(
		col.New(6),
		col.New(3).Add(
			label("Unidades:"),
			grandLabel("TOTAL:"),
		),
		col.New(3).Add(
			value(fmt.Sprintf("%d", doc.TotalQuantity)),
			grandValue("$"+formatMoney(doc.TotalAmount.StringFixed(0))),
		),
	)
}

// auditFooterRows: trazabilidad del ciclo de vida + QR con el ID del documento.
func auditFooterRows(doc *entity.Document) []core.Row {
	lines := []string{
		fmt.Sprintf("Creado por %s el %s", doc.CreatedBy, doc.CreatedAt.Format(dateLayout)),
	}
	if doc.ConfirmedAt != nil {
		lines = append(lines, fmt.Sprintf("Confirmado por %s el %s", doc.ConfirmedBy, doc.ConfirmedAt.Format(dateLayout)))
	}
	if doc.CancelledAt != nil {
		l := fmt.Sprintf("Anulado por %s el %s", doc.CancelledBy, doc.CancelledAt.Format(dateLayout))
		if doc.CancellationReason != "" {
			l += ": " + doc.CancellationReason
		}
		lines = append(lines, l)
	}
	if doc.Comment != "" {
		lines = append(lines, "Observaciones: "+doc.Comment)
	}

	return []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("TRAZABILIDAD", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)),
		row.New(30).Add(
			col.New(3).Add(code.NewQr(doc.ID, props.Rect{Percent: 95, Center: true})),
			col.New(9).Add(text.New(strings.Join(lines, "\n"), props.Text{
				Size: 8, Top: 2, Left: 3, Color: colorGray,
			})),
		),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
