package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-inventario/internal/domain/entity"
	"github.com/jhoicas/erp-inventario/internal/infrastructure/pdf"
)

func TestGenerateDocumentPDF(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	exp := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	doc := &entity.Document{
		ID:           "5f0c7a1e-0000-4000-8000-000000000001",
		Kind:         entity.DocumentKindPurchaseReceipt,
		Status:       entity.DocumentStatusConfirmed,
		WarehouseID:  "wh-1",
		PartnerID:    "proveedor-1",
		DocumentDate: now,
		Currency:     "COP",
		Items: []entity.DocumentItem{
			{ProductID: "p-1", Quantity: 3, UnitPrice: decimal.NewFromInt(12500), LotCode: "L-01", ExpirationDate: &exp},
			{ProductID: "p-2", Quantity: 2, UnitPrice: decimal.NewFromInt(1000), SerialNumbers: []string{"A1", "A2"}},
		},
		CreatedBy:   "ana",
		CreatedAt:   now,
		ConfirmedBy: "ana",
		ConfirmedAt: &now,
	}
	doc.RecalculateTotals()

	out, err := pdf.NewMarotoPDFGenerator().GenerateDocumentPDF(context.Background(), doc,
		&entity.Warehouse{ID: "wh-1", Name: "Principal"},
		map[string]*entity.Product{"p-1": {ID: "p-1", SKU: "SKU-1", Name: "Leche"}},
	)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateDocumentPDF_NilDocument(t *testing.T) {
	_, err := pdf.NewMarotoPDFGenerator().GenerateDocumentPDF(context.Background(), nil, nil, nil)
	assert.Error(t, err)
}
