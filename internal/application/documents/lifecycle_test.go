package documents_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-inventario/internal/application/documents"
	"github.com/jhoicas/erp-inventario/internal/application/inventory"
	"github.com/jhoicas/erp-inventario/internal/domain"
	"github.com/jhoicas/erp-inventario/internal/domain/entity"
	dominventory "github.com/jhoicas/erp-inventario/internal/domain/inventory"
	"github.com/jhoicas/erp-inventario/internal/domain/repository"
	"github.com/jhoicas/erp-inventario/internal/infrastructure/memory"
)

const (
	whID                 = "wh-1"
	actor entity.ActorID = "usuario-1"
)

type fakePublisher struct {
	events []documents.DocumentEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, evt documents.DocumentEvent) error {
	p.events = append(p.events, evt)
	return p.err
}

type transition struct {
	kind, name string
	err        error
}

type fakeRecorder struct{ calls []transition }

func (r *fakeRecorder) ObserveTransition(kind, name string, err error) {
	r.calls = append(r.calls, transition{kind, name, err})
}

type fixture struct {
	store     *memory.Store
	ledger    *inventory.LedgerUseCase
	sales     *documents.LifecycleUseCase
	receipts  *documents.LifecycleUseCase
	publisher *fakePublisher
	recorder  *fakeRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.PutWarehouse(entity.Warehouse{ID: whID, Name: "Principal"})
	for _, p := range []entity.Product{
		{ID: "simple", TrackingPolicy: entity.TrackingSimple},
		{ID: "serial", TrackingPolicy: entity.TrackingSerialized},
		{ID: "vence", TrackingPolicy: entity.TrackingExpirable},
		{ID: "lote", TrackingPolicy: entity.TrackingLot},
	} {
		store.PutProduct(p)
	}
	f := &fixture{store: store, publisher: &fakePublisher{}, recorder: &fakeRecorder{}}
	f.ledger = inventory.NewLedgerUseCase(store, store.Stock())
	deps := documents.Deps{
		TxRunner:      store,
		Ledger:        f.ledger,
		DocumentRepo:  store.Documents(),
		ProductRepo:   store.Products(),
		WarehouseRepo: store.Warehouses(),
		Publisher:     f.publisher,
		Recorder:      f.recorder,
		Logger:        zerolog.Nop(),
		Now:           func() time.Time { return time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC) },
	}
	f.sales = documents.NewSalesUseCase(deps)
	f.receipts = documents.NewPurchaseReceiptsUseCase(deps)
	return f
}

func (f *fixture) stock(t *testing.T, productID string, qty int64, tr dominventory.TrackingInfo) {
	t.Helper()
	_, err := f.ledger.IncreaseStock(context.Background(), dominventory.Movement{
		ProductID: productID, WarehouseID: whID, Quantity: qty, Tracking: tr,
	})
	require.NoError(t, err)
}

func (f *fixture) available(t *testing.T, productID string) int64 {
	t.Helper()
	qty, err := f.ledger.CheckAvailability(context.Background(), productID, whID)
	require.NoError(t, err)
	return qty
}

func day(s string) *time.Time {
	t, _ := time.Parse(entity.ExpirationLayout, s)
	return &t
}

func TestCreate_CalculaTotales(t *testing.T) {
	f := newFixture(t)
	doc, err := f.sales.Create(context.Background(), actor, documents.CreateInput{
		WarehouseID: whID,
		PartnerID:   "cliente-1",
		Items: []documents.ItemInput{
			{ProductID: "simple", Quantity: 3, UnitPrice: decimal.RequireFromString("1500.50")},
			{ProductID: "simple", Quantity: 2, UnitPrice: decimal.NewFromInt(1000)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentStatusDraft, doc.Status)
	assert.Equal(t, entity.DocumentKindSale, doc.Kind)
	assert.True(t, decimal.RequireFromString("6501.50").Equal(doc.TotalAmount), doc.TotalAmount.String())
	assert.Equal(t, int64(5), doc.TotalQuantity)
	assert.Equal(t, string(actor), doc.CreatedBy)
	assert.False(t, doc.DocumentDate.IsZero())

	// Crear no mueve inventario.
	assert.Equal(t, int64(0), f.available(t, "simple"))

	got, err := f.sales.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := []documents.ItemInput{{ProductID: "simple", Quantity: 1}}

	_, err := f.sales.Create(ctx, "", documents.CreateInput{WarehouseID: whID, Items: item})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.sales.Create(ctx, actor, documents.CreateInput{Items: item})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.sales.Create(ctx, actor, documents.CreateInput{WarehouseID: "otra", Items: item})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.sales.Create(ctx, actor, documents.CreateInput{WarehouseID: whID, Items: []documents.ItemInput{{ProductID: "nope", Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.sales.Create(ctx, actor, documents.CreateInput{WarehouseID: whID, Items: []documents.ItemInput{{ProductID: "simple", Quantity: 0}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.sales.Create(ctx, actor, documents.CreateInput{WarehouseID: whID, Items: []documents.ItemInput{{ProductID: "simple", Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSale_ConfirmarYAnularRestauraStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "simple", 50, dominventory.TrackingInfo{})

	doc, err := f.sales.Create(ctx, actor, documents.CreateInput{
		WarehouseID: whID,
		Items:       []documents.ItemInput{{ProductID: "simple", Quantity: 10}},
	})
	require.NoError(t, err)

	confirmed, err := f.sales.Confirm(ctx, doc.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentStatusConfirmed, confirmed.Status)
	assert.Equal(t, string(actor), confirmed.ConfirmedBy)
	require.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, int64(40), f.available(t, "simple"))

	cancelled, err := f.sales.Cancel(ctx, doc.ID, actor, "devolución")
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentStatusCancelled, cancelled.Status)
	assert.Equal(t, "devolución", cancelled.CancellationReason)
	assert.Equal(t, int64(50), f.available(t, "simple"))

	_, err = f.sales.Cancel(ctx, doc.ID, actor, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	assert.Equal(t, int64(50), f.available(t, "simple"))

	_, err = f.sales.Confirm(ctx, doc.ID, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, documents.EventDocumentConfirmed, f.publisher.events[0].Type)
	assert.Equal(t, "DECREASE", f.publisher.events[0].Direction)
	assert.Equal(t, []documents.EventLine{{ProductID: "simple", Quantity: 10}}, f.publisher.events[0].Lines)
	assert.Equal(t, documents.EventDocumentCancelled, f.publisher.events[1].Type)
	assert.Equal(t, "INCREASE", f.publisher.events[1].Direction)
	assert.Equal(t, "devolución", f.publisher.events[1].Reason)
}

func TestSale_AnularBorradorNoMueveStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "simple", 5, dominventory.TrackingInfo{})

	doc, err := f.sales.Create(ctx, actor, documents.CreateInput{
		WarehouseID: whID,
		Items:       []documents.ItemInput{{ProductID: "simple", Quantity: 3}},
	})
	require.NoError(t, err)

	cancelled, err := f.sales.Cancel(ctx, doc.ID, actor, "")
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentStatusCancelled, cancelled.Status)
	assert.Equal(t, int64(5), f.available(t, "simple"))

	require.Len(t, f.publisher.events, 1)
	assert.Empty(t, f.publisher.events[0].Direction)
	assert.Empty(t, f.publisher.events[0].Lines)
}

func TestConfirm_AtomicoSiUnaLineaFalla(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "simple", 10, dominventory.TrackingInfo{})
	f.stock(t, "lote", 2, dominventory.TrackingInfo{LotCode: "L-1"})

	doc, err := f.sales.Create(ctx, actor, documents.CreateInput{
		WarehouseID: whID,
		Items: []documents.ItemInput{
			{ProductID: "simple", Quantity: 4},
			{ProductID: "lote", Quantity: 5, LotCode: "L-1"},
		},
	})
	require.NoError(t, err)

	_, err = f.sales.Confirm(ctx, doc.ID, actor)
	assert.ErrorIs(t, err, domain.ErrInsufficientLotStock)

	// La primera línea tampoco se aplicó.
	assert.Equal(t, int64(10), f.available(t, "simple"))
	assert.Equal(t, int64(2), f.available(t, "lote"))

	got, err := f.sales.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentStatusDraft, got.Status)
	assert.Empty(t, got.Items[0].Allocations)
	assert.Empty(t, f.publisher.events)

	require.Len(t, f.recorder.calls, 1)
	assert.Equal(t, "confirm", f.recorder.calls[0].name)
	assert.Error(t, f.recorder.calls[0].err)
}

func TestConfirm_SinLineas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc, err := f.sales.Create(ctx, actor, documents.CreateInput{WarehouseID: whID})
	require.NoError(t, err)

	_, err = f.sales.Confirm(ctx, doc.ID, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSale_FIFOAnulacionRestauraLotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "vence", 30, dominventory.TrackingInfo{ExpirationDate: day("2026-01-01")})
	f.stock(t, "vence", 20, dominventory.TrackingInfo{ExpirationDate: day("2026-02-01")})

	doc, err := f.sales.Create(ctx, actor, documents.CreateInput{
		WarehouseID: whID,
		Items:       []documents.ItemInput{{ProductID: "vence", Quantity: 40}},
	})
	require.NoError(t, err)

	confirmed, err := f.sales.Confirm(ctx, doc.ID, actor)
	require.NoError(t, err)
	require.Len(t, confirmed.Items[0].Allocations, 2)

	batches := func() map[string]int64 {
		records, err := f.ledger.ListStock(ctx, "vence", whID)
		require.NoError(t, err)
		out := make(map[string]int64, len(records))
		for _, r := range records {
			out[r.Discriminator.Value] = r.Quantity
		}
		return out
	}
	assert.Equal(t, map[string]int64{"2026-01-01": 0, "2026-02-01": 10}, batches())

	_, err = f.sales.Cancel(ctx, doc.ID, actor, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"2026-01-01": 30, "2026-02-01": 20}, batches())
}

func TestSale_SerialesConfirmarYAnular(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "serial", 2, dominventory.TrackingInfo{SerialNumbers: []string{"SN-1", "SN-2"}})

	doc, err := f.sales.Create(ctx, actor, documents.CreateInput{
		WarehouseID: whID,
		Items:       []documents.ItemInput{{ProductID: "serial", Quantity: 1, SerialNumbers: []string{"SN-2"}}},
	})
	require.NoError(t, err)

	_, err = f.sales.Confirm(ctx, doc.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.available(t, "serial"))

	_, err = f.sales.Cancel(ctx, doc.ID, actor, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.available(t, "serial"))
}

func TestPurchaseReceipt_ConfirmarSumaYAnularResta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc, err := f.receipts.Create(ctx, actor, documents.CreateInput{
		WarehouseID:   whID,
		PartnerID:     "proveedor-1",
		InvoiceNumber: "FV-77",
		Items: []documents.ItemInput{
			{ProductID: "simple", Quantity: 15, UnitPrice: decimal.NewFromInt(200)},
			{ProductID: "vence", Quantity: 6, ExpirationDate: day("2026-04-01")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentKindPurchaseReceipt, doc.Kind)

	_, err = f.receipts.Confirm(ctx, doc.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, int64(15), f.available(t, "simple"))
	assert.Equal(t, int64(6), f.available(t, "vence"))

	// Se vendió parte de lo recibido: la anulación ya no alcanza.
	_, err = f.ledger.DecreaseStock(ctx, dominventory.Movement{ProductID: "simple", WarehouseID: whID, Quantity: 10})
	require.NoError(t, err)
	_, err = f.receipts.Cancel(ctx, doc.ID, actor, "")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(6), f.available(t, "vence"))

	_, err = f.ledger.IncreaseStock(ctx, dominventory.Movement{ProductID: "simple", WarehouseID: whID, Quantity: 10})
	require.NoError(t, err)
	_, err = f.receipts.Cancel(ctx, doc.ID, actor, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.available(t, "simple"))
	assert.Equal(t, int64(0), f.available(t, "vence"))
}

func TestDocumentos_SeparadosPorTipo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc, err := f.receipts.Create(ctx, actor, documents.CreateInput{WarehouseID: whID})
	require.NoError(t, err)

	_, err = f.sales.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.sales.Confirm(ctx, doc.ID, actor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_SoloBorradores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "simple", 10, dominventory.TrackingInfo{})

	doc, err := f.sales.Create(ctx, actor, documents.CreateInput{
		WarehouseID: whID,
		Items:       []documents.ItemInput{{ProductID: "simple", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)

	comment := "urgente"
	items := []documents.ItemInput{{ProductID: "simple", Quantity: 4, UnitPrice: decimal.NewFromInt(10)}}
	updated, err := f.sales.Update(ctx, doc.ID, actor, documents.UpdateInput{Comment: &comment, Items: &items})
	require.NoError(t, err)
	assert.Equal(t, "urgente", updated.Comment)
	assert.Equal(t, int64(4), updated.TotalQuantity)
	assert.True(t, decimal.NewFromInt(40).Equal(updated.TotalAmount))

	empty := ""
	_, err = f.sales.Update(ctx, doc.ID, actor, documents.UpdateInput{WarehouseID: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.sales.Confirm(ctx, doc.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, int64(6), f.available(t, "simple"))

	_, err = f.sales.Update(ctx, doc.ID, actor, documents.UpdateInput{Comment: &comment})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	err = f.sales.Remove(ctx, doc.ID, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRemove_Borrador(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc, err := f.sales.Create(ctx, actor, documents.CreateInput{WarehouseID: whID})
	require.NoError(t, err)

	require.NoError(t, f.sales.Remove(ctx, doc.ID, actor))

	_, err = f.sales.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	list, err := f.sales.List(ctx, repository.DocumentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.ErrorIs(t, f.sales.Remove(ctx, doc.ID, actor), domain.ErrNotFound)
}

func TestPublicarFallaNoRevierte(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.publisher.err = errors.New("broker caído")
	f.stock(t, "simple", 5, dominventory.TrackingInfo{})

	doc, err := f.sales.Create(ctx, actor, documents.CreateInput{
		WarehouseID: whID,
		Items:       []documents.ItemInput{{ProductID: "simple", Quantity: 5}},
	})
	require.NoError(t, err)

	confirmed, err := f.sales.Confirm(ctx, doc.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentStatusConfirmed, confirmed.Status)
	assert.Equal(t, int64(0), f.available(t, "simple"))
}

type fakePDF struct {
	warehouse *entity.Warehouse
	products  map[string]*entity.Product
}

func (g *fakePDF) GenerateDocumentPDF(_ context.Context, _ *entity.Document, wh *entity.Warehouse, products map[string]*entity.Product) ([]byte, error) {
	g.warehouse, g.products = wh, products
	return []byte("%PDF-"), nil
}

type failingProducts struct{ err error }

func (r failingProducts) GetByID(context.Context, string) (*entity.Product, error) { return nil, r.err }

type failingWarehouses struct{ err error }

func (r failingWarehouses) GetByID(context.Context, string) (*entity.Warehouse, error) {
	return nil, r.err
}

func TestRenderPDF_PropagaErroresDeCatalogo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc, err := f.sales.Create(ctx, actor, documents.CreateInput{
		WarehouseID: whID,
		Items:       []documents.ItemInput{{ProductID: "simple", Quantity: 1}},
	})
	require.NoError(t, err)

	deps := func(products repository.ProductRepository, warehouses repository.WarehouseRepository, pdf documents.PDFGenerator) documents.Deps {
		return documents.Deps{
			TxRunner: f.store, Ledger: f.ledger, DocumentRepo: f.store.Documents(),
			ProductRepo: products, WarehouseRepo: warehouses, PDF: pdf, Logger: zerolog.Nop(),
		}
	}

	gen := &fakePDF{}
	out, err := documents.NewSalesUseCase(deps(f.store.Products(), f.store.Warehouses(), gen)).RenderPDF(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-"), out)
	require.NotNil(t, gen.warehouse)
	assert.Equal(t, "Principal", gen.warehouse.Name)
	assert.Contains(t, gen.products, "simple")

	caida := errors.New("catálogo no disponible")
	_, err = documents.NewSalesUseCase(deps(f.store.Products(), failingWarehouses{caida}, &fakePDF{})).RenderPDF(ctx, doc.ID)
	assert.ErrorIs(t, err, caida)

	_, err = documents.NewSalesUseCase(deps(failingProducts{caida}, f.store.Warehouses(), &fakePDF{})).RenderPDF(ctx, doc.ID)
	assert.ErrorIs(t, err, caida)
}
