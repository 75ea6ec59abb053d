package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-inventario/internal/domain"
	"github.com/jhoicas/erp-inventario/internal/domain/entity"
	"github.com/jhoicas/erp-inventario/internal/domain/repository"
	"github.com/jhoicas/erp-inventario/internal/infrastructure/memory"
)

func key(disc entity.Discriminator) entity.StockKey {
	return entity.StockKey{ProductID: "p1", WarehouseID: "w1", Discriminator: disc}
}

func TestStock_UpsertUsaLlaveUnica(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := store.Stock()

	first := &entity.StockRecord{ProductID: "p1", WarehouseID: "w1", Discriminator: entity.LotDiscriminator("A"), Quantity: 3}
	require.NoError(t, repo.Upsert(ctx, first))
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, int64(1), first.Version)

	got, err := repo.FindForUpdate(ctx, key(entity.LotDiscriminator("A")))
	require.NoError(t, err)
	require.NotNil(t, got)
	got.Quantity = 7
	require.NoError(t, repo.Upsert(ctx, got))
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, int64(2), got.Version)

	got, err = repo.FindForUpdate(ctx, key(entity.LotDiscriminator("A")))
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Quantity)

	missing, err := repo.FindForUpdate(ctx, key(entity.LotDiscriminator("B")))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// Dos creaciones de la misma llave (ninguna vio la fila de la otra) suman en lugar de sobrescribir.
func TestStock_UpsertNuevoSobreExistenteSuma(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Stock()

	require.NoError(t, repo.Upsert(ctx, &entity.StockRecord{ProductID: "p1", WarehouseID: "w1", Quantity: 10}))
	second := &entity.StockRecord{ProductID: "p1", WarehouseID: "w1", Quantity: 10}
	require.NoError(t, repo.Upsert(ctx, second))
	assert.Equal(t, int64(20), second.Quantity)
	assert.Equal(t, int64(2), second.Version)

	got, err := repo.FindForUpdate(ctx, key(entity.Discriminator{}))
	require.NoError(t, err)
	assert.Equal(t, int64(20), got.Quantity)
}

func TestStock_UpsertVersionObsoletaEsConflicto(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Stock()
	require.NoError(t, repo.Upsert(ctx, &entity.StockRecord{ProductID: "p1", WarehouseID: "w1", Quantity: 5}))

	a, err := repo.FindForUpdate(ctx, key(entity.Discriminator{}))
	require.NoError(t, err)
	b, err := repo.FindForUpdate(ctx, key(entity.Discriminator{}))
	require.NoError(t, err)

	a.Quantity = 1
	require.NoError(t, repo.Upsert(ctx, a))
	b.Quantity = 2
	assert.ErrorIs(t, repo.Upsert(ctx, b), domain.ErrConflict)

	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.ErrorIs(t, repo.Upsert(ctx, a), domain.ErrConflict)
}

func TestStock_UpsertSerialDuplicado(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Stock()
	serial := entity.SerialDiscriminator("SN-1")
	require.NoError(t, repo.Upsert(ctx, &entity.StockRecord{ProductID: "p1", WarehouseID: "w1", Discriminator: serial, Quantity: 1}))

	err := repo.Upsert(ctx, &entity.StockRecord{ProductID: "p1", WarehouseID: "w1", Discriminator: serial, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrDuplicateSerial)

	// El serial es único en todo el inventario, no solo por producto y bodega.
	err = repo.Upsert(ctx, &entity.StockRecord{ProductID: "p2", WarehouseID: "w2", Discriminator: serial, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrDuplicateSerial)

	records, err := repo.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestStock_FindSerialYBatches(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := store.Stock()

	require.NoError(t, repo.Upsert(ctx, &entity.StockRecord{ProductID: "p1", WarehouseID: "w1", Discriminator: entity.SerialDiscriminator("SN-1"), Quantity: 1}))
	for _, v := range []string{"2026-03-01", "2026-01-01", "2026-02-01"} {
		require.NoError(t, repo.Upsert(ctx, &entity.StockRecord{ProductID: "p1", WarehouseID: "w1",
			Discriminator: entity.Discriminator{Kind: entity.DiscriminatorExpiration, Value: v}, Quantity: 1}))
	}

	rec, err := repo.FindSerial(ctx, "SN-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "p1", rec.ProductID)

	batches, err := repo.ListBatchesForUpdate(ctx, "p1", "w1")
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, "2026-01-01", batches[0].Discriminator.Value)
	assert.Equal(t, "2026-03-01", batches[2].Discriminator.Value)

	require.NoError(t, repo.Delete(ctx, rec.ID))
	rec, err = repo.FindSerial(ctx, "SN-1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRun_RevierteAnteError(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	boom := errors.New("boom")

	err := store.RunDocuments(ctx, func(stockRepo repository.StockRepository, _ repository.ProductRepository, documentRepo repository.DocumentRepository) error {
		if err := stockRepo.Upsert(ctx, &entity.StockRecord{ProductID: "p1", WarehouseID: "w1", Quantity: 5}); err != nil {
			return err
		}
		if err := documentRepo.Create(ctx, &entity.Document{ID: "d1", Kind: entity.DocumentKindSale}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	records, err := store.Stock().List(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, records)
	doc, err := store.Documents().GetByID(ctx, entity.DocumentKindSale, "d1")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestRun_HookFallidoRevierte(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Stock().Upsert(ctx, &entity.StockRecord{ProductID: "p1", WarehouseID: "w1", Quantity: 2}))

	var seen memory.Snapshot
	store.SetCommitHook(func(_ context.Context, snap memory.Snapshot) error {
		seen = snap
		return errors.New("disco lleno")
	})
	err := store.RunDocuments(ctx, func(stockRepo repository.StockRepository, _ repository.ProductRepository, documentRepo repository.DocumentRepository) error {
		rec, err := stockRepo.FindForUpdate(ctx, key(entity.Discriminator{}))
		if err != nil {
			return err
		}
		rec.Quantity = 9
		if err := stockRepo.Upsert(ctx, rec); err != nil {
			return err
		}
		return documentRepo.Create(ctx, &entity.Document{ID: "d1", Kind: entity.DocumentKindSale})
	})
	require.EqualError(t, err, "disco lleno")

	// El hook vio el estado nuevo; el store quedó con el anterior.
	require.Len(t, seen.Stock, 1)
	assert.Equal(t, int64(9), seen.Stock[0].Quantity)
	assert.Len(t, seen.Documents, 1)

	store.SetCommitHook(nil)
	rec, err := store.Stock().FindForUpdate(ctx, key(entity.Discriminator{}))
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.Quantity)
	doc, err := store.Documents().GetByID(ctx, entity.DocumentKindSale, "d1")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestRun_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := memory.NewStore().Run(ctx, func(repository.StockRepository, repository.ProductRepository) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestDocuments_CopiasAisladas(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := store.Documents()

	exp := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	confirmed := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	doc := &entity.Document{ID: "d1", Kind: entity.DocumentKindSale, Status: entity.DocumentStatusDraft,
		ConfirmedAt: &confirmed,
		Items:       []entity.DocumentItem{{ID: "i1", ProductID: "p1", Quantity: 1, ExpirationDate: &exp}}}
	require.NoError(t, repo.Create(ctx, doc))
	doc.Items[0].Quantity = 99
	*doc.Items[0].ExpirationDate = exp.AddDate(1, 0, 0)
	*doc.ConfirmedAt = confirmed.AddDate(0, 0, 5)

	got, err := repo.GetByID(ctx, entity.DocumentKindSale, "d1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Items[0].Quantity)
	assert.True(t, got.Items[0].ExpirationDate.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, got.ConfirmedAt.Equal(time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)))

	// Mutar lo leído tampoco afecta lo almacenado.
	*got.Items[0].ExpirationDate = time.Time{}
	again, err := repo.GetByID(ctx, entity.DocumentKindSale, "d1")
	require.NoError(t, err)
	assert.False(t, again.Items[0].ExpirationDate.IsZero())

	other, err := repo.GetByID(ctx, entity.DocumentKindPurchaseReceipt, "d1")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestSnapshot_ExportImport(t *testing.T) {
	ctx := context.Background()
	src := memory.NewStore()
	src.PutProduct(entity.Product{ID: "p1", TrackingPolicy: entity.TrackingSimple})
	src.PutWarehouse(entity.Warehouse{ID: "w1"})
	require.NoError(t, src.Stock().Upsert(ctx, &entity.StockRecord{ProductID: "p1", WarehouseID: "w1", Quantity: 4}))

	dst := memory.NewStore()
	dst.ImportState(src.ExportState())

	p, err := dst.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, p)
	records, err := dst.Stock().List(ctx, "p1", "w1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(4), records[0].Quantity)
}
