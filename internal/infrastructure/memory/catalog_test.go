package memory_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-inventario/internal/domain/entity"
	"github.com/jhoicas/erp-inventario/internal/infrastructure/memory"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalogo.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadCatalog(t *testing.T) {
	path := writeFile(t, `{
		"warehouses": [{"id": "w1", "name": "Principal"}],
		"products": [
			{"id": "p1", "sku": "LEC-1", "name": "Leche", "tracking_policy": "EXPIRABLE"},
			{"id": "p2", "name": "Tornillo"},
			{"id": "p3", "name": "Camiseta", "tracking_policy": "VARIANT", "is_variant_parent": true}
		]
	}`)

	catalog, err := memory.ReadCatalog(path)
	require.NoError(t, err)
	require.Len(t, catalog.Products, 3)
	assert.Equal(t, entity.TrackingExpirable, catalog.Products[0].TrackingPolicy)
	assert.Equal(t, entity.TrackingSimple, catalog.Products[1].TrackingPolicy)
	assert.True(t, catalog.Products[2].IsVariantParent)

	store := memory.NewStore()
	catalog.Apply(store)
	wh, err := store.Warehouses().GetByID(context.Background(), "w1")
	require.NoError(t, err)
	require.NotNil(t, wh)
	assert.Equal(t, "Principal", wh.Name)
}

func TestReadCatalog_Invalido(t *testing.T) {
	_, err := memory.ReadCatalog(writeFile(t, `{"products": [{"id": "p1", "tracking_policy": "FIFO"}]}`))
	assert.Error(t, err)

	_, err = memory.ReadCatalog(writeFile(t, `{"warehouses": [{"name": "sin id"}]}`))
	assert.Error(t, err)

	_, err = memory.ReadCatalog(filepath.Join(t.TempDir(), "no-existe.json"))
	assert.Error(t, err)
}
