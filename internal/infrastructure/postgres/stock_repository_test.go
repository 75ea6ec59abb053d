package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-inventario/internal/domain"
	"github.com/jhoicas/erp-inventario/internal/domain/entity"
)

// fakeRow devuelve valores fijos en orden o un error.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: %d destinos, %d valores", len(dest), len(r.values))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *int64:
			*p = r.values[i].(int64)
		case *time.Time:
			*p = r.values[i].(time.Time)
		default:
			return fmt.Errorf("scan: tipo no soportado %T", d)
		}
	}
	return nil
}

// fakeQuerier registra la última sentencia y responde con la fila configurada.
type fakeQuerier struct {
	row  fakeRow
	sql  string
	args []any
}

func (q *fakeQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("UPDATE 0"), nil
}

func (q *fakeQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, fmt.Errorf("no usado")
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.sql, q.args = sql, args
	return q.row
}

func TestUpsert_RegistroNuevoSumaEnConflicto(t *testing.T) {
	now := time.Now()
	// La fila ganadora ya tenía 10; el INSERT devuelve la suma.
	q := &fakeQuerier{row: fakeRow{values: []any{"rec-1", int64(20), int64(2), now, now}}}
	repo := NewStockRepository(q)

	rec := &entity.StockRecord{ProductID: "p1", WarehouseID: "w1", Quantity: 10}
	require.NoError(t, repo.Upsert(context.Background(), rec))

	assert.Equal(t, insertAddStockSQL, q.sql)
	assert.Contains(t, q.sql, "quantity = stock_records.quantity + EXCLUDED.quantity")
	assert.Equal(t, "rec-1", rec.ID)
	assert.Equal(t, int64(20), rec.Quantity)
	assert.Equal(t, int64(2), rec.Version)
}

func TestUpsert_SerialExistenteEsDuplicado(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"on conflict do nothing", pgx.ErrNoRows},
		{"violación de unicidad", &pgconn.PgError{Code: "23505"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := &fakeQuerier{row: fakeRow{err: tc.err}}
			repo := NewStockRepository(q)

			rec := &entity.StockRecord{ProductID: "p1", WarehouseID: "w1",
				Discriminator: entity.SerialDiscriminator("SN-1"), Quantity: 1}
			err := repo.Upsert(context.Background(), rec)

			assert.ErrorIs(t, err, domain.ErrDuplicateSerial)
			assert.Equal(t, insertSerialSQL, q.sql)
			assert.Contains(t, q.sql, "ON CONFLICT DO NOTHING")
		})
	}
}

func TestUpsert_RegistroLeidoComparaVersion(t *testing.T) {
	now := time.Now()
	q := &fakeQuerier{row: fakeRow{values: []any{int64(4), now}}}
	repo := NewStockRepository(q)

	rec := &entity.StockRecord{ID: "rec-1", ProductID: "p1", WarehouseID: "w1", Quantity: 7, Version: 3}
	require.NoError(t, repo.Upsert(context.Background(), rec))
	assert.Equal(t, updateStockSQL, q.sql)
	assert.Equal(t, []any{"rec-1", int64(7), int64(3)}, q.args)
	assert.Equal(t, int64(4), rec.Version)

	q.row = fakeRow{err: pgx.ErrNoRows}
	err := repo.Upsert(context.Background(), &entity.StockRecord{ID: "rec-1", Quantity: 5, Version: 3})
	assert.ErrorIs(t, err, domain.ErrConflict)
}
