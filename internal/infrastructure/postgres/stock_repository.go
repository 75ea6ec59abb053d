package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-inventario/internal/domain"
	"github.com/jhoicas/erp-inventario/internal/domain/entity"
	"github.com/jhoicas/erp-inventario/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `id, product_id, warehouse_id, discriminator_kind, discriminator_value, quantity, version, created_at, updated_at`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func scanStock(row pgx.Row) (*entity.StockRecord, error) {
	var s entity.StockRecord
	var kind string
	err := row.Scan(&s.ID, &s.ProductID, &s.WarehouseID, &kind, &s.Discriminator.Value,
		&s.Quantity, &s.Version, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Discriminator.Kind = entity.DiscriminatorKind(kind)
	return &s, nil
}

func collectStock(rows pgx.Rows) ([]*entity.StockRecord, error) {
	defer rows.Close()
	var list []*entity.StockRecord
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// FindForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRepo) FindForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + `
		FROM stock_records
		WHERE product_id = $1 AND warehouse_id = $2 AND discriminator_kind = $3 AND discriminator_value = $4
		FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, key.ProductID, key.WarehouseID,
		string(key.Discriminator.Kind), key.Discriminator.Value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return s, nil
}

// FindSerial busca un serial en todo el inventario y bloquea la fila si existe.
func (r *StockRepo) FindSerial(ctx context.Context, serial string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + `
		FROM stock_records
		WHERE discriminator_kind = 'SERIAL' AND discriminator_value = $1
		LIMIT 1
		FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, serial))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find serial: %w", err)
	}
	return s, nil
}

// ListBatchesForUpdate lotes por vencimiento ordenados del más próximo al más lejano.
// El valor del discriminador está en formato ISO, por lo que el orden textual es cronológico.
func (r *StockRepo) ListBatchesForUpdate(ctx context.Context, productID, warehouseID string) ([]*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + `
		FROM stock_records
		WHERE product_id = $1 AND warehouse_id = $2 AND discriminator_kind = 'EXPIRATION'
		ORDER BY discriminator_value ASC
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return collectStock(rows)
}

// List consulta sin bloqueo; filtros vacíos se ignoran.
func (r *StockRepo) List(ctx context.Context, productID, warehouseID string) ([]*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + `
		FROM stock_records
		WHERE ($1 = '' OR product_id = $1) AND ($2 = '' OR warehouse_id = $2)
		ORDER BY product_id, warehouse_id, discriminator_kind, discriminator_value`
	rows, err := r.q.Query(ctx, query, productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	return collectStock(rows)
}

// Upsert persiste el registro. Un registro nuevo (Version 0) no tiene fila que bloquear con
// FOR UPDATE, así que dos transacciones pueden crearlo a la vez: el INSERT suma la cantidad a
// la fila ganadora en lugar de sobrescribirla, y los seriales usan DO NOTHING para que el
// perdedor reciba ErrDuplicateSerial. Un registro leído (Version > 0) se actualiza con
// comparación de versión.
func (r *StockRepo) Upsert(ctx context.Context, rec *entity.StockRecord) error {
	if rec.Version > 0 {
		return r.update(ctx, rec)
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	query := insertAddStockSQL
	if rec.Discriminator.Kind == entity.DiscriminatorSerial {
		query = insertSerialSQL
	}
	err := r.q.QueryRow(ctx, query, rec.ID, rec.ProductID, rec.WarehouseID,
		string(rec.Discriminator.Kind), rec.Discriminator.Value, rec.Quantity,
	).Scan(&rec.ID, &rec.Quantity, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		serial := rec.Discriminator.Kind == entity.DiscriminatorSerial
		if serial && (errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err)) {
			return fmt.Errorf("serie %s: %w", rec.Discriminator.Value, domain.ErrDuplicateSerial)
		}
		return fmt.Errorf("insert stock: %w", err)
	}
	return nil
}

const (
	insertAddStockSQL = `
		INSERT INTO stock_records (id, product_id, warehouse_id, discriminator_kind, discriminator_value, quantity, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, now(), now())
		ON CONFLICT (product_id, warehouse_id, discriminator_kind, discriminator_value)
		DO UPDATE SET quantity = stock_records.quantity + EXCLUDED.quantity, version = stock_records.version + 1, updated_at = now()
		RETURNING id, quantity, version, created_at, updated_at`

	// Sin destino de conflicto: cubre la llave compuesta y el índice único global de seriales.
	insertSerialSQL = `
		INSERT INTO stock_records (id, product_id, warehouse_id, discriminator_kind, discriminator_value, quantity, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, now(), now())
		ON CONFLICT DO NOTHING
		RETURNING id, quantity, version, created_at, updated_at`

	updateStockSQL = `
		UPDATE stock_records
		SET quantity = $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $3
		RETURNING version, updated_at`
)

func (r *StockRepo) update(ctx context.Context, rec *entity.StockRecord) error {
	err := r.q.QueryRow(ctx, updateStockSQL, rec.ID, rec.Quantity, rec.Version).
		Scan(&rec.Version, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("stock %s versión %d: %w", rec.ID, rec.Version, domain.ErrConflict)
		}
		return fmt.Errorf("update stock: %w", err)
	}
	return nil
}

// Delete elimina un registro de stock por ID.
func (r *StockRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_records WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete stock: %w", err)
	}
	return nil
}
