package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-inventario/internal/domain/entity"
	"github.com/jhoicas/erp-inventario/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo lectura del catálogo sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de lectura de productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto activo por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `
		SELECT id, sku, name, unit_measure, tracking_policy, is_variant_parent, COALESCE(parent_id, ''),
		       sale_price, purchase_price, created_at, updated_at
		FROM products WHERE id = $1 AND deleted_at IS NULL`
	var p entity.Product
	var policy string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.SKU, &p.Name, &p.UnitMeasure, &policy, &p.IsVariantParent, &p.ParentID,
		&p.SalePrice, &p.PurchasePrice, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	p.TrackingPolicy = entity.TrackingPolicy(policy)
	return &p, nil
}
