package repository

import (
	"context"

	"github.com/jhoicas/erp-inventario/internal/domain/entity"
)

// ProductRepository puerto de lectura del catálogo de productos (colaborador externo).
type ProductRepository interface {
	// GetByID devuelve nil, nil si el producto no existe o fue eliminado.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}
