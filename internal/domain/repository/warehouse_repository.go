package repository

import (
	"context"

	"github.com/jhoicas/erp-inventario/internal/domain/entity"
)

// WarehouseRepository puerto de lectura de bodegas (colaborador externo).
type WarehouseRepository interface {
	// GetByID devuelve nil, nil si la bodega no existe o fue eliminada.
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
}
