package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/erp-inventario/internal/domain"
	"github.com/jhoicas/erp-inventario/internal/domain/entity"
	"github.com/jhoicas/erp-inventario/internal/domain/repository"
)

// Simple un único registro sin discriminador por producto y bodega.
type Simple struct{}

func (Simple) Apply(ctx context.Context, stock repository.StockRepository, dir Direction, m Movement, now time.Time) ([]entity.Allocation, error) {
	return applyKeyed(ctx, stock, dir, m, entity.NoDiscriminator(), domain.ErrInsufficientStock, now)
}

// LotTracked un registro por código de lote; el código es obligatorio.
type LotTracked struct{}

func (LotTracked) Apply(ctx context.Context, stock repository.StockRepository, dir Direction, m Movement, now time.Time) ([]entity.Allocation, error) {
	if m.Tracking.LotCode == "" {
		return nil, validationf("el producto %s requiere código de lote", m.ProductID)
	}
	return applyKeyed(ctx, stock, dir, m, entity.LotDiscriminator(m.Tracking.LotCode), domain.ErrInsufficientLotStock, now)
}
