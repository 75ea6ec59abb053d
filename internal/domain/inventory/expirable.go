package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/erp-inventario/internal/domain"
	"github.com/jhoicas/erp-inventario/internal/domain/entity"
	"github.com/jhoicas/erp-inventario/internal/domain/repository"
)

// Expirable lotes por fecha de vencimiento.
// Con fecha: igual que LotTracked usando la fecha como llave.
// Sin fecha: las entradas son inválidas y las salidas consumen FIFO (vencimiento más próximo primero).
type Expirable struct{}

func (Expirable) Apply(ctx context.Context, stock repository.StockRepository, dir Direction, m Movement, now time.Time) ([]entity.Allocation, error) {
	if m.Tracking.ExpirationDate != nil {
		disc := entity.ExpirationDiscriminator(*m.Tracking.ExpirationDate)
		return applyKeyed(ctx, stock, dir, m, disc, domain.ErrInsufficientLotStock, now)
	}
	if dir == Increase {
		return nil, validationf("el producto %s requiere fecha de vencimiento", m.ProductID)
	}
	return consumeFIFO(ctx, stock, m, now)
}

// consumeFIFO verifica primero el total disponible y solo entonces descuenta lote por lote.
func consumeFIFO(ctx context.Context, stock repository.StockRepository, m Movement, now time.Time) ([]entity.Allocation, error) {
	batches, err := stock.ListBatchesForUpdate(ctx, m.ProductID, m.WarehouseID)
	if err != nil {
		return nil, err
	}
	var available int64
	for _, b := range batches {
		if b.Quantity > 0 {
			available += b.Quantity
		}
	}
	if available < m.Quantity {
		return nil, fmt.Errorf("producto %s en bodega %s (FIFO): disponible %d, solicitado %d: %w",
			m.ProductID, m.WarehouseID, available, m.Quantity, domain.ErrInsufficientStock)
	}

	remaining := m.Quantity
	var allocs []entity.Allocation
	for _, b := range batches {
		if remaining == 0 {
			break
		}
		if b.Quantity <= 0 {
			continue
		}
		take := min(b.Quantity, remaining)
		b.Quantity -= take
		b.UpdatedAt = now
		remaining -= take
		if err := stock.Upsert(ctx, b); err != nil {
			return nil, err
		}
		allocs = append(allocs, entity.Allocation{Discriminator: b.Discriminator, Quantity: take})
	}
	return allocs, nil
}
