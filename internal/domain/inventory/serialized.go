package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/erp-inventario/internal/domain"
	"github.com/jhoicas/erp-inventario/internal/domain/entity"
	"github.com/jhoicas/erp-inventario/internal/domain/repository"
)

// Serialized un registro de cantidad 1 por número de serie.
// Consumir una serie elimina su registro; no existe consumo parcial.
type Serialized struct{}

func (Serialized) Apply(ctx context.Context, stock repository.StockRepository, dir Direction, m Movement, now time.Time) ([]entity.Allocation, error) {
	serials := m.Tracking.SerialNumbers
	if int64(len(serials)) != m.Quantity {
		return nil, validationf("el producto serializado %s requiere exactamente %d números de serie (recibidos %d)",
			m.ProductID, m.Quantity, len(serials))
	}
	seen := make(map[string]struct{}, len(serials))
	for _, s := range serials {
		if strings.TrimSpace(s) == "" {
			return nil, validationf("número de serie vacío para el producto %s", m.ProductID)
		}
		if _, dup := seen[s]; dup {
			return nil, fmt.Errorf("serie %s repetida en la solicitud: %w", s, domain.ErrDuplicateSerial)
		}
		seen[s] = struct{}{}
	}

	switch dir {
	case Increase:
		return increaseSerials(ctx, stock, m, now)
	case Decrease:
		return decreaseSerials(ctx, stock, m)
	}
	return nil, fmt.Errorf("sentido %s: %w", dir, domain.ErrInvalidOperation)
}

func increaseSerials(ctx context.Context, stock repository.StockRepository, m Movement, now time.Time) ([]entity.Allocation, error) {
	for _, s := range m.Tracking.SerialNumbers {
		exists, err := stock.FindSerial(ctx, s)
		if err != nil {
			return nil, err
		}
		if exists != nil {
			return nil, fmt.Errorf("serie %s ya existe en inventario: %w", s, domain.ErrDuplicateSerial)
		}
	}
	allocs := make([]entity.Allocation, 0, len(m.Tracking.SerialNumbers))
	for _, s := range m.Tracking.SerialNumbers {
		rec := &entity.StockRecord{
			ProductID:     m.ProductID,
			WarehouseID:   m.WarehouseID,
			Discriminator: entity.SerialDiscriminator(s),
			Quantity:      1,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := stock.Upsert(ctx, rec); err != nil {
			return nil, err
		}
		allocs = append(allocs, entity.Allocation{Discriminator: rec.Discriminator, Quantity: 1})
	}
	return allocs, nil
}

func decreaseSerials(ctx context.Context, stock repository.StockRepository, m Movement) ([]entity.Allocation, error) {
	records := make([]*entity.StockRecord, 0, len(m.Tracking.SerialNumbers))
	for _, s := range m.Tracking.SerialNumbers {
		rec, err := stock.FindForUpdate(ctx, entity.StockKey{
			ProductID:     m.ProductID,
			WarehouseID:   m.WarehouseID,
			Discriminator: entity.SerialDiscriminator(s),
		})
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, fmt.Errorf("serie %s en bodega %s: %w", s, m.WarehouseID, domain.ErrSerialNotFound)
		}
		if rec.Quantity < 1 {
			return nil, fmt.Errorf("serie %s: %w", s, domain.ErrSerialDepleted)
		}
		records = append(records, rec)
	}
	allocs := make([]entity.Allocation, 0, len(records))
	for _, rec := range records {
		if err := stock.Delete(ctx, rec.ID); err != nil {
			return nil, err
		}
		allocs = append(allocs, entity.Allocation{Discriminator: rec.Discriminator, Quantity: 1})
	}
	return allocs, nil
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), domain.ErrValidation)
}
