// Package inventory contiene las estrategias de seguimiento de stock (servicio de dominio).
//
// Cada política del catálogo (SIMPLE, SERIALIZED, LOT_TRACKED, EXPIRABLE) tiene una
// estrategia que aplica un aumento o una disminución sobre el StockRepository recibido.
// Las estrategias validan todo antes de mutar: si devuelven error no han escrito nada.
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/erp-inventario/internal/domain"
	"github.com/jhoicas/erp-inventario/internal/domain/entity"
	"github.com/jhoicas/erp-inventario/internal/domain/repository"
)

// Direction sentido de un movimiento de stock.
type Direction int

const (
	Increase Direction = iota + 1
	Decrease
)

// Inverse devuelve el sentido contrario (usado al anular documentos confirmados).
func (d Direction) Inverse() Direction {
	if d == Increase {
		return Decrease
	}
	return Increase
}

func (d Direction) String() string {
	switch d {
	case Increase:
		return "INCREASE"
	case Decrease:
		return "DECREASE"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// TrackingInfo datos de seguimiento opcionales de un movimiento.
type TrackingInfo struct {
	SerialNumbers  []string
	LotCode        string
	ExpirationDate *time.Time
}

// Movement solicitud de aumento/disminución para un producto en una bodega.
type Movement struct {
	ProductID   string
	WarehouseID string
	Quantity    int64
	Tracking    TrackingInfo
}

// Strategy aplica un movimiento según una política de seguimiento.
// Devuelve los registros afectados con la cantidad aplicada a cada uno.
type Strategy interface {
	Apply(ctx context.Context, stock repository.StockRepository, dir Direction, m Movement, now time.Time) ([]entity.Allocation, error)
}

// StrategyFor selecciona la estrategia de la política. Cualquier política sin estrategia
// propia (incluida VARIANT para productos hijo) usa la semántica simple.
func StrategyFor(policy entity.TrackingPolicy) Strategy {
	switch policy {
	case entity.TrackingSerialized:
		return Serialized{}
	case entity.TrackingLot:
		return LotTracked{}
	case entity.TrackingExpirable:
		return Expirable{}
	default:
		return Simple{}
	}
}

// TrackingFromAllocation reconstruye el TrackingInfo que apunta exactamente a una asignación.
func TrackingFromAllocation(a entity.Allocation) TrackingInfo {
	switch a.Discriminator.Kind {
	case entity.DiscriminatorSerial:
		return TrackingInfo{SerialNumbers: []string{a.Discriminator.Value}}
	case entity.DiscriminatorLot:
		return TrackingInfo{LotCode: a.Discriminator.Value}
	case entity.DiscriminatorExpiration:
		if t, ok := a.Discriminator.Expiration(); ok {
			return TrackingInfo{ExpirationDate: &t}
		}
	}
	return TrackingInfo{}
}

// applyKeyed aumenta (find-or-create) o disminuye (require-and-subtract) un único registro.
func applyKeyed(
	ctx context.Context,
	stock repository.StockRepository,
	dir Direction,
	m Movement,
	disc entity.Discriminator,
	insufficient error,
	now time.Time,
) ([]entity.Allocation, error) {
	key := entity.StockKey{ProductID: m.ProductID, WarehouseID: m.WarehouseID, Discriminator: disc}
	rec, err := stock.FindForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	switch dir {
	case Increase:
		if rec == nil {
			rec = &entity.StockRecord{
				ProductID:     m.ProductID,
				WarehouseID:   m.WarehouseID,
				Discriminator: disc,
				CreatedAt:     now,
			}
		}
		rec.Quantity += m.Quantity
	case Decrease:
		if rec == nil || rec.Quantity < m.Quantity {
			var have int64
			if rec != nil {
				have = rec.Quantity
			}
			return nil, fmt.Errorf("producto %s en bodega %s (%s): disponible %d, solicitado %d: %w",
				m.ProductID, m.WarehouseID, disc, have, m.Quantity, insufficient)
		}
		rec.Quantity -= m.Quantity
	default:
		return nil, fmt.Errorf("sentido %s: %w", dir, domain.ErrInvalidOperation)
	}
	rec.UpdatedAt = now
	if err := stock.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	return []entity.Allocation{{Discriminator: disc, Quantity: m.Quantity}}, nil
}
