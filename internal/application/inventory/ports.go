package inventory

import (
	"context"

	"github.com/jhoicas/erp-inventario/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el libro de inventario: si fn retorna error se hace Rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// Recorder registra métricas de los movimientos aplicados.
type Recorder interface {
	ObserveMovement(direction, policy string, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveMovement(string, string, error) {}
