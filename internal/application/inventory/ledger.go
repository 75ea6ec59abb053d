package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-inventario/internal/domain"
	"github.com/jhoicas/erp-inventario/internal/domain/entity"
	dominventory "github.com/jhoicas/erp-inventario/internal/domain/inventory"
	"github.com/jhoicas/erp-inventario/internal/domain/repository"
)

// LedgerUseCase es la fachada del libro de inventario: aumenta, disminuye y consulta stock.
// Cada movimiento corre en su propia transacción (TxRunner); los documentos que necesitan
// varios movimientos atómicos usan ApplyInTx dentro de su propia transacción.
type LedgerUseCase struct {
	txRunner  TxRunner
	stockRepo repository.StockRepository
	recorder  Recorder
	log       zerolog.Logger
	now       func() time.Time
}

// Option configura dependencias opcionales del caso de uso.
type Option func(*LedgerUseCase)

// WithRecorder registra métricas de movimientos.
func WithRecorder(r Recorder) Option {
	return func(uc *LedgerUseCase) {
		if r != nil {
			uc.recorder = r
		}
	}
}

// WithLogger asigna el logger.
func WithLogger(l zerolog.Logger) Option {
	return func(uc *LedgerUseCase) { uc.log = l }
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(uc *LedgerUseCase) { uc.now = now }
}

// NewLedgerUseCase construye el caso de uso. stockRepo se usa solo para lecturas fuera de transacción.
func NewLedgerUseCase(txRunner TxRunner, stockRepo repository.StockRepository, opts ...Option) *LedgerUseCase {
	uc := &LedgerUseCase{
		txRunner:  txRunner,
		stockRepo: stockRepo,
		recorder:  nopRecorder{},
		log:       zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// IncreaseStock suma stock según la política de seguimiento del producto.
func (uc *LedgerUseCase) IncreaseStock(ctx context.Context, m dominventory.Movement) ([]entity.Allocation, error) {
	return uc.apply(ctx, dominventory.Increase, m)
}

// DecreaseStock descuenta stock según la política de seguimiento del producto.
func (uc *LedgerUseCase) DecreaseStock(ctx context.Context, m dominventory.Movement) ([]entity.Allocation, error) {
	return uc.apply(ctx, dominventory.Decrease, m)
}

func (uc *LedgerUseCase) apply(ctx context.Context, dir dominventory.Direction, m dominventory.Movement) ([]entity.Allocation, error) {
	var allocs []entity.Allocation
	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		var err error
		allocs, err = uc.ApplyInTx(ctx, stockRepo, productRepo, dir, m, uc.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return allocs, nil
}

// ApplyInTx valida el producto y despacha el movimiento a la estrategia de su política,
// usando los repositorios del caller (misma transacción). Si retorna error el caller debe
// hacer rollback; las estrategias no escriben nada antes de validar.
func (uc *LedgerUseCase) ApplyInTx(
	ctx context.Context,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	dir dominventory.Direction,
	m dominventory.Movement,
	now time.Time,
) (allocs []entity.Allocation, err error) {
	policy := "UNKNOWN"
	defer func() {
		uc.recorder.ObserveMovement(dir.String(), policy, err)
		if err != nil {
			ev := uc.log.Warn()
			if !IsLedgerError(err) {
				ev = uc.log.Error()
			}
			ev.Err(err).
				Str("direction", dir.String()).
				Str("product_id", m.ProductID).
				Str("warehouse_id", m.WarehouseID).
				Int64("quantity", m.Quantity).
				Msg("movimiento de inventario rechazado")
			return
		}
		uc.log.Debug().
			Str("direction", dir.String()).
			Str("product_id", m.ProductID).
			Str("warehouse_id", m.WarehouseID).
			Int64("quantity", m.Quantity).
			Int("records", len(allocs)).
			Msg("movimiento de inventario aplicado")
	}()

	if m.ProductID == "" || m.WarehouseID == "" {
		return nil, fmt.Errorf("product_id y warehouse_id son obligatorios: %w", domain.ErrValidation)
	}
	if m.Quantity <= 0 {
		return nil, fmt.Errorf("cantidad %d debe ser positiva: %w", m.Quantity, domain.ErrValidation)
	}

	product, err := productRepo.GetByID(ctx, m.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("producto %s: %w", m.ProductID, domain.ErrNotFound)
	}
	policy = string(product.TrackingPolicy)
	if product.IsVariantParent {
		return nil, fmt.Errorf("el producto %s es padre de variantes y no maneja stock: %w", m.ProductID, domain.ErrInvalidOperation)
	}

	return dominventory.StrategyFor(product.TrackingPolicy).Apply(ctx, stockRepo, dir, m, now)
}

// CheckAvailability suma la cantidad de todos los registros del producto en la bodega,
// sin importar el discriminador. Lectura pura; 0 si no hay registros.
func (uc *LedgerUseCase) CheckAvailability(ctx context.Context, productID, warehouseID string) (int64, error) {
	records, err := uc.stockRepo.List(ctx, productID, warehouseID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, r := range records {
		total += r.Quantity
	}
	return total, nil
}

// ListStock lista registros filtrando por producto y/o bodega.
func (uc *LedgerUseCase) ListStock(ctx context.Context, productID, warehouseID string) ([]*entity.StockRecord, error) {
	return uc.stockRepo.List(ctx, productID, warehouseID)
}

// IsLedgerError indica si err pertenece a la taxonomía de errores del libro (no de infraestructura).
func IsLedgerError(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound, domain.ErrInvalidOperation, domain.ErrValidation,
		domain.ErrInsufficientStock, domain.ErrInsufficientLotStock,
		domain.ErrDuplicateSerial, domain.ErrSerialNotFound, domain.ErrSerialDepleted,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
