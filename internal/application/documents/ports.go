package documents

import (
	"context"
	"time"

	"github.com/jhoicas/erp-inventario/internal/domain/entity"
	dominventory "github.com/jhoicas/erp-inventario/internal/domain/inventory"
	"github.com/jhoicas/erp-inventario/internal/domain/repository"
)

// DocumentTxRunner ejecuta una función dentro de una transacción que incluye repos de inventario y documentos.
type DocumentTxRunner interface {
	RunDocuments(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		documentRepo repository.DocumentRepository,
	) error) error
}

// Ledger interfaz para integrar documentos con el libro de inventario.
// ApplyInTx aplica un movimiento usando los repositorios del caller (misma transacción).
// Si retorna error, el caller debe hacer rollback.
type Ledger interface {
	ApplyInTx(
		ctx context.Context,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		dir dominventory.Direction,
		m dominventory.Movement,
		now time.Time,
	) ([]entity.Allocation, error)
}

// EventPublisher publica eventos de transición después del Commit.
type EventPublisher interface {
	Publish(ctx context.Context, evt DocumentEvent) error
}

// Recorder registra métricas de transiciones.
type Recorder interface {
	ObserveTransition(kind, transition string, err error)
}

// PDFGenerator genera la representación impresa de un documento.
type PDFGenerator interface {
	GenerateDocumentPDF(ctx context.Context, doc *entity.Document, warehouse *entity.Warehouse, products map[string]*entity.Product) ([]byte, error)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, DocumentEvent) error { return nil }

type nopRecorder struct{}

func (nopRecorder) ObserveTransition(string, string, error) {}
