package repository

import (
	"context"

	"github.com/jhoicas/erp-inventario/internal/domain/entity"
)

// DocumentFilter filtros para listar documentos.
type DocumentFilter struct {
	Status      entity.DocumentStatus
	WarehouseID string
	PartnerID   string
	Limit       int
	Offset      int
}

// DocumentRepository puerto de persistencia de ventas y recepciones de compra (cabecera + líneas).
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	// Save reemplaza cabecera y líneas del documento.
	Save(ctx context.Context, doc *entity.Document) error
	// GetByID devuelve nil, nil si no existe; incluye documentos eliminados lógicamente.
	GetByID(ctx context.Context, kind entity.DocumentKind, id string) (*entity.Document, error)
	// GetForUpdate igual que GetByID pero bloquea el documento hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, kind entity.DocumentKind, id string) (*entity.Document, error)
	// List excluye documentos eliminados.
	List(ctx context.Context, kind entity.DocumentKind, f DocumentFilter) ([]*entity.Document, error)
}
