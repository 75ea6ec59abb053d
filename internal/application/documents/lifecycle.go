// Package documents implementa el ciclo de vida DRAFT → CONFIRMED → CANCELLED compartido por
// ventas y recepciones de compra. La confirmación y la anulación aplican los movimientos de
// inventario de todas las líneas y el cambio de estado en una sola transacción.
package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-inventario/internal/domain"
	"github.com/jhoicas/erp-inventario/internal/domain/entity"
	dominventory "github.com/jhoicas/erp-inventario/internal/domain/inventory"
	"github.com/jhoicas/erp-inventario/internal/domain/repository"
)

// LifecycleUseCase gestiona un tipo de documento (según Flow).
type LifecycleUseCase struct {
	flow          Flow
	txRunner      DocumentTxRunner
	ledger        Ledger
	documentRepo  repository.DocumentRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	publisher     EventPublisher
	recorder      Recorder
	pdf           PDFGenerator
	log           zerolog.Logger
	now           func() time.Time
	newID         func() string
}

// Deps dependencias del caso de uso. Publisher, Recorder y PDF son opcionales.
type Deps struct {
	TxRunner      DocumentTxRunner
	Ledger        Ledger
	DocumentRepo  repository.DocumentRepository
	ProductRepo   repository.ProductRepository
	WarehouseRepo repository.WarehouseRepository
	Publisher     EventPublisher
	Recorder      Recorder
	PDF           PDFGenerator
	Logger        zerolog.Logger
	Now           func() time.Time
}

// NewLifecycleUseCase construye el caso de uso para el flujo indicado.
func NewLifecycleUseCase(flow Flow, deps Deps) *LifecycleUseCase {
	uc := &LifecycleUseCase{
		flow:          flow,
		txRunner:      deps.TxRunner,
		ledger:        deps.Ledger,
		documentRepo:  deps.DocumentRepo,
		productRepo:   deps.ProductRepo,
		warehouseRepo: deps.WarehouseRepo,
		publisher:     deps.Publisher,
		recorder:      deps.Recorder,
		pdf:           deps.PDF,
		log:           deps.Logger.With().Str("kind", string(flow.Kind)).Logger(),
		now:           deps.Now,
		newID:         func() string { return uuid.New().String() },
	}
	if uc.publisher == nil {
		uc.publisher = nopPublisher{}
	}
	if uc.recorder == nil {
		uc.recorder = nopRecorder{}
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc
}

// NewSalesUseCase ciclo de vida de ventas (confirmar = salida de stock).
func NewSalesUseCase(deps Deps) *LifecycleUseCase { return NewLifecycleUseCase(SaleFlow, deps) }

// NewPurchaseReceiptsUseCase ciclo de vida de recepciones de compra (confirmar = entrada de stock).
func NewPurchaseReceiptsUseCase(deps Deps) *LifecycleUseCase {
	return NewLifecycleUseCase(PurchaseReceiptFlow, deps)
}

// Flow devuelve el flujo configurado.
func (uc *LifecycleUseCase) Flow() Flow { return uc.flow }

// Create crea el documento en DRAFT calculando el total de cada línea y los totales agregados.
// No mueve inventario.
func (uc *LifecycleUseCase) Create(ctx context.Context, actor entity.ActorID, in CreateInput) (*entity.Document, error) {
	if actor == "" {
		return nil, domain.ErrInvalidInput
	}
	if strings.TrimSpace(in.WarehouseID) == "" {
		return nil, fmt.Errorf("warehouse_id obligatorio: %w", domain.ErrInvalidInput)
	}
	if err := uc.validateReferences(ctx, in.WarehouseID, in.Items); err != nil {
		return nil, err
	}

	now := uc.now()
	docDate := in.DocumentDate
	if docDate.IsZero() {
		docDate = now
	}
	doc := &entity.Document{
		ID:            uc.newID(),
		Kind:          uc.flow.Kind,
		Status:        entity.DocumentStatusDraft,
		WarehouseID:   in.WarehouseID,
		PartnerID:     in.PartnerID,
		DocumentDate:  docDate,
		Currency:      in.Currency,
		PaymentType:   in.PaymentType,
		InvoiceNumber: in.InvoiceNumber,
		Comment:       in.Comment,
		Items:         buildItems(in.Items, uc.newID),
		CreatedBy:     actor.String(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	doc.RecalculateTotals()

	err := uc.txRunner.RunDocuments(ctx, func(
		_ repository.StockRepository,
		_ repository.ProductRepository,
		documentRepo repository.DocumentRepository,
	) error {
		return documentRepo.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Get obtiene un documento no eliminado.
func (uc *LifecycleUseCase) Get(ctx context.Context, id string) (*entity.Document, error) {
	doc, err := uc.documentRepo.GetByID(ctx, uc.flow.Kind, id)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.IsDeleted() {
		return nil, fmt.Errorf("documento %s: %w", id, domain.ErrNotFound)
	}
	return doc, nil
}

// List lista documentos no eliminados.
func (uc *LifecycleUseCase) List(ctx context.Context, f repository.DocumentFilter) ([]*entity.Document, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return uc.documentRepo.List(ctx, uc.flow.Kind, f)
}

// Update modifica un borrador. Si se reemplazan las líneas se recalculan los totales.
func (uc *LifecycleUseCase) Update(ctx context.Context, id string, actor entity.ActorID, in UpdateInput) (*entity.Document, error) {
	if actor == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.WarehouseID != nil && strings.TrimSpace(*in.WarehouseID) == "" {
		return nil, fmt.Errorf("warehouse_id obligatorio: %w", domain.ErrInvalidInput)
	}
	var items []ItemInput
	if in.Items != nil {
		items = *in.Items
	}
	var warehouseID string
	if in.WarehouseID != nil {
		warehouseID = *in.WarehouseID
	}
	if err := uc.validateReferences(ctx, warehouseID, items); err != nil {
		return nil, err
	}

	var out *entity.Document
	err := uc.txRunner.RunDocuments(ctx, func(
		_ repository.StockRepository,
		_ repository.ProductRepository,
		documentRepo repository.DocumentRepository,
	) error {
		doc, err := uc.loadForUpdate(ctx, documentRepo, id)
		if err != nil {
			return err
		}
		if doc.Status != entity.DocumentStatusDraft {
			return uc.invalidState("actualizarse", doc.Status)
		}

		if in.WarehouseID != nil {
			doc.WarehouseID = warehouseID
		}
		if in.PartnerID != nil {
			doc.PartnerID = *in.PartnerID
		}
		if in.DocumentDate != nil {
			doc.DocumentDate = *in.DocumentDate
		}
		if in.Currency != nil {
			doc.Currency = *in.Currency
		}
		if in.PaymentType != nil {
			doc.PaymentType = *in.PaymentType
		}
		if in.InvoiceNumber != nil {
			doc.InvoiceNumber = *in.InvoiceNumber
		}
		if in.Comment != nil {
			doc.Comment = *in.Comment
		}
		if in.Items != nil {
			doc.Items = buildItems(items, uc.newID)
		}
		doc.RecalculateTotals()
		doc.UpdatedAt = uc.now()

		if err := documentRepo.Save(ctx, doc); err != nil {
			return err
		}
		out = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Confirm pasa un borrador a CONFIRMED aplicando, en orden, el movimiento del flujo a cada línea.
// Todos los movimientos y el cambio de estado se confirman juntos o no se aplica ninguno.
func (uc *LifecycleUseCase) Confirm(ctx context.Context, id string, actor entity.ActorID) (_ *entity.Document, err error) {
	defer func() { uc.recorder.ObserveTransition(string(uc.flow.Kind), "confirm", err) }()
	if actor == "" {
		return nil, domain.ErrInvalidInput
	}

	var out *entity.Document
	err = uc.txRunner.RunDocuments(ctx, func(
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		documentRepo repository.DocumentRepository,
	) error {
		doc, err := uc.loadForUpdate(ctx, documentRepo, id)
		if err != nil {
			return err
		}
		if doc.Status != entity.DocumentStatusDraft {
			return uc.invalidState("confirmarse", doc.Status)
		}
		if len(doc.Items) == 0 {
			return fmt.Errorf("el documento no tiene líneas: %w", domain.ErrInvalidInput)
		}

		now := uc.now()
		for i := range doc.Items {
			item := &doc.Items[i]
			allocs, err := uc.ledger.ApplyInTx(ctx, stockRepo, productRepo, uc.flow.OnConfirm, movementFor(doc, item), now)
			if err != nil {
				return fmt.Errorf("línea %d (producto %s): %w", i+1, item.ProductID, err)
			}
			item.Allocations = allocs
		}

		doc.Status = entity.DocumentStatusConfirmed
		doc.ConfirmedBy = actor.String()
		doc.ConfirmedAt = &now
		doc.UpdatedAt = now
		if err := documentRepo.Save(ctx, doc); err != nil {
			return err
		}
		out = doc
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("document_id", id).Msg("confirmación rechazada")
		return nil, err
	}

	uc.log.Info().Str("document_id", id).Str("actor", actor.String()).Msg("documento confirmado")
	uc.publish(ctx, out, EventDocumentConfirmed, uc.flow.OnConfirm)
	return out, nil
}

// Cancel anula el documento. Desde DRAFT no mueve inventario; desde CONFIRMED aplica el
// movimiento inverso de lo que se aplicó al confirmar. CANCELLED es terminal.
func (uc *LifecycleUseCase) Cancel(ctx context.Context, id string, actor entity.ActorID, reason string) (_ *entity.Document, err error) {
	defer func() { uc.recorder.ObserveTransition(string(uc.flow.Kind), "cancel", err) }()
	if actor == "" {
		return nil, domain.ErrInvalidInput
	}

	var out *entity.Document
	var moved bool
	err = uc.txRunner.RunDocuments(ctx, func(
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		documentRepo repository.DocumentRepository,
	) error {
		doc, err := uc.loadForUpdate(ctx, documentRepo, id)
		if err != nil {
			return err
		}
		now := uc.now()
		switch doc.Status {
		case entity.DocumentStatusCancelled:
			return fmt.Errorf("documento %s: %w", id, domain.ErrAlreadyCancelled)
		case entity.DocumentStatusConfirmed:
			if err := uc.reverse(ctx, stockRepo, productRepo, doc, now); err != nil {
				return err
			}
			moved = true
		case entity.DocumentStatusDraft:
		default:
			return uc.invalidState("anularse", doc.Status)
		}

		doc.Status = entity.DocumentStatusCancelled
		doc.CancelledBy = actor.String()
		doc.CancelledAt = &now
		doc.CancellationReason = reason
		doc.UpdatedAt = now
		if err := documentRepo.Save(ctx, doc); err != nil {
			return err
		}
		out = doc
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("document_id", id).Msg("anulación rechazada")
		return nil, err
	}

	uc.log.Info().Str("document_id", id).Str("actor", actor.String()).Bool("stock_reversed", moved).Msg("documento anulado")
	var dir dominventory.Direction
	if moved {
		dir = uc.flow.OnCancel()
	}
	uc.publish(ctx, out, EventDocumentCancelled, dir)
	return out, nil
}

// reverse aplica el movimiento inverso de cada línea. Si la línea tiene asignaciones se
// revierten exactamente esos registros (p. ej. los lotes consumidos por FIFO).
func (uc *LifecycleUseCase) reverse(
	ctx context.Context,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	doc *entity.Document,
	now time.Time,
) error {
	dir := uc.flow.OnCancel()
	for i := range doc.Items {
		item := &doc.Items[i]
		if len(item.Allocations) == 0 {
			if _, err := uc.ledger.ApplyInTx(ctx, stockRepo, productRepo, dir, movementFor(doc, item), now); err != nil {
				return fmt.Errorf("línea %d (producto %s): %w", i+1, item.ProductID, err)
			}
			continue
		}
		for _, a := range item.Allocations {
			m := dominventory.Movement{
				ProductID:   item.ProductID,
				WarehouseID: doc.WarehouseID,
				Quantity:    a.Quantity,
				Tracking:    dominventory.TrackingFromAllocation(a),
			}
			if _, err := uc.ledger.ApplyInTx(ctx, stockRepo, productRepo, dir, m, now); err != nil {
				return fmt.Errorf("línea %d (producto %s, %s): %w", i+1, item.ProductID, a.Discriminator, err)
			}
		}
	}
	return nil
}

// Remove elimina lógicamente un borrador (deleted_at). No mueve inventario.
func (uc *LifecycleUseCase) Remove(ctx context.Context, id string, actor entity.ActorID) error {
	if actor == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.RunDocuments(ctx, func(
		_ repository.StockRepository,
		_ repository.ProductRepository,
		documentRepo repository.DocumentRepository,
	) error {
		doc, err := uc.loadForUpdate(ctx, documentRepo, id)
		if err != nil {
			return err
		}
		if doc.Status != entity.DocumentStatusDraft {
			return uc.invalidState("eliminarse", doc.Status)
		}
		now := uc.now()
		doc.DeletedAt = &now
		doc.UpdatedAt = now
		return documentRepo.Save(ctx, doc)
	})
}

// RenderPDF genera la representación impresa del documento.
func (uc *LifecycleUseCase) RenderPDF(ctx context.Context, id string) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("generador PDF no configurado: %w", domain.ErrInvalidOperation)
	}
	doc, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// Bodega o producto dados de baja después de crear el documento se imprimen con su ID.
	var wh *entity.Warehouse
	if uc.warehouseRepo != nil {
		if wh, err = uc.warehouseRepo.GetByID(ctx, doc.WarehouseID); err != nil {
			return nil, fmt.Errorf("bodega %s: %w", doc.WarehouseID, err)
		}
	}
	products := make(map[string]*entity.Product, len(doc.Items))
	if uc.productRepo != nil {
		for _, it := range doc.Items {
			if _, ok := products[it.ProductID]; ok {
				continue
			}
			p, err := uc.productRepo.GetByID(ctx, it.ProductID)
			if err != nil {
				return nil, fmt.Errorf("producto %s: %w", it.ProductID, err)
			}
			if p != nil {
				products[it.ProductID] = p
			}
		}
	}
	return uc.pdf.GenerateDocumentPDF(ctx, doc, wh, products)
}

func (uc *LifecycleUseCase) loadForUpdate(ctx context.Context, documentRepo repository.DocumentRepository, id string) (*entity.Document, error) {
	doc, err := documentRepo.GetForUpdate(ctx, uc.flow.Kind, id)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.IsDeleted() {
		return nil, fmt.Errorf("documento %s: %w", id, domain.ErrNotFound)
	}
	return doc, nil
}

// validateReferences valida líneas y que bodega y productos existan. Solo lectura y fuera de
// transacción; warehouseID vacío omite la bodega.
func (uc *LifecycleUseCase) validateReferences(ctx context.Context, warehouseID string, items []ItemInput) error {
	for i, it := range items {
		if it.ProductID == "" || it.Quantity <= 0 || it.UnitPrice.IsNegative() {
			return fmt.Errorf("línea %d inválida: %w", i+1, domain.ErrInvalidInput)
		}
	}
	if warehouseID != "" && uc.warehouseRepo != nil {
		wh, err := uc.warehouseRepo.GetByID(ctx, warehouseID)
		if err != nil {
			return err
		}
		if wh == nil {
			return fmt.Errorf("bodega %s: %w", warehouseID, domain.ErrNotFound)
		}
	}
	if uc.productRepo != nil {
		for _, it := range items {
			p, err := uc.productRepo.GetByID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("producto %s: %w", it.ProductID, domain.ErrNotFound)
			}
		}
	}
	return nil
}

func (uc *LifecycleUseCase) invalidState(action string, status entity.DocumentStatus) error {
	return fmt.Errorf("solo %s en borrador pueden %s (estado actual %s): %w", uc.flow.label, action, status, domain.ErrInvalidState)
}

func (uc *LifecycleUseCase) publish(ctx context.Context, doc *entity.Document, eventType string, dir dominventory.Direction) {
	evt := DocumentEvent{
		Type:        eventType,
		Kind:        string(doc.Kind),
		DocumentID:  doc.ID,
		Status:      string(doc.Status),
		WarehouseID: doc.WarehouseID,
		Reason:      doc.CancellationReason,
		OccurredAt:  doc.UpdatedAt,
	}
	switch eventType {
	case EventDocumentConfirmed:
		evt.Actor = doc.ConfirmedBy
	case EventDocumentCancelled:
		evt.Actor = doc.CancelledBy
	}
	if dir != 0 {
		evt.Direction = dir.String()
		for _, it := range doc.Items {
			evt.Lines = append(evt.Lines, EventLine{ProductID: it.ProductID, Quantity: it.Quantity})
		}
	}
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		uc.log.Error().Err(err).Str("document_id", doc.ID).Str("event", eventType).Msg("publicar evento")
	}
}

func movementFor(doc *entity.Document, item *entity.DocumentItem) dominventory.Movement {
	return dominventory.Movement{
		ProductID:   item.ProductID,
		WarehouseID: doc.WarehouseID,
		Quantity:    item.Quantity,
		Tracking: dominventory.TrackingInfo{
			SerialNumbers:  item.SerialNumbers,
			LotCode:        item.LotCode,
			ExpirationDate: item.ExpirationDate,
		},
	}
}
