package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-inventario/internal/domain"
	"github.com/jhoicas/erp-inventario/internal/domain/entity"
	"github.com/jhoicas/erp-inventario/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

const documentColumns = `
	id, kind, status, warehouse_id, partner_id, document_date, currency,
	payment_type, invoice_number, comment, total_amount, total_quantity,
	created_by, created_at, updated_at, confirmed_by, confirmed_at,
	cancelled_by, cancelled_at, cancellation_reason, deleted_at`

// DocumentRepo ventas y recepciones de compra (tablas documents + document_items). Usable con pool o tx.
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// Create persiste cabecera y líneas.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, string(doc.Kind), string(doc.Status), doc.WarehouseID, nullIfEmpty(doc.PartnerID),
		doc.DocumentDate, nullIfEmpty(doc.Currency), nullIfEmpty(doc.PaymentType),
		nullIfEmpty(doc.InvoiceNumber), nullIfEmpty(doc.Comment), doc.TotalAmount, doc.TotalQuantity,
		doc.CreatedBy, doc.CreatedAt, doc.UpdatedAt, nullIfEmpty(doc.ConfirmedBy), doc.ConfirmedAt,
		nullIfEmpty(doc.CancelledBy), doc.CancelledAt, nullIfEmpty(doc.CancellationReason), doc.DeletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("document %s: %w", doc.ID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return r.insertItems(ctx, doc)
}

// Save actualiza la cabecera y reemplaza las líneas.
func (r *DocumentRepo) Save(ctx context.Context, doc *entity.Document) error {
	query := `
		UPDATE documents
		SET status = $2, warehouse_id = $3, partner_id = $4, document_date = $5, currency = $6,
		    payment_type = $7, invoice_number = $8, comment = $9, total_amount = $10, total_quantity = $11,
		    updated_at = $12, confirmed_by = $13, confirmed_at = $14, cancelled_by = $15,
		    cancelled_at = $16, cancellation_reason = $17, deleted_at = $18
		WHERE id = $1 AND kind = $19`
	cmd, err := r.q.Exec(ctx, query,
		doc.ID, string(doc.Status), doc.WarehouseID, nullIfEmpty(doc.PartnerID), doc.DocumentDate,
		nullIfEmpty(doc.Currency), nullIfEmpty(doc.PaymentType), nullIfEmpty(doc.InvoiceNumber),
		nullIfEmpty(doc.Comment), doc.TotalAmount, doc.TotalQuantity, doc.UpdatedAt,
		nullIfEmpty(doc.ConfirmedBy), doc.ConfirmedAt, nullIfEmpty(doc.CancelledBy), doc.CancelledAt,
		nullIfEmpty(doc.CancellationReason), doc.DeletedAt, string(doc.Kind),
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM document_items WHERE document_id = $1`, doc.ID); err != nil {
		return fmt.Errorf("delete document items: %w", err)
	}
	return r.insertItems(ctx, doc)
}

func (r *DocumentRepo) insertItems(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO document_items (id, document_id, line_no, product_id, quantity, unit_price, line_total,
		                            serial_numbers, lot_code, expiration_date, allocations)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	for i := range doc.Items {
		it := &doc.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		serials := it.SerialNumbers
		if serials == nil {
			serials = []string{}
		}
		allocations, err := json.Marshal(it.Allocations)
		if err != nil {
			return fmt.Errorf("marshal allocations: %w", err)
		}
		_, err = r.q.Exec(ctx, query,
			it.ID, doc.ID, i+1, it.ProductID, it.Quantity, it.UnitPrice, it.LineTotal,
			serials, nullIfEmpty(it.LotCode), it.ExpirationDate, allocations,
		)
		if err != nil {
			return fmt.Errorf("insert document item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene el documento completo, incluidos los eliminados lógicamente.
func (r *DocumentRepo) GetByID(ctx context.Context, kind entity.DocumentKind, id string) (*entity.Document, error) {
	return r.get(ctx, kind, id, false)
}

// GetForUpdate bloquea la cabecera (SELECT FOR UPDATE) hasta el fin de la transacción.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, kind entity.DocumentKind, id string) (*entity.Document, error) {
	return r.get(ctx, kind, id, true)
}

func (r *DocumentRepo) get(ctx context.Context, kind entity.DocumentKind, id string, lock bool) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND kind = $2`
	if lock {
		query += ` FOR UPDATE`
	}
	doc, err := scanDocument(r.q.QueryRow(ctx, query, id, string(kind)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	if doc.Items, err = r.items(ctx, doc.ID); err != nil {
		return nil, err
	}
	return doc, nil
}

// List devuelve documentos activos, más recientes primero. Las líneas se cargan por documento.
func (r *DocumentRepo) List(ctx context.Context, kind entity.DocumentKind, f repository.DocumentFilter) ([]*entity.Document, error) {
	query := `SELECT ` + documentColumns + `
		FROM documents
		WHERE kind = $1 AND deleted_at IS NULL
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR warehouse_id = $3)
		  AND ($4 = '' OR partner_id = $4)
		ORDER BY created_at DESC, id
		LIMIT $5 OFFSET $6`
	rows, err := r.q.Query(ctx, query, string(kind), string(f.Status), f.WarehouseID, f.PartnerID, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	var list []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan document: %w", err)
		}
		list = append(list, doc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, doc := range list {
		if doc.Items, err = r.items(ctx, doc.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *DocumentRepo) items(ctx context.Context, documentID string) ([]entity.DocumentItem, error) {
	query := `
		SELECT id, product_id, quantity, unit_price, line_total, serial_numbers,
		       lot_code, expiration_date, allocations
		FROM document_items WHERE document_id = $1 ORDER BY line_no`
	rows, err := r.q.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document items: %w", err)
	}
	defer rows.Close()
	var items []entity.DocumentItem
	for rows.Next() {
		var it entity.DocumentItem
		var lot *string
		var exp *time.Time
		var allocations []byte
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.LineTotal,
			&it.SerialNumbers, &lot, &exp, &allocations); err != nil {
			return nil, fmt.Errorf("scan document item: %w", err)
		}
		it.LotCode = derefStr(lot)
		it.ExpirationDate = exp
		if len(allocations) > 0 {
			if err := json.Unmarshal(allocations, &it.Allocations); err != nil {
				return nil, fmt.Errorf("unmarshal allocations: %w", err)
			}
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var d entity.Document
	var kind, status string
	var partner, currency, payment, invoiceNumber, comment, confirmedBy, cancelledBy, reason *string
	err := row.Scan(
		&d.ID, &kind, &status, &d.WarehouseID, &partner, &d.DocumentDate, &currency,
		&payment, &invoiceNumber, &comment, &d.TotalAmount, &d.TotalQuantity,
		&d.CreatedBy, &d.CreatedAt, &d.UpdatedAt, &confirmedBy, &d.ConfirmedAt,
		&cancelledBy, &d.CancelledAt, &reason, &d.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Kind = entity.DocumentKind(kind)
	d.Status = entity.DocumentStatus(status)
	d.PartnerID = derefStr(partner)
	d.Currency = derefStr(currency)
	d.PaymentType = derefStr(payment)
	d.InvoiceNumber = derefStr(invoiceNumber)
	d.Comment = derefStr(comment)
	d.ConfirmedBy = derefStr(confirmedBy)
	d.CancelledBy = derefStr(cancelledBy)
	d.CancellationReason = derefStr(reason)
	return &d, nil
}
