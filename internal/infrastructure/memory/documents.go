package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/erp-inventario/internal/domain/entity"
	"github.com/jhoicas/erp-inventario/internal/domain/repository"
)

// DocumentRepo documentos en memoria. Guarda copias para que el caller no mute el estado sin Save.
type DocumentRepo struct {
	s      *Store
	locked bool
}

func (r *DocumentRepo) Create(_ context.Context, doc *entity.Document) error {
	defer r.s.guard(r.locked)()
	r.s.docs[doc.ID] = cloneDocument(doc)
	return nil
}

func (r *DocumentRepo) Save(_ context.Context, doc *entity.Document) error {
	defer r.s.guard(r.locked)()
	r.s.docs[doc.ID] = cloneDocument(doc)
	return nil
}

func (r *DocumentRepo) GetByID(_ context.Context, kind entity.DocumentKind, id string) (*entity.Document, error) {
	defer r.s.guard(r.locked)()
	doc, ok := r.s.docs[id]
	if !ok || doc.Kind != kind {
		return nil, nil
	}
	return cloneDocument(doc), nil
}

// GetForUpdate en memoria equivale a GetByID: la transacción ya tiene el mutex.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, kind entity.DocumentKind, id string) (*entity.Document, error) {
	return r.GetByID(ctx, kind, id)
}

func (r *DocumentRepo) List(_ context.Context, kind entity.DocumentKind, f repository.DocumentFilter) ([]*entity.Document, error) {
	defer r.s.guard(r.locked)()
	var out []*entity.Document
	for _, doc := range r.s.docs {
		if doc.Kind != kind || doc.IsDeleted() {
			continue
		}
		if f.Status != "" && doc.Status != f.Status {
			continue
		}
		if f.WarehouseID != "" && doc.WarehouseID != f.WarehouseID {
			continue
		}
		if f.PartnerID != "" && doc.PartnerID != f.PartnerID {
			continue
		}
		out = append(out, cloneDocument(doc))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Offset >= len(out) {
		return []*entity.Document{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func cloneDocument(d *entity.Document) *entity.Document {
	if d == nil {
		return nil
	}
	c := *d
	c.ConfirmedAt = cloneTime(d.ConfirmedAt)
	c.CancelledAt = cloneTime(d.CancelledAt)
	c.DeletedAt = cloneTime(d.DeletedAt)
	c.Items = make([]entity.DocumentItem, len(d.Items))
	for i, it := range d.Items {
		it.SerialNumbers = append([]string(nil), it.SerialNumbers...)
		it.Allocations = append([]entity.Allocation(nil), it.Allocations...)
		it.ExpirationDate = cloneTime(it.ExpirationDate)
		c.Items[i] = it
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
