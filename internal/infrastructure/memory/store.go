// Package memory implementa los puertos de persistencia en memoria (modo dev y tests).
// Las transacciones se serializan con un único mutex y se revierten restaurando una copia
// del estado tomada al iniciar.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-inventario/internal/application/documents"
	"github.com/jhoicas/erp-inventario/internal/application/inventory"
	"github.com/jhoicas/erp-inventario/internal/domain"
	"github.com/jhoicas/erp-inventario/internal/domain/entity"
	"github.com/jhoicas/erp-inventario/internal/domain/repository"
)

var (
	_ inventory.TxRunner             = (*Store)(nil)
	_ documents.DocumentTxRunner     = (*Store)(nil)
	_ repository.StockRepository     = (*StockRepo)(nil)
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.DocumentRepository  = (*DocumentRepo)(nil)
)

// Store estado completo en memoria.
type Store struct {
	mu         sync.Mutex
	stock      map[string]entity.StockRecord // por ID
	products   map[string]entity.Product
	warehouses map[string]entity.Warehouse
	docs       map[string]*entity.Document

	onCommit CommitHook
}

// CommitHook recibe el estado resultante de cada transacción exitosa antes de liberar el mutex.
// Si devuelve error la transacción se revierte como si fn hubiera fallado.
type CommitHook func(ctx context.Context, snap Snapshot) error

// SetCommitHook instala el hook de confirmación (nil lo desactiva).
func (s *Store) SetCommitHook(h CommitHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCommit = h
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{
		stock:      make(map[string]entity.StockRecord),
		products:   make(map[string]entity.Product),
		warehouses: make(map[string]entity.Warehouse),
		docs:       make(map[string]*entity.Document),
	}
}

// PutProduct registra o reemplaza un producto del catálogo.
func (s *Store) PutProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// PutWarehouse registra o reemplaza una bodega.
func (s *Store) PutWarehouse(w entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warehouses[w.ID] = w
}

// Stock repositorio para lecturas fuera de transacción (toma el mutex en cada llamada).
func (s *Store) Stock() *StockRepo { return &StockRepo{s: s, locked: true} }

// Products catálogo para lecturas fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s, locked: true} }

// Warehouses bodegas para lecturas fuera de transacción.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{s: s, locked: true} }

// Documents documentos para lecturas fuera de transacción.
func (s *Store) Documents() *DocumentRepo { return &DocumentRepo{s: s, locked: true} }

// Run ejecuta fn con el mutex tomado; si fn falla restaura el estado previo.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	return s.tx(ctx, func() error {
		return fn(&StockRepo{s: s}, &ProductRepo{s: s})
	})
}

// RunDocuments igual que Run incluyendo el repositorio de documentos.
func (s *Store) RunDocuments(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	documentRepo repository.DocumentRepository,
) error) error {
	return s.tx(ctx, func() error {
		return fn(&StockRepo{s: s}, &ProductRepo{s: s}, &DocumentRepo{s: s})
	})
}

func (s *Store) tx(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stockSnap := make(map[string]entity.StockRecord, len(s.stock))
	for k, v := range s.stock {
		stockSnap[k] = v
	}
	docSnap := make(map[string]*entity.Document, len(s.docs))
	for k, v := range s.docs {
		docSnap[k] = cloneDocument(v)
	}

	err := fn()
	if err == nil && s.onCommit != nil {
		err = s.onCommit(ctx, s.exportLocked())
	}
	if err != nil {
		s.stock = stockSnap
		s.docs = docSnap
		return err
	}
	return nil
}

func (s *Store) guard(locked bool) func() {
	if !locked {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// StockRepo implementación de StockRepository en memoria.
type StockRepo struct {
	s      *Store
	locked bool
}

func (r *StockRepo) find(key entity.StockKey) *entity.StockRecord {
	for _, rec := range r.s.stock {
		if rec.Key() == key {
			out := rec
			return &out
		}
	}
	return nil
}

// FindForUpdate en memoria no bloquea por registro: la transacción ya tiene el mutex.
func (r *StockRepo) FindForUpdate(_ context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	defer r.s.guard(r.locked)()
	return r.find(key), nil
}

func (r *StockRepo) FindSerial(_ context.Context, serial string) (*entity.StockRecord, error) {
	defer r.s.guard(r.locked)()
	return r.findSerial(serial), nil
}

func (r *StockRepo) findSerial(serial string) *entity.StockRecord {
	for _, rec := range r.s.stock {
		if rec.Discriminator.Kind == entity.DiscriminatorSerial && rec.Discriminator.Value == serial {
			out := rec
			return &out
		}
	}
	return nil
}

func (r *StockRepo) ListBatchesForUpdate(_ context.Context, productID, warehouseID string) ([]*entity.StockRecord, error) {
	defer r.s.guard(r.locked)()
	var out []*entity.StockRecord
	for _, rec := range r.s.stock {
		if rec.ProductID == productID && rec.WarehouseID == warehouseID &&
			rec.Discriminator.Kind == entity.DiscriminatorExpiration {
			c := rec
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Discriminator.Value < out[j].Discriminator.Value })
	return out, nil
}

func (r *StockRepo) List(_ context.Context, productID, warehouseID string) ([]*entity.StockRecord, error) {
	defer r.s.guard(r.locked)()
	var out []*entity.StockRecord
	for _, rec := range r.s.stock {
		if productID != "" && rec.ProductID != productID {
			continue
		}
		if warehouseID != "" && rec.WarehouseID != warehouseID {
			continue
		}
		c := rec
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		if a.WarehouseID != b.WarehouseID {
			return a.WarehouseID < b.WarehouseID
		}
		return a.Discriminator.String() < b.Discriminator.String()
	})
	return out, nil
}

// Upsert usa la llave (producto, bodega, discriminador) como restricción única.
func (r *StockRepo) Upsert(_ context.Context, rec *entity.StockRecord) error {
	defer r.s.guard(r.locked)()
	existing := r.find(rec.Key())
	switch {
	case existing == nil && rec.Version != 0:
		return fmt.Errorf("stock %s eliminado por otra transacción: %w", rec.Key().Discriminator, domain.ErrConflict)
	case existing != nil && rec.Version == 0:
		if rec.Discriminator.Kind == entity.DiscriminatorSerial {
			return fmt.Errorf("serie %s: %w", rec.Discriminator.Value, domain.ErrDuplicateSerial)
		}
		rec.Quantity += existing.Quantity
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
		rec.Version = existing.Version
	case existing != nil:
		if existing.Version != rec.Version {
			return fmt.Errorf("stock %s versión %d, esperada %d: %w",
				rec.Discriminator, existing.Version, rec.Version, domain.ErrConflict)
		}
		rec.ID = existing.ID
	}
	// Igual que el índice único parcial de PostgreSQL: un serial existe una vez en todo el inventario.
	if rec.Discriminator.Kind == entity.DiscriminatorSerial && existing == nil && r.findSerial(rec.Discriminator.Value) != nil {
		return fmt.Errorf("serie %s: %w", rec.Discriminator.Value, domain.ErrDuplicateSerial)
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.Version++
	r.s.stock[rec.ID] = *rec
	return nil
}

func (r *StockRepo) Delete(_ context.Context, id string) error {
	defer r.s.guard(r.locked)()
	delete(r.s.stock, id)
	return nil
}

// ProductRepo catálogo en memoria.
type ProductRepo struct {
	s      *Store
	locked bool
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.s.guard(r.locked)()
	p, ok := r.s.products[id]
	if !ok || p.DeletedAt != nil {
		return nil, nil
	}
	return &p, nil
}

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct {
	s      *Store
	locked bool
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	defer r.s.guard(r.locked)()
	w, ok := r.s.warehouses[id]
	if !ok || w.DeletedAt != nil {
		return nil, nil
	}
	return &w, nil
}
