package memory

import "github.com/jhoicas/erp-inventario/internal/domain/entity"

// Snapshot copia serializable del estado completo del store.
type Snapshot struct {
	Stock      []entity.StockRecord `json:"stock"`
	Products   []entity.Product     `json:"products"`
	Warehouses []entity.Warehouse   `json:"warehouses"`
	Documents  []*entity.Document   `json:"documents"`
}

// ExportState devuelve una copia profunda del estado.
func (s *Store) ExportState() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exportLocked()
}

func (s *Store) exportLocked() Snapshot {
	snap := Snapshot{}
	for _, v := range s.stock {
		snap.Stock = append(snap.Stock, v)
	}
	for _, v := range s.products {
		snap.Products = append(snap.Products, v)
	}
	for _, v := range s.warehouses {
		snap.Warehouses = append(snap.Warehouses, v)
	}
	for _, v := range s.docs {
		snap.Documents = append(snap.Documents, cloneDocument(v))
	}
	return snap
}

// ImportState reemplaza el estado actual por el del snapshot.
func (s *Store) ImportState(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock = make(map[string]entity.StockRecord, len(snap.Stock))
	for _, v := range snap.Stock {
		s.stock[v.ID] = v
	}
	s.products = make(map[string]entity.Product, len(snap.Products))
	for _, v := range snap.Products {
		s.products[v.ID] = v
	}
	s.warehouses = make(map[string]entity.Warehouse, len(snap.Warehouses))
	for _, v := range snap.Warehouses {
		s.warehouses[v.ID] = v
	}
	s.docs = make(map[string]*entity.Document, len(snap.Documents))
	for _, v := range snap.Documents {
		s.docs[v.ID] = cloneDocument(v)
	}
}
