package memory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jhoicas/erp-inventario/internal/domain/entity"
)

// Catalog productos y bodegas de arranque para los drivers memory y sqlite,
// donde no existe un catálogo externo que consultar.
type Catalog struct {
	Warehouses []entity.Warehouse
	Products   []entity.Product
}

type catalogFile struct {
	Warehouses []struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"warehouses"`
	Products []struct {
		ID              string `json:"id"`
		SKU             string `json:"sku"`
		Name            string `json:"name"`
		UnitMeasure     string `json:"unit_measure"`
		TrackingPolicy  string `json:"tracking_policy"`
		IsVariantParent bool   `json:"is_variant_parent"`
		ParentID        string `json:"parent_id"`
	} `json:"products"`
}

// ReadCatalog lee un archivo JSON {"warehouses": [...], "products": [...]}.
func ReadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer catálogo: %w", err)
	}
	var f catalogFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decodificar catálogo %s: %w", path, err)
	}
	c := &Catalog{}
	for _, w := range f.Warehouses {
		if w.ID == "" {
			return nil, fmt.Errorf("bodega sin id en %s", path)
		}
		c.Warehouses = append(c.Warehouses, entity.Warehouse{ID: w.ID, Name: w.Name, Address: w.Address})
	}
	for _, p := range f.Products {
		policy := entity.TrackingPolicy(p.TrackingPolicy)
		if policy == "" {
			policy = entity.TrackingSimple
		}
		if p.ID == "" || !policy.IsValid() {
			return nil, fmt.Errorf("producto inválido %q (política %q) en %s", p.ID, p.TrackingPolicy, path)
		}
		c.Products = append(c.Products, entity.Product{
			ID:              p.ID,
			SKU:             p.SKU,
			Name:            p.Name,
			UnitMeasure:     p.UnitMeasure,
			TrackingPolicy:  policy,
			IsVariantParent: p.IsVariantParent,
			ParentID:        p.ParentID,
		})
	}
	return c, nil
}

// Apply registra el catálogo en el store.
func (c *Catalog) Apply(s *Store) {
	for _, w := range c.Warehouses {
		s.PutWarehouse(w)
	}
	for _, p := range c.Products {
		s.PutProduct(p)
	}
}
