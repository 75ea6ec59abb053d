// Package sqlite persiste el store en memoria en un archivo SQLite (driver puro Go) como blobs JSON.
// Cada transacción guarda una foto completa del estado antes de confirmarse; si la escritura
// falla, la transacción completa se revierte.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // driver sqlite puro Go

	"github.com/jhoicas/erp-inventario/internal/application/documents"
	"github.com/jhoicas/erp-inventario/internal/application/inventory"
	"github.com/jhoicas/erp-inventario/internal/domain/entity"
	"github.com/jhoicas/erp-inventario/internal/domain/repository"
	"github.com/jhoicas/erp-inventario/internal/infrastructure/memory"
)

var (
	_ inventory.TxRunner         = (*Store)(nil)
	_ documents.DocumentTxRunner = (*Store)(nil)
)

var buckets = []string{"stock", "products", "warehouses", "documents"}

// Store store en memoria respaldado por una tabla SQLite.
type Store struct {
	*memory.Store
	db   *sql.DB
	path string
}

// NewStore abre (o crea) la base en path y carga el último estado guardado.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "inventario.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path}
	if err := s.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.SetCommitHook(s.persist)
	return s, nil
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	snapshot := memory.Snapshot{}
	found := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		found = true
		var target any
		switch bucket {
		case "stock":
			target = &snapshot.Stock
		case "products":
			target = &snapshot.Products
		case "warehouses":
			target = &snapshot.Warehouses
		case "documents":
			target = &snapshot.Documents
		default:
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			return fmt.Errorf("decode %s: %w", bucket, err)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if found {
		s.ImportState(snapshot)
	}
	return nil
}

// persist escribe el snapshot en una transacción SQLite. Corre como hook de confirmación del
// store en memoria, con su mutex tomado: si falla, la transacción en memoria también se revierte.
func (s *Store) persist(ctx context.Context, snapshot memory.Snapshot) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sqlite: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range buckets {
		var data []byte
		switch bucket {
		case "stock":
			data, err = json.Marshal(snapshot.Stock)
		case "products":
			data, err = json.Marshal(snapshot.Products)
		case "warehouses":
			data, err = json.Marshal(snapshot.Warehouses)
		case "documents":
			data, err = json.Marshal(snapshot.Documents)
		}
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	return tx.Commit()
}

// flush persiste el estado actual pasando por una transacción vacía del store en memoria.
func (s *Store) flush(ctx context.Context) error {
	return s.Store.Run(ctx, func(repository.StockRepository, repository.ProductRepository) error {
		return nil
	})
}

// SaveProduct registra un producto del catálogo y lo persiste.
func (s *Store) SaveProduct(ctx context.Context, p entity.Product) error {
	s.PutProduct(p)
	return s.flush(ctx)
}

// SaveWarehouse registra una bodega y la persiste.
func (s *Store) SaveWarehouse(ctx context.Context, w entity.Warehouse) error {
	s.PutWarehouse(w)
	return s.flush(ctx)
}

// SaveCatalog registra un catálogo completo con una sola escritura.
func (s *Store) SaveCatalog(ctx context.Context, c *memory.Catalog) error {
	c.Apply(s.Store)
	return s.flush(ctx)
}

// Close cierra la base de datos.
func (s *Store) Close() error { return s.db.Close() }

// Path ruta del archivo configurado.
func (s *Store) Path() string { return s.path }
