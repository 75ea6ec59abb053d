package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-inventario/internal/application/documents"
	"github.com/jhoicas/erp-inventario/internal/application/inventory"
	"github.com/jhoicas/erp-inventario/internal/domain/repository"
	"github.com/jhoicas/erp-inventario/internal/infrastructure/memory"
	"github.com/jhoicas/erp-inventario/internal/infrastructure/postgres"
	"github.com/jhoicas/erp-inventario/internal/infrastructure/sqlite"
	"github.com/jhoicas/erp-inventario/pkg/config"
	"github.com/jhoicas/erp-inventario/pkg/logger"
)

type txRunner interface {
	inventory.TxRunner
	documents.DocumentTxRunner
}

// backend repositorios y TxRunner del driver elegido en STORE_DRIVER.
type backend struct {
	tx         txRunner
	stock      repository.StockRepository
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	documents  repository.DocumentRepository
	close      func()
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.DB.AutoMigrate {
			if err := postgres.EnsureSchema(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("crear esquema: %w", err)
			}
			log.Info().Msg("esquema verificado")
		}
		return &backend{
			tx:         postgres.NewTxRunner(pool),
			stock:      postgres.NewStockRepository(pool),
			products:   postgres.NewProductRepository(pool),
			warehouses: postgres.NewWarehouseRepository(pool),
			documents:  postgres.NewDocumentRepository(pool),
			close:      pool.Close,
		}, nil

	case config.StoreDriverSQLite:
		store, err := sqlite.NewStore(cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("abrir sqlite: %w", err)
		}
		if cfg.Store.SeedPath != "" {
			catalog, err := memory.ReadCatalog(cfg.Store.SeedPath)
			if err != nil {
				_ = store.Close()
				return nil, err
			}
			if err := store.SaveCatalog(ctx, catalog); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("guardar catálogo: %w", err)
			}
		}
		log.Info().Str("path", store.Path()).Msg("store sqlite abierto")
		return &backend{
			tx:         store,
			stock:      store.Stock(),
			products:   store.Products(),
			warehouses: store.Warehouses(),
			documents:  store.Documents(),
			close: func() {
				if err := store.Close(); err != nil {
					log.Error().Err(err).Msg("cerrar sqlite")
				}
			},
		}, nil

	default:
		store := memory.NewStore()
		if cfg.Store.SeedPath != "" {
			catalog, err := memory.ReadCatalog(cfg.Store.SeedPath)
			if err != nil {
				return nil, err
			}
			catalog.Apply(store)
		}
		log.Warn().Msg("store en memoria: el estado se pierde al reiniciar")
		return &backend{
			tx:         store,
			stock:      store.Stock(),
			products:   store.Products(),
			warehouses: store.Warehouses(),
			documents:  store.Documents(),
			close:      func() {},
		}, nil
	}
}
