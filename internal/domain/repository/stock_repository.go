package repository

import (
	"context"

	"github.com/jhoicas/erp-inventario/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar registros de stock.
// Usado dentro de transacciones (TxRunner) para garantizar consistencia: las lecturas
// "ForUpdate" bloquean los registros hasta el Commit/Rollback.
type StockRepository interface {
	// FindForUpdate devuelve el registro de la llave bloqueado, o nil si no existe.
	FindForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error)
	// FindSerial busca un número de serie en cualquier producto o bodega (nil si no existe).
	FindSerial(ctx context.Context, serial string) (*entity.StockRecord, error)
	// ListBatchesForUpdate devuelve los lotes por vencimiento ordenados ascendentemente, bloqueados.
	ListBatchesForUpdate(ctx context.Context, productID, warehouseID string) ([]*entity.StockRecord, error)
	// List filtra por producto y/o bodega (vacío = sin filtro).
	List(ctx context.Context, productID, warehouseID string) ([]*entity.StockRecord, error)
	// Upsert persiste el registro según su Version:
	//   - Version 0 (no leído de la base): inserta; si otra transacción creó la misma llave
	//     en paralelo, suma la cantidad a la existente. Un serial ya existente es ErrDuplicateSerial.
	//   - Version > 0: actualiza solo si la versión almacenada coincide; si no, ErrConflict.
	// Asigna ID, Version y marcas de tiempo en rec.
	Upsert(ctx context.Context, rec *entity.StockRecord) error
	Delete(ctx context.Context, id string) error
}
