package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Errores del libro de inventario y del ciclo de vida de documentos.
// Los casos de uso los envuelven con fmt.Errorf("...: %w", ...) para dar contexto;
// los llamadores comparan con errors.Is.
var (
	ErrInvalidOperation     = errors.New("operación inválida")
	ErrValidation           = errors.New("datos de seguimiento inválidos")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrInsufficientLotStock = errors.New("stock insuficiente en el lote")
	ErrDuplicateSerial      = errors.New("número de serie duplicado")
	ErrSerialNotFound       = errors.New("número de serie no encontrado")
	ErrSerialDepleted       = errors.New("número de serie agotado")
	ErrInvalidState         = errors.New("estado del documento inválido para la operación")
	ErrAlreadyCancelled     = errors.New("el documento ya está anulado")
)
