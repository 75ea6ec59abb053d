package entity

import (
	"strings"

	"github.com/jhoicas/erp-inventario/internal/domain"
)

// ActorID identificador opaco del usuario que ejecuta una transición.
// El núcleo no asume ningún formato; solo exige que no esté vacío.
type ActorID string

// NewActorID valida y construye el identificador.
func NewActorID(s string) (ActorID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", domain.ErrInvalidInput
	}
	return ActorID(s), nil
}

func (a ActorID) String() string { return string(a) }
