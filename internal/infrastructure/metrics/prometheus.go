// Package metrics expone contadores Prometheus para movimientos del ledger y transiciones de documentos.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/erp-inventario/internal/application/documents"
	"github.com/jhoicas/erp-inventario/internal/application/inventory"
	"github.com/jhoicas/erp-inventario/internal/domain"
)

var (
	_ inventory.Recorder = (*Recorder)(nil)
	_ documents.Recorder = (*Recorder)(nil)
)

// Recorder implementa los puertos de métricas de inventario y documentos.
type Recorder struct {
	registry    *prometheus.Registry
	movements   *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewRecorder registra los colectores en un registro propio (más los de proceso y runtime de Go).
func NewRecorder(namespace string) *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_total",
			Help:      "Movimientos de stock aplicados por dirección, política y resultado.",
		}, []string{"direction", "policy", "result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_transitions_total",
			Help:      "Transiciones de documentos por tipo, transición y resultado.",
		}, []string{"kind", "transition", "result"}),
	}
	reg.MustRegister(
		r.movements,
		r.transitions,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveMovement cuenta un movimiento del ledger.
func (r *Recorder) ObserveMovement(direction, policy string, err error) {
	r.movements.WithLabelValues(direction, policy, result(err)).Inc()
}

// ObserveTransition cuenta un confirm/cancel de documento.
func (r *Recorder) ObserveTransition(kind, transition string, err error) {
	r.transitions.WithLabelValues(kind, transition, result(err)).Inc()
}

// Registry registro usado por el handler (útil en tests).
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler handler HTTP de exposición de métricas.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// result clasifica el error en una etiqueta de baja cardinalidad.
func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrInsufficientLotStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidInput):
		return "validation"
	case errors.Is(err, domain.ErrSerialNotFound), errors.Is(err, domain.ErrSerialDepleted),
		errors.Is(err, domain.ErrDuplicateSerial):
		return "serial"
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrAlreadyCancelled):
		return "invalid_state"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidOperation):
		return "invalid_operation"
	}
	return "error"
}
