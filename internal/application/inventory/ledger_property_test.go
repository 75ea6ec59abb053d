package inventory_test

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-inventario/internal/domain"
	dominventory "github.com/jhoicas/erp-inventario/internal/domain/inventory"
)

// modelo de referencia: cantidad por valor de discriminador ("" para simple).
type stockModel map[string]int64

func (m stockModel) total() int64 {
	var sum int64
	for _, q := range m {
		sum += q
	}
	return sum
}

// paso aleatorio: movimiento a aplicar y el error esperado según el modelo (nil = éxito).
type step struct {
	dir  dominventory.Direction
	m    dominventory.Movement
	want error
}

var (
	lots    = []string{"A", "B", "C"}
	dates   = []string{"2026-01-01", "2026-02-01", "2026-03-01"}
	serials = []string{"SN-1", "SN-2", "SN-3", "SN-4", "SN-5", "SN-6"}
)

func randomStep(r *rand.Rand, product string, model stockModel) step {
	dir := dominventory.Increase
	if r.Intn(2) == 0 {
		dir = dominventory.Decrease
	}
	qty := int64(r.Intn(25) + 1)

	switch product {
	case "simple":
		s := step{dir: dir, m: mov(product, qty, dominventory.TrackingInfo{})}
		if dir == dominventory.Decrease {
			if model[""] < qty {
				s.want = domain.ErrInsufficientStock
			} else {
				model[""] -= qty
			}
		} else {
			model[""] += qty
		}
		return s

	case "lote":
		lot := lots[r.Intn(len(lots))]
		s := step{dir: dir, m: mov(product, qty, dominventory.TrackingInfo{LotCode: lot})}
		if dir == dominventory.Decrease {
			if model[lot] < qty {
				s.want = domain.ErrInsufficientLotStock
			} else {
				model[lot] -= qty
			}
		} else {
			model[lot] += qty
		}
		return s

	case "vence":
		if dir == dominventory.Decrease && r.Intn(2) == 0 {
			s := step{dir: dir, m: mov(product, qty, dominventory.TrackingInfo{})}
			if model.total() < qty {
				s.want = domain.ErrInsufficientStock
				return s
			}
			remaining := qty
			for _, d := range dates {
				take := min(model[d], remaining)
				model[d] -= take
				remaining -= take
			}
			return s
		}
		d := dates[r.Intn(len(dates))]
		s := step{dir: dir, m: mov(product, qty, dominventory.TrackingInfo{ExpirationDate: date(d)})}
		if dir == dominventory.Decrease {
			if model[d] < qty {
				s.want = domain.ErrInsufficientLotStock
			} else {
				model[d] -= qty
			}
		} else {
			model[d] += qty
		}
		return s

	case "serial":
		picked := r.Perm(len(serials))[:r.Intn(3)+1]
		sns := make([]string, len(picked))
		for i, p := range picked {
			sns[i] = serials[p]
		}
		s := step{dir: dir, m: mov(product, int64(len(sns)), dominventory.TrackingInfo{SerialNumbers: sns})}
		for _, sn := range sns {
			_, present := model[sn]
			if dir == dominventory.Increase && present {
				s.want = domain.ErrDuplicateSerial
				return s
			}
			if dir == dominventory.Decrease && !present {
				s.want = domain.ErrSerialNotFound
				return s
			}
		}
		for _, sn := range sns {
			if dir == dominventory.Increase {
				model[sn] = 1
			} else {
				delete(model, sn)
			}
		}
		return s
	}
	panic("producto sin generador: " + product)
}

// Secuencias aleatorias de entradas y salidas nunca dejan cantidades negativas: toda salida que
// excede lo disponible falla con el error de stock y no cambia nada.
func TestLedger_SecuenciasAleatoriasNuncaNegativas(t *testing.T) {
	for _, product := range []string{"simple", "lote", "vence", "serial"} {
		for seed := int64(1); seed <= 5; seed++ {
			t.Run(fmt.Sprintf("%s/semilla-%d", product, seed), func(t *testing.T) {
				ctx := context.Background()
				uc, store := newLedger(t)
				r := rand.New(rand.NewSource(seed))
				model := stockModel{}

				for i := 0; i < 200; i++ {
					s := randomStep(r, product, model)
					var err error
					if s.dir == dominventory.Increase {
						_, err = uc.IncreaseStock(ctx, s.m)
					} else {
						_, err = uc.DecreaseStock(ctx, s.m)
					}
					if s.want == nil {
						require.NoError(t, err, "paso %d: %s %+v", i, s.dir, s.m)
					} else {
						require.ErrorIs(t, err, s.want, "paso %d: %s %+v", i, s.dir, s.m)
					}

					records, err := store.Stock().List(ctx, product, wh)
					require.NoError(t, err)
					got := stockModel{}
					for _, rec := range records {
						require.GreaterOrEqual(t, rec.Quantity, int64(0), "paso %d: %s", i, rec.Discriminator)
						got[rec.Discriminator.Value] = rec.Quantity
					}
					assert.Equal(t, nonZero(model), nonZero(got), "paso %d", i)
					require.Equal(t, model.total(), available(t, uc, product), "paso %d", i)
				}
			})
		}
	}
}

// nonZero ignora registros en cero, que se conservan para lotes pero no existen en el modelo
// hasta la primera entrada.
func nonZero(m stockModel) []string {
	out := make([]string, 0, len(m))
	for k, q := range m {
		if q != 0 {
			out = append(out, fmt.Sprintf("%s=%d", k, q))
		}
	}
	sort.Strings(out)
	return out
}
