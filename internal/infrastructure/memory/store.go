// Package memory implementa los puertos de persistencia sobre estructuras en
// memoria. Se usa en tests y para correr la API sin PostgreSQL.
package memory

import (
	"sync"

	"github.com/mdessi/pastificio-api/internal/domain/entity"
)

// Store estado compartido de todos los repositorios en memoria. Un único mutex
// protege todas las colecciones; la granularidad gruesa es suficiente aquí.
type Store struct {
	mu sync.RWMutex
	// txMu serializa transacciones completas (ver TxRunner).
	txMu sync.Mutex

	products   map[string]entity.Product
	categories map[string]entity.Category
	quotas     map[string]entity.CapacityQuota
	orders     map[string]entity.Order
	users      map[string]entity.User
	movements  []entity.StockMovement
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:   make(map[string]entity.Product),
		categories: make(map[string]entity.Category),
		quotas:     make(map[string]entity.CapacityQuota),
		orders:     make(map[string]entity.Order),
		users:      make(map[string]entity.User),
	}
}

// snapshot copia profunda del estado mutado por transacciones (cupos, pedidos
// y libro). Productos, categorías y usuarios no participan en transacciones.
type snapshot struct {
	quotas    map[string]entity.CapacityQuota
	orders    map[string]entity.Order
	movements []entity.StockMovement
}

func (s *Store) takeSnapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		quotas:    make(map[string]entity.CapacityQuota, len(s.quotas)),
		orders:    make(map[string]entity.Order, len(s.orders)),
		movements: make([]entity.StockMovement, len(s.movements)),
	}
	for id, q := range s.quotas {
		snap.quotas[id] = q
	}
	for id, o := range s.orders {
		o.Lines = append([]entity.OrderLine(nil), o.Lines...)
		snap.orders[id] = o
	}
	copy(snap.movements, s.movements)
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotas = snap.quotas
	s.orders = snap.orders
	s.movements = snap.movements
}
