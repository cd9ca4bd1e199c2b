// Package memory implementa los puertos de persistencia en memoria (desarrollo y tests).
//
// Los bloqueos por producto se toman en GetForUpdate dentro de TxRunner.Run y se liberan al
// terminar; las escrituras de la transacción se acumulan y se confirman todas juntas bajo el
// mutex del store, o ninguna.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// Store estado compartido: catálogo, libro de movimientos y bloqueos por producto.
type Store struct {
	mu       sync.RWMutex
	products map[string]*entity.Product
	order    []string          // ids en orden de alta
	codes    map[string]string // code -> id
	names    map[string]string // lower(name) -> id
	txs      []*entity.Transaction
	txIndex  map[string]int

	lockMu sync.Mutex
	locks  map[string]chan struct{}
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		products: make(map[string]*entity.Product),
		codes:    make(map[string]string),
		names:    make(map[string]string),
		txIndex:  make(map[string]int),
		locks:    make(map[string]chan struct{}),
	}
}

// Products repositorio de productos sin transacción (cada llamada confirma sola).
func (s *Store) Products() *ProductRepo {
	return &ProductRepo{s: s}
}

// Transactions repositorio de movimientos sin transacción.
func (s *Store) Transactions() *TransactionRepo {
	return &TransactionRepo{s: s}
}

// lock adquiere el bloqueo del producto o falla si ctx expira antes.
func (s *Store) lock(ctx context.Context, id string) error {
	s.lockMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[id] = l
	}
	s.lockMu.Unlock()

	select {
	case l <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) unlock(id string) {
	s.lockMu.Lock()
	l := s.locks[id]
	s.lockMu.Unlock()
	<-l
}

// checkDuplicateLocked requiere s.mu tomado.
func (s *Store) checkDuplicateLocked(p *entity.Product) error {
	if _, ok := s.codes[p.Code]; ok {
		return &domain.DuplicateProductError{Field: "code", Value: p.Code}
	}
	if _, ok := s.names[entity.NameKey(p.Name)]; ok {
		return &domain.DuplicateProductError{Field: "name", Value: p.Name}
	}
	return nil
}

func (s *Store) insertLocked(p *entity.Product) {
	c := p.Clone()
	s.products[c.ID] = c
	s.order = append(s.order, c.ID)
	s.codes[c.Code] = c.ID
	s.names[entity.NameKey(c.Name)] = c.ID
}

func (s *Store) deleteLocked(id string) {
	p, ok := s.products[id]
	if !ok {
		return
	}
	delete(s.products, id)
	delete(s.codes, p.Code)
	delete(s.names, entity.NameKey(p.Name))
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// checkMutationLocked verifica existencia y versión antes de aplicar.
func (s *Store) checkMutationLocked(id string, version int64) error {
	p, ok := s.products[id]
	if !ok {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	if p.Version != version {
		return domain.ErrConflict
	}
	return nil
}

func (s *Store) appendLocked(tx *entity.Transaction) error {
	if _, ok := s.txIndex[tx.ID]; ok {
		return domain.ErrConflict
	}
	s.txIndex[tx.ID] = len(s.txs)
	s.txs = append(s.txs, tx.Clone())
	return nil
}
