package memory

import (
	"context"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo acceso directo al catálogo; cada operación confirma de inmediato.
type ProductRepo struct {
	s *Store
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkDuplicateLocked(product); err != nil {
		return err
	}
	r.s.insertLocked(product)
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.products[id].Clone(), nil
}

func (r *ProductRepo) List(_ context.Context) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Product, 0, len(r.s.order))
	for _, id := range r.s.order {
		out = append(out, r.s.products[id].Clone())
	}
	return out, nil
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	r.s.deleteLocked(id)
	return nil
}

// GetForUpdate fuera de TxRunner no bloquea: devuelve una copia del estado actual.
func (r *ProductRepo) GetForUpdate(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out[id] = p.Clone()
		}
	}
	return out, nil
}

func (r *ProductRepo) ApplyMutation(_ context.Context, id string, version int64, m entity.StockMutation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkMutationLocked(id, version); err != nil {
		return err
	}
	r.s.products[id].Apply(m)
	return nil
}
