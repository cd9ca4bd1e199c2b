package memory

import (
	"context"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo libro append-only en memoria.
type TransactionRepo struct {
	s *Store
}

func (r *TransactionRepo) Append(_ context.Context, tx *entity.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.appendLocked(tx)
}

func (r *TransactionRepo) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i, ok := r.s.txIndex[id]
	if !ok {
		return nil, nil
	}
	return r.s.txs[i].Clone(), nil
}

func (r *TransactionRepo) List(_ context.Context, filter repository.TransactionFilter) ([]*entity.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Transaction, 0)
	for _, tx := range r.s.txs {
		if filter.Match(tx) {
			out = append(out, tx.Clone())
		}
	}
	return out, nil
}
