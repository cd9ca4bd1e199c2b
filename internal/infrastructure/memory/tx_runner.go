package memory

import (
	"context"
	"sort"

	appinventory "github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var _ appinventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks con repositorios transaccionales sobre el Store.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn; si devuelve nil confirma todas las escrituras acumuladas, si no las descarta.
// Los bloqueos de producto tomados en fn se liberan siempre al salir.
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	txRepo repository.TransactionRepository,
) error) error {
	t := &memTx{s: r.s, held: make(map[string]bool), mutations: make(map[string]stagedMutation)}
	defer t.release()

	if err := fn(&txProductRepo{t: t}, &txTransactionRepo{t: t}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.commit()
}

type stagedMutation struct {
	version  int64
	mutation entity.StockMutation
}

// memTx escrituras pendientes de una transacción.
type memTx struct {
	s    *Store
	held map[string]bool

	mutations map[string]stagedMutation
	mutOrder  []string
	creates   []*entity.Product
	deletes   []string
	appends   []*entity.Transaction
}

func (t *memTx) release() {
	for id := range t.held {
		t.s.unlock(id)
	}
	t.held = nil
}

// commit valida todo bajo el mutex y recién entonces escribe.
func (t *memTx) commit() error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range t.mutOrder {
		if err := s.checkMutationLocked(id, t.mutations[id].version); err != nil {
			return err
		}
	}
	for _, p := range t.creates {
		if err := s.checkDuplicateLocked(p); err != nil {
			return err
		}
	}
	for _, id := range t.deletes {
		if _, ok := s.products[id]; !ok {
			return &domain.ProductNotFoundError{ProductID: id}
		}
	}
	for _, tx := range t.appends {
		if _, ok := s.txIndex[tx.ID]; ok {
			return domain.ErrConflict
		}
	}

	for _, id := range t.mutOrder {
		s.products[id].Apply(t.mutations[id].mutation)
	}
	for _, p := range t.creates {
		s.insertLocked(p)
	}
	for _, id := range t.deletes {
		s.deleteLocked(id)
	}
	for _, tx := range t.appends {
		_ = s.appendLocked(tx)
	}
	return nil
}

func (t *memTx) deleted(id string) bool {
	for _, d := range t.deletes {
		if d == id {
			return true
		}
	}
	return false
}

// view producto visto desde la transacción (estado confirmado + mutación pendiente).
func (t *memTx) view(id string) *entity.Product {
	if t.deleted(id) {
		return nil
	}
	t.s.mu.RLock()
	p := t.s.products[id].Clone()
	t.s.mu.RUnlock()
	if p == nil {
		for _, c := range t.creates {
			if c.ID == id {
				return c.Clone()
			}
		}
		return nil
	}
	if sm, ok := t.mutations[id]; ok {
		p.Apply(sm.mutation)
	}
	return p
}

type txProductRepo struct {
	t *memTx
}

func (r *txProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.t.s.mu.RLock()
	err := r.t.s.checkDuplicateLocked(product)
	r.t.s.mu.RUnlock()
	if err != nil {
		return err
	}
	r.t.creates = append(r.t.creates, product.Clone())
	return nil
}

func (r *txProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return r.t.view(id), nil
}

func (r *txProductRepo) List(_ context.Context) ([]*entity.Product, error) {
	r.t.s.mu.RLock()
	ids := append([]string(nil), r.t.s.order...)
	r.t.s.mu.RUnlock()
	for _, c := range r.t.creates {
		ids = append(ids, c.ID)
	}
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		if p := r.t.view(id); p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *txProductRepo) Delete(_ context.Context, id string) error {
	if r.t.view(id) == nil {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	r.t.deletes = append(r.t.deletes, id)
	return nil
}

// GetForUpdate bloquea en orden ascendente de id para evitar interbloqueos entre lotes.
func (r *txProductRepo) GetForUpdate(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	for _, id := range sorted {
		if r.t.held[id] {
			continue
		}
		if err := r.t.s.lock(ctx, id); err != nil {
			return nil, err
		}
		r.t.held[id] = true
	}
	out := make(map[string]*entity.Product, len(ids))
	for _, id := range sorted {
		if p := r.t.view(id); p != nil {
			out[id] = p
		}
	}
	return out, nil
}

func (r *txProductRepo) ApplyMutation(_ context.Context, id string, version int64, m entity.StockMutation) error {
	if r.t.deleted(id) {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	// Segunda mutación en la misma tx: se encadena sobre la versión ya vista.
	if sm, ok := r.t.mutations[id]; ok {
		if version != sm.version+1 {
			return domain.ErrConflict
		}
		r.t.mutations[id] = stagedMutation{version: sm.version, mutation: m}
		return nil
	}
	r.t.s.mu.RLock()
	err := r.t.s.checkMutationLocked(id, version)
	r.t.s.mu.RUnlock()
	if err != nil {
		return err
	}
	r.t.mutOrder = append(r.t.mutOrder, id)
	r.t.mutations[id] = stagedMutation{version: version, mutation: m}
	return nil
}

type txTransactionRepo struct {
	t *memTx
}

func (r *txTransactionRepo) Append(_ context.Context, tx *entity.Transaction) error {
	r.t.appends = append(r.t.appends, tx.Clone())
	return nil
}

func (r *txTransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	for _, tx := range r.t.appends {
		if tx.ID == id {
			return tx.Clone(), nil
		}
	}
	return r.t.s.Transactions().GetByID(ctx, id)
}

func (r *txTransactionRepo) List(ctx context.Context, filter repository.TransactionFilter) ([]*entity.Transaction, error) {
	out, err := r.t.s.Transactions().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, tx := range r.t.appends {
		if filter.Match(tx) {
			out = append(out, tx.Clone())
		}
	}
	return out, nil
}
