package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func product(id, code, name string) *entity.Product {
	return &entity.Product{
		ID:           id,
		Code:         code,
		Name:         name,
		Unit:         entity.UnitUnit,
		MinStock:     decimal.NewFromInt(2),
		CurrentStock: decimal.RequireFromString("10.5"),
		UnitPrice:    decimal.RequireFromString("5.1234"),
		AveragePrice: decimal.RequireFromString("5.1234"),
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC),
	}
}

func TestProducts_CreateGetYDuplicados(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, product("p1", "Prod001", "Luva")))

	got, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.CurrentStock.Equal(decimal.RequireFromString("10.5")))
	assert.True(t, got.AveragePrice.Equal(decimal.RequireFromString("5.1234")))
	assert.True(t, got.CreatedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)))

	var dup *domain.DuplicateProductError
	err = s.Products().Create(ctx, product("p2", "Prod001", "Outra"))
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "code", dup.Field)

	err = s.Products().Create(ctx, product("p3", "Prod002", "LUVA"))
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "name", dup.Field)

	err = s.Products().Create(ctx, product("p4", "Prod003", "  luva  "))
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "name", dup.Field)

	missing, err := s.Products().GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProducts_NombreDuplicadoConAcentos(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, product("p1", "Prod001", "Luva Térmica")))

	var dup *domain.DuplicateProductError
	err := s.Products().Create(ctx, product("p2", "Prod002", "LUVA TÉRMICA"))
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "name", dup.Field)
	assert.Equal(t, "LUVA TÉRMICA", dup.Value)

	err = s.Products().Create(ctx, product("p3", "Prod003", "Fita Isolante ÇÃO"))
	require.NoError(t, err)
	err = s.Products().Create(ctx, product("p4", "Prod004", "fita isolante ção"))
	require.ErrorAs(t, err, &dup)

	list, err := s.Products().List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestProducts_ApplyMutationYDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, product("p1", "Prod001", "Luva")))

	m := entity.StockMutation{CurrentStock: decimal.Zero, UnitPrice: decimal.NewFromInt(7), AveragePrice: decimal.NewFromInt(6)}
	require.NoError(t, s.Products().ApplyMutation(ctx, "p1", 0, m))
	assert.ErrorIs(t, s.Products().ApplyMutation(ctx, "p1", 0, m), domain.ErrConflict)
	assert.ErrorIs(t, s.Products().ApplyMutation(ctx, "nope", 0, m), domain.ErrProductNotFound)

	got, _ := s.Products().GetByID(ctx, "p1")
	assert.Equal(t, int64(1), got.Version)
	assert.True(t, got.AveragePrice.Equal(decimal.NewFromInt(6)))

	require.NoError(t, s.Products().Delete(ctx, "p1"))
	assert.ErrorIs(t, s.Products().Delete(ctx, "p1"), domain.ErrProductNotFound)
}

func TestTxRunner_RollbackYCommit(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, product("p1", "Prod001", "Luva")))
	runner := sqlite.NewTxRunner(s)

	boom := errors.New("boom")
	err := runner.Run(ctx, func(pr repository.ProductRepository, tr repository.TransactionRepository) error {
		locked, err := pr.GetForUpdate(ctx, []string{"p1", "ausente"})
		require.NoError(t, err)
		require.Len(t, locked, 1)
		m := locked["p1"].Mutation()
		m.CurrentStock = decimal.NewFromInt(1)
		require.NoError(t, pr.ApplyMutation(ctx, "p1", 0, m))
		return boom
	})
	require.ErrorIs(t, err, boom)
	got, _ := s.Products().GetByID(ctx, "p1")
	assert.Equal(t, int64(0), got.Version)

	tx := &entity.Transaction{
		ID:         "t1",
		Type:       entity.TransactionIssue,
		Date:       time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		Requester:  "Carlos",
		Sector:     "Manutenção",
		Signature:  "data:image/png;base64,AAAA",
		Accepted:   true,
		TotalValue: decimal.RequireFromString("30"),
		CreatedBy:  "almoxarife",
		Items: []entity.TransactionItem{
			{ProductID: "p1", ProductName: "Luva", Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(6), TotalPrice: decimal.NewFromInt(30)},
		},
	}
	err = runner.Run(ctx, func(_ repository.ProductRepository, tr repository.TransactionRepository) error {
		return tr.Append(ctx, tx)
	})
	require.NoError(t, err)

	stored, err := s.Transactions().GetByID(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entity.TransactionIssue, stored.Type)
	assert.True(t, stored.Accepted)
	assert.True(t, stored.Date.Equal(tx.Date))
	require.Len(t, stored.Items, 1)
	assert.True(t, stored.Items[0].TotalPrice.Equal(decimal.NewFromInt(30)))

	assert.ErrorIs(t, s.Transactions().Append(ctx, tx), domain.ErrConflict)
}

func TestTransactions_Filtros(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, tx := range []*entity.Transaction{
		{ID: "a", Type: entity.TransactionReceipt, Date: base, Vendor: "ACME", InvoiceNumber: "NF-1"},
		{ID: "b", Type: entity.TransactionIssue, Date: base.Add(time.Hour), Requester: "JOÃO", Sector: "Adm", ProjectDestination: "Obra Centro"},
		{ID: "c", Type: entity.TransactionIssue, Date: base.Add(48 * time.Hour), Requester: "Ana", Sector: "Plotagem"},
	} {
		tx.TotalValue = decimal.NewFromInt(int64(i + 1))
		tx.CreatedBy = "op"
		require.NoError(t, s.Transactions().Append(ctx, tx))
	}

	all, err := s.Transactions().List(ctx, repository.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "c", all[2].ID)

	to := base.Add(24 * time.Hour)
	ranged, err := s.Transactions().List(ctx, repository.TransactionFilter{Type: entity.TransactionIssue, To: &to})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "b", ranged[0].ID)

	byRequester, err := s.Transactions().List(ctx, repository.TransactionFilter{Requester: "joão"})
	require.NoError(t, err)
	require.Len(t, byRequester, 1, "subcadena sin distinguir mayúsculas, incluso fuera de ASCII")

	byProject, err := s.Transactions().List(ctx, repository.TransactionFilter{Project: "centro"})
	require.NoError(t, err)
	assert.Len(t, byProject, 1)
}
