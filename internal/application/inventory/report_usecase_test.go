package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/memory"
)

func TestStockReport_OrdenaPorDeficit(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	for _, p := range []*entity.Product{
		{ID: "a", Code: "Prod001", Name: "A", Unit: "un", MinStock: dec("5"), CurrentStock: dec("4"), AveragePrice: dec("2")},
		{ID: "b", Code: "Prod002", Name: "B", Unit: "un", MinStock: dec("10"), CurrentStock: dec("1"), AveragePrice: dec("3")},
		{ID: "c", Code: "Prod003", Name: "C", Unit: "un", MinStock: dec("1"), CurrentStock: dec("8"), AveragePrice: dec("1.5")},
		{ID: "d", Code: "Prod004", Name: "D", Unit: "un", MinStock: dec("3"), CurrentStock: dec("3"), AveragePrice: dec("1")},
	} {
		p.CreatedAt = time.Now().UTC()
		require.NoError(t, store.Products().Create(ctx, p))
	}

	uc := inventory.NewReportUseCase(store.Products(), store.Transactions())
	out, err := uc.StockReport(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, out.ProductCount)
	assert.True(t, out.InventoryValue.Equal(dec("26")), "4*2 + 1*3 + 8*1.5 + 3*1")
	require.Equal(t, 3, out.LowStockCount, "d está justo en el mínimo")
	assert.Equal(t, "b", out.LowStock[0].ProductID)
	assert.Equal(t, "a", out.LowStock[1].ProductID)
	assert.Equal(t, "d", out.LowStock[2].ProductID)
	assert.True(t, out.LowStock[2].Shortfall.Equal(decimal.Zero))
	assert.Equal(t, 3, out.LowStock[2].Priority)
}

func TestMovementReport_Totales(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	for _, tx := range []*entity.Transaction{
		{ID: "1", Type: entity.TransactionReceipt, TotalValue: dec("70"), Items: []entity.TransactionItem{{Quantity: dec("10")}}},
		{ID: "2", Type: entity.TransactionIssue, TotalValue: dec("30"), Sector: "Adm", Items: []entity.TransactionItem{{Quantity: dec("5")}}},
		{ID: "3", Type: entity.TransactionIssue, TotalValue: dec("12"), Sector: "Plotagem", Items: []entity.TransactionItem{{Quantity: dec("2")}, {Quantity: dec("1")}}},
	} {
		require.NoError(t, store.Transactions().Append(ctx, tx))
	}
	uc := inventory.NewReportUseCase(store.Products(), store.Transactions())

	all, err := uc.MovementReport(ctx, repository.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.TransactionCount)
	assert.True(t, all.TotalValue.Equal(dec("112")))
	assert.True(t, all.TotalQuantity.Equal(dec("18")))
	assert.True(t, all.ByType["issue"].Equal(dec("42")))
	assert.True(t, all.ByType["return"].Equal(decimal.Zero))

	issues, err := uc.MovementReport(ctx, repository.TransactionFilter{Type: entity.TransactionIssue, Sector: "Adm"})
	require.NoError(t, err)
	assert.Equal(t, 1, issues.TransactionCount)
	assert.True(t, issues.TotalValue.Equal(dec("30")))
}
