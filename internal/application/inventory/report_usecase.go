package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// ReportUseCase consultas de solo lectura sobre el catálogo y el libro de movimientos.
type ReportUseCase struct {
	productRepo repository.ProductRepository
	txRepo      repository.TransactionRepository
}

// NewReportUseCase construye el caso de uso de reportes.
func NewReportUseCase(
	productRepo repository.ProductRepository,
	txRepo repository.TransactionRepository,
) *ReportUseCase {
	return &ReportUseCase{
		productRepo: productRepo,
		txRepo:      txRepo,
	}
}

// StockReport valor total del inventario y lista de productos en o bajo el mínimo,
// ordenada por mayor déficit (prioridad 1 = más urgente).
func (uc *ReportUseCase) StockReport(ctx context.Context) (*dto.StockReportDTO, error) {
	products, err := uc.productRepo.List(ctx)
	if err != nil {
		return nil, domain.Persistence("reporte de stock", err)
	}

	value := decimal.Zero
	low := make([]dto.LowStockItemDTO, 0)
	for _, p := range products {
		value = value.Add(p.StockValue())
		if !p.IsLowStock() {
			continue
		}
		shortfall := p.MinStock.Sub(p.CurrentStock)
		if shortfall.IsNegative() {
			shortfall = decimal.Zero
		}
		low = append(low, dto.LowStockItemDTO{
			ProductID:     p.ID,
			Code:          p.Code,
			Name:          p.Name,
			Specification: p.Specification,
			Unit:          p.Unit,
			CurrentStock:  p.CurrentStock,
			MinStock:      p.MinStock,
			Shortfall:     shortfall,
			AveragePrice:  p.AveragePrice,
		})
	}

	// Mayor déficit primero; empate por código para un orden estable.
	sort.SliceStable(low, func(i, j int) bool {
		a, b := low[i], low[j]
		if !a.Shortfall.Equal(b.Shortfall) {
			return a.Shortfall.GreaterThan(b.Shortfall)
		}
		return a.Code < b.Code
	})
	for i := range low {
		low[i].Priority = i + 1
	}

	return &dto.StockReportDTO{
		InventoryValue: value,
		ProductCount:   len(products),
		LowStockCount:  len(low),
		LowStock:       low,
	}, nil
}

// MovementReport totales de los movimientos que cumplen el filtro.
func (uc *ReportUseCase) MovementReport(ctx context.Context, filter repository.TransactionFilter) (*dto.MovementReportDTO, error) {
	list, err := uc.txRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.Persistence("reporte de movimientos", err)
	}

	out := &dto.MovementReportDTO{
		TransactionCount: len(list),
		TotalValue:       decimal.Zero,
		TotalQuantity:    decimal.Zero,
		ByType: map[string]decimal.Decimal{
			string(entity.TransactionReceipt): decimal.Zero,
			string(entity.TransactionIssue):   decimal.Zero,
			string(entity.TransactionReturn):  decimal.Zero,
		},
	}
	for _, tx := range list {
		out.TotalValue = out.TotalValue.Add(tx.TotalValue)
		out.TotalQuantity = out.TotalQuantity.Add(tx.TotalQuantity())
		out.ByType[string(tx.Type)] = out.ByType[string(tx.Type)].Add(tx.TotalValue)
	}
	return out, nil
}
