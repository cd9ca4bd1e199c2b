package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementLineRequest línea de POST /api/movements.
type MovementLineRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// SubmitMovementRequest body para POST /api/movements.
// Campos de contexto según tipo: vendor + invoice_number (receipt); requester, sector,
// project_destination, signature y accepted (issue); destination (return).
type SubmitMovementRequest struct {
	Type               string                `json:"type"`
	Items              []MovementLineRequest `json:"items"`
	Vendor             string                `json:"vendor,omitempty"`
	InvoiceNumber      string                `json:"invoice_number,omitempty"`
	Requester          string                `json:"requester,omitempty"`
	Sector             string                `json:"sector,omitempty"`
	ProjectDestination string                `json:"project_destination,omitempty"`
	Destination        string                `json:"destination,omitempty"`
	Signature          string                `json:"signature,omitempty"`
	Accepted           bool                  `json:"accepted,omitempty"`
}

// TransactionItemResponse línea registrada (snapshot del producto).
type TransactionItemResponse struct {
	ProductID            string          `json:"product_id"`
	ProductName          string          `json:"product_name"`
	ProductSpecification string          `json:"product_specification,omitempty"`
	Quantity             decimal.Decimal `json:"quantity"`
	UnitPrice            decimal.Decimal `json:"unit_price"`
	TotalPrice           decimal.Decimal `json:"total_price"`
}

// TransactionResponse movimiento registrado.
type TransactionResponse struct {
	ID                 string                    `json:"id"`
	Type               string                    `json:"type"`
	Date               time.Time                 `json:"date"`
	Vendor             string                    `json:"vendor,omitempty"`
	InvoiceNumber      string                    `json:"invoice_number,omitempty"`
	Requester          string                    `json:"requester,omitempty"`
	Sector             string                    `json:"sector,omitempty"`
	ProjectDestination string                    `json:"project_destination,omitempty"`
	Destination        string                    `json:"destination,omitempty"`
	Signature          string                    `json:"signature,omitempty"`
	Accepted           bool                      `json:"accepted,omitempty"`
	TotalValue         decimal.Decimal           `json:"total_value"`
	Items              []TransactionItemResponse `json:"items"`
	CreatedBy          string                    `json:"created_by"`
}

// TransactionListResponse lista de movimientos en orden de creación.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Total int                   `json:"total"`
}

// LowStockItemDTO producto en o por debajo del stock mínimo.
type LowStockItemDTO struct {
	ProductID     string          `json:"product_id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Specification string          `json:"specification,omitempty"`
	Unit          string          `json:"unit"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	MinStock      decimal.Decimal `json:"min_stock"`
	Shortfall     decimal.Decimal `json:"shortfall"` // MinStock - CurrentStock (>= 0)
	AveragePrice  decimal.Decimal `json:"average_price"`
	Priority      int             `json:"priority"` // 1 = mayor déficit
}

// StockReportDTO respuesta de GET /api/reports/stock.
type StockReportDTO struct {
	InventoryValue decimal.Decimal   `json:"inventory_value"` // Σ stock * promedio
	ProductCount   int               `json:"product_count"`
	LowStockCount  int               `json:"low_stock_count"`
	LowStock       []LowStockItemDTO `json:"low_stock"`
}

// MovementReportDTO respuesta de GET /api/reports/movements.
type MovementReportDTO struct {
	TransactionCount int                        `json:"transaction_count"`
	TotalValue       decimal.Decimal            `json:"total_value"`    // Σ total_value
	TotalQuantity    decimal.Decimal            `json:"total_quantity"` // Σ cantidades de línea
	ByType           map[string]decimal.Decimal `json:"by_type"`        // total_value por tipo
}
