package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. Code vacío = asignación automática (ProdNNN).
type CreateProductRequest struct {
	Code          string          `json:"code"`
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	Specification string          `json:"specification"`
	Description   string          `json:"description"`
	Unit          string          `json:"unit"`
	MinStock      decimal.Decimal `json:"min_stock"`
	CurrentStock  decimal.Decimal `json:"current_stock"` // stock de apertura
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Category      string          `json:"category"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Specification string          `json:"specification,omitempty"`
	Description   string          `json:"description,omitempty"`
	Unit          string          `json:"unit"`
	MinStock      decimal.Decimal `json:"min_stock"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	AveragePrice  decimal.Decimal `json:"average_price"`
	Category      string          `json:"category,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ProductListResponse lista de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int               `json:"total"`
}

// NextCodeResponse código que recibiría el próximo producto.
type NextCodeResponse struct {
	Code string `json:"code"`
}
