package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Unidades de medida válidas para Product.Unit.
const (
	UnitUnit        = "un"
	UnitPair        = "par"
	UnitBox         = "cx"
	UnitPack        = "pac"
	UnitRoll        = "rl"
	UnitKilogram    = "kg"
	UnitGram        = "g"
	UnitMeter       = "m"
	UnitSquareMeter = "m2"
	UnitCubicMeter  = "m3"
	UnitLiter       = "L"
	UnitMilliliter  = "ml"
)

// Units lista ordenada de unidades aceptadas.
var Units = []string{
	UnitUnit, UnitPair, UnitBox, UnitPack, UnitRoll, UnitKilogram,
	UnitGram, UnitMeter, UnitSquareMeter, UnitCubicMeter, UnitLiter, UnitMilliliter,
}

// IsValidUnit indica si u pertenece al conjunto de unidades.
func IsValidUnit(u string) bool {
	for _, v := range Units {
		if v == u {
			return true
		}
	}
	return false
}

// Product representa un material del almoxarifado.
// CurrentStock, UnitPrice y AveragePrice solo cambian vía el motor de movimientos.
type Product struct {
	ID            string
	Code          string // ProdNNN, inmutable
	Name          string
	Specification string // tamaño, color, voltaje...
	Description   string
	Unit          string
	MinStock      decimal.Decimal // punto de alerta
	CurrentStock  decimal.Decimal
	UnitPrice     decimal.Decimal // último precio de entrada
	AveragePrice  decimal.Decimal // costo promedio ponderado
	Category      string
	Version       int64 // se incrementa en cada mutación de stock/costo
	CreatedAt     time.Time
}

// NameKey clave de unicidad del nombre: sin espacios extremos y en minúsculas (Unicode).
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// StockMutation campos mutables de un producto aplicados por el motor.
type StockMutation struct {
	CurrentStock decimal.Decimal
	UnitPrice    decimal.Decimal
	AveragePrice decimal.Decimal
}

// Mutation devuelve el estado mutable actual del producto.
func (p *Product) Mutation() StockMutation {
	return StockMutation{CurrentStock: p.CurrentStock, UnitPrice: p.UnitPrice, AveragePrice: p.AveragePrice}
}

// Apply sobrescribe los campos mutables y avanza la versión.
func (p *Product) Apply(m StockMutation) {
	p.CurrentStock = m.CurrentStock
	p.UnitPrice = m.UnitPrice
	p.AveragePrice = m.AveragePrice
	p.Version++
}

// IsLowStock stock actual en o por debajo del mínimo.
func (p *Product) IsLowStock() bool {
	return p.CurrentStock.LessThanOrEqual(p.MinStock)
}

// StockValue valor del stock a costo promedio.
func (p *Product) StockValue() decimal.Decimal {
	return p.CurrentStock.Mul(p.AveragePrice)
}

// Clone copia el producto para que el caller no comparta memoria con el almacén.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
