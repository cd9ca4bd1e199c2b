package inventory

import "github.com/shopspring/decimal"

// AverageCostPlaces decimales del costo promedio persistido.
const AverageCostPlaces = 4

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// El cociente se redondea una sola vez a AverageCostPlaces.
// Devuelve ok=false cuando el denominador no es positivo: el promedio queda indefinido.
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) (decimal.Decimal, bool) {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.DivRound(sum, AverageCostPlaces), true
}
