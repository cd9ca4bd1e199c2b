package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tipo de movimiento.
type TransactionType string

// Tipos de movimiento de inventario.
const (
	TransactionReceipt TransactionType = "receipt" // entrada
	TransactionIssue   TransactionType = "issue"   // saída
	TransactionReturn  TransactionType = "return"  // devolução
)

// ParseTransactionType acepta los nombres canónicos y los alias heredados (entrada, saida, devolucao).
func ParseTransactionType(s string) (TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "receipt", "entrada":
		return TransactionReceipt, true
	case "issue", "saida", "saída":
		return TransactionIssue, true
	case "return", "devolucao", "devolução":
		return TransactionReturn, true
	}
	return "", false
}

// Sectores válidos para salidas.
var Sectors = []string{"Adm", "Produção", "Instalação", "Manutenção", "Plotagem"}

// Destinos válidos para devoluciones.
var ReturnDestinations = []string{"Almoxarifado", "Descarte"}

// IsValidSector indica si s es un sector conocido.
func IsValidSector(s string) bool { return contains(Sectors, s) }

// IsValidReturnDestination indica si d es un destino de devolución conocido.
func IsValidReturnDestination(d string) bool { return contains(ReturnDestinations, d) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Transaction movimiento finalizado e inmutable (entrada, salida o devolución).
// Los campos de contexto solo se completan según el tipo.
type Transaction struct {
	ID                 string
	Type               TransactionType
	Date               time.Time
	Vendor             string // entrada
	InvoiceNumber      string // entrada
	Requester          string // salida (opcional en devolución)
	Sector             string // salida
	ProjectDestination string // salida
	Destination        string // devolución
	Signature          string // salida, artefacto de firma (data URL / base64)
	Accepted           bool   // salida, ciencia del recibimiento
	TotalValue         decimal.Decimal
	Items              []TransactionItem
	CreatedBy          string
}

// TransactionItem línea del movimiento con snapshot del producto al momento del registro.
type TransactionItem struct {
	ProductID            string
	ProductName          string
	ProductSpecification string
	Quantity             decimal.Decimal
	UnitPrice            decimal.Decimal
	TotalPrice           decimal.Decimal
}

// TotalQuantity suma de cantidades de las líneas.
func (t *Transaction) TotalQuantity() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range t.Items {
		sum = sum.Add(it.Quantity)
	}
	return sum
}

// Clone copia profunda (incluye Items).
func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	c := *t
	c.Items = append([]TransactionItem(nil), t.Items...)
	return &c
}
