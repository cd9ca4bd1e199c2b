package inventory

import (
	"strings"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Header campos de contexto de un movimiento, validados según el tipo.
type Header struct {
	Vendor             string
	InvoiceNumber      string
	Requester          string
	Sector             string
	ProjectDestination string
	Destination        string
	Signature          string
	Accepted           bool
}

// Policy parámetros del motor que afectan los efectos por línea.
type Policy struct {
	AllowNegativeStock bool
}

// Kind es la variante cerrada receipt | issue | return: un conjunto de reglas de
// validación y una función de efecto de stock/costo por variante.
type Kind interface {
	Type() entity.TransactionType
	// Validate revisa los campos de contexto exigidos por el tipo.
	Validate(h Header) error
	// LinePrice resuelve el precio unitario de la línea.
	LinePrice(p *entity.Product, supplied *decimal.Decimal) (decimal.Decimal, error)
	// Effect calcula el nuevo estado mutable del producto para la línea.
	Effect(p *entity.Product, qty, price decimal.Decimal, pol Policy) (entity.StockMutation, error)
	// Stamp copia al registro final solo los campos de contexto del tipo.
	Stamp(tx *entity.Transaction, h Header)

	sealed()
}

// KindFor devuelve la variante para t.
func KindFor(t entity.TransactionType) (Kind, bool) {
	switch t {
	case entity.TransactionReceipt:
		return receipt{}, true
	case entity.TransactionIssue:
		return issue{}, true
	case entity.TransactionReturn:
		return returnKind{}, true
	}
	return nil, false
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// averageOrSnapshot precio de salida/devolución: snapshot del caller o promedio vigente.
func averageOrSnapshot(p *entity.Product, supplied *decimal.Decimal) (decimal.Decimal, error) {
	if supplied == nil {
		return p.AveragePrice, nil
	}
	if supplied.IsNegative() {
		return decimal.Zero, domain.NewValidation(domain.RulePriceRequired, "precio negativo para %s", p.ID)
	}
	return *supplied, nil
}

// ── entrada ──────────────────────────────────────────────────────────────────

type receipt struct{}

func (receipt) sealed()                      {}
func (receipt) Type() entity.TransactionType { return entity.TransactionReceipt }

func (receipt) Validate(h Header) error {
	if blank(h.Vendor) {
		return domain.NewValidation(domain.RuleVendorRequired, "proveedor obligatorio en entradas")
	}
	if blank(h.InvoiceNumber) {
		return domain.NewValidation(domain.RuleInvoiceRequired, "nota fiscal obligatoria en entradas")
	}
	return nil
}

func (receipt) LinePrice(p *entity.Product, supplied *decimal.Decimal) (decimal.Decimal, error) {
	if supplied == nil || supplied.IsNegative() {
		return decimal.Zero, domain.NewValidation(domain.RulePriceRequired, "precio de entrada obligatorio para %s", p.ID)
	}
	return *supplied, nil
}

func (receipt) Effect(p *entity.Product, qty, price decimal.Decimal, _ Policy) (entity.StockMutation, error) {
	avg, ok := CostCalculator(p.CurrentStock, p.AveragePrice, qty, price)
	if !ok {
		return entity.StockMutation{}, domain.NewValidation(domain.RuleCostBasis,
			"stock resultante no positivo para %s: promedio indefinido", p.ID)
	}
	return entity.StockMutation{
		CurrentStock: p.CurrentStock.Add(qty),
		UnitPrice:    price,
		AveragePrice: avg,
	}, nil
}

func (receipt) Stamp(tx *entity.Transaction, h Header) {
	tx.Vendor = strings.TrimSpace(h.Vendor)
	tx.InvoiceNumber = strings.TrimSpace(h.InvoiceNumber)
}

// ── salida ───────────────────────────────────────────────────────────────────

type issue struct{}

func (issue) sealed()                      {}
func (issue) Type() entity.TransactionType { return entity.TransactionIssue }

func (issue) Validate(h Header) error {
	if blank(h.Requester) {
		return domain.NewValidation(domain.RuleRequesterRequired, "requisitante obligatorio en salidas")
	}
	if blank(h.Sector) || !entity.IsValidSector(h.Sector) {
		return domain.NewValidation(domain.RuleSectorRequired, "sector inválido: %q", h.Sector)
	}
	if blank(h.ProjectDestination) {
		return domain.NewValidation(domain.RuleProjectRequired, "destino/proyecto obligatorio en salidas")
	}
	if blank(h.Signature) {
		return domain.NewValidation(domain.RuleSignatureRequired, "firma del requisitante obligatoria")
	}
	if !h.Accepted {
		return domain.NewValidation(domain.RuleAcceptanceRequired, "se requiere la ciencia del recibimiento")
	}
	return nil
}

func (issue) LinePrice(p *entity.Product, supplied *decimal.Decimal) (decimal.Decimal, error) {
	return averageOrSnapshot(p, supplied)
}

func (issue) Effect(p *entity.Product, qty, _ decimal.Decimal, pol Policy) (entity.StockMutation, error) {
	next := p.CurrentStock.Sub(qty)
	if !pol.AllowNegativeStock && next.IsNegative() {
		return entity.StockMutation{}, &domain.InsufficientStockError{
			ProductID: p.ID,
			Available: p.CurrentStock.String(),
			Requested: qty.String(),
		}
	}
	return entity.StockMutation{CurrentStock: next, UnitPrice: p.UnitPrice, AveragePrice: p.AveragePrice}, nil
}

func (issue) Stamp(tx *entity.Transaction, h Header) {
	tx.Requester = strings.TrimSpace(h.Requester)
	tx.Sector = h.Sector
	tx.ProjectDestination = strings.TrimSpace(h.ProjectDestination)
	tx.Signature = h.Signature
	tx.Accepted = h.Accepted
}

// ── devolución ───────────────────────────────────────────────────────────────

type returnKind struct{}

func (returnKind) sealed()                      {}
func (returnKind) Type() entity.TransactionType { return entity.TransactionReturn }

func (returnKind) Validate(h Header) error {
	if !entity.IsValidReturnDestination(h.Destination) {
		return domain.NewValidation(domain.RuleDestinationInvalid, "destino de devolución inválido: %q", h.Destination)
	}
	return nil
}

func (returnKind) LinePrice(p *entity.Product, supplied *decimal.Decimal) (decimal.Decimal, error) {
	return averageOrSnapshot(p, supplied)
}

func (returnKind) Effect(p *entity.Product, qty, _ decimal.Decimal, _ Policy) (entity.StockMutation, error) {
	return entity.StockMutation{CurrentStock: p.CurrentStock.Add(qty), UnitPrice: p.UnitPrice, AveragePrice: p.AveragePrice}, nil
}

func (returnKind) Stamp(tx *entity.Transaction, h Header) {
	tx.Destination = h.Destination
	tx.Requester = strings.TrimSpace(h.Requester)
}
