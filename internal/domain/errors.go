package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	ErrValidation       = errors.New("movimiento inválido")
	ErrDuplicateProduct = errors.New("producto duplicado")
	ErrProductNotFound  = errors.New("producto no encontrado")
	ErrPersistence      = errors.New("falla de persistencia")
)

// Reglas de validación reportadas en ValidationError.Rule.
const (
	RuleItemsRequired      = "items_required"
	RuleUnknownType        = "unknown_type"
	RuleVendorRequired     = "vendor_required"
	RuleInvoiceRequired    = "invoice_required"
	RuleRequesterRequired  = "requester_required"
	RuleSectorRequired     = "sector_required"
	RuleProjectRequired    = "project_required"
	RuleSignatureRequired  = "signature_required"
	RuleAcceptanceRequired = "acceptance_required"
	RuleDestinationInvalid = "destination_invalid"
	RuleQuantityPositive   = "quantity_positive"
	RulePriceRequired      = "price_required"
	RuleDuplicateLine      = "duplicate_line"
	RuleCostBasis          = "cost_basis"
	RuleProductField       = "product_field"
	RuleOperatorRequired   = "operator_required"
)

// ValidationError indica la regla de negocio violada. Ningún estado fue modificado.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidation construye un ValidationError.
func NewValidation(rule, format string, args ...any) *ValidationError {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// DuplicateProductError colisión de código o nombre al crear un producto.
type DuplicateProductError struct {
	Field string // "code" | "name"
	Value string
}

func (e *DuplicateProductError) Error() string {
	return fmt.Sprintf("ya existe un producto con %s %q", e.Field, e.Value)
}

func (e *DuplicateProductError) Unwrap() error { return ErrDuplicateProduct }

// ProductNotFoundError una línea referencia un producto ausente del catálogo.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("producto %s no encontrado", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

// InsufficientStockError salida que dejaría el stock negativo con el piso activado.
type InsufficientStockError struct {
	ProductID string
	Available string
	Requested string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %s, solicitado %s", e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// PersistenceError falla del almacenamiento subyacente; se entrega al caller sin reintentos.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap expone tanto ErrPersistence como la causa original.
func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// Persistence envuelve err en un PersistenceError salvo que ya sea un error de dominio.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomain(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsDomain indica si err pertenece a la taxonomía del dominio.
func IsDomain(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDuplicateProduct) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrPersistence) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrNotFound)
}
