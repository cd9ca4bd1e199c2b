package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// TransactionRepository almacén append-only de movimientos finalizados.
// No existe Update ni Delete: los reportes históricos siguen válidos aunque el catálogo cambie.
type TransactionRepository interface {
	Append(ctx context.Context, tx *entity.Transaction) error
	// GetByID devuelve nil, nil cuando no existe.
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	// List devuelve los movimientos en orden de creación.
	List(ctx context.Context, filter TransactionFilter) ([]*entity.Transaction, error)
}

// TransactionFilter filtros de listado y reporte. Campos vacíos no filtran.
// Requester y Project comparan por subcadena sin distinguir mayúsculas.
type TransactionFilter struct {
	Type      entity.TransactionType
	From      *time.Time
	To        *time.Time
	Sector    string
	Requester string
	Project   string
}

// Match indica si tx cumple el filtro. Los adaptadores que no filtran en SQL lo usan directamente.
func (f TransactionFilter) Match(tx *entity.Transaction) bool {
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.From != nil && tx.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && tx.Date.After(*f.To) {
		return false
	}
	if f.Sector != "" && tx.Sector != f.Sector {
		return false
	}
	if f.Requester != "" && !containsFold(tx.Requester, f.Requester) {
		return false
	}
	if f.Project != "" && !containsFold(tx.ProjectDestination, f.Project) {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
