package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/inventory"
)

// SubmitFromRequest adapta el request HTTP al caso de uso Submit(ctx, MovementRequest).
// operator es el usuario autenticado; queda como created_by del registro.
func (uc *LedgerUseCase) SubmitFromRequest(ctx context.Context, operator string, in dto.SubmitMovementRequest) (*entity.Transaction, error) {
	t, ok := entity.ParseTransactionType(strings.TrimSpace(in.Type))
	if !ok {
		return nil, domain.NewValidation(domain.RuleUnknownType, "tipo de movimiento desconocido: %q", in.Type)
	}

	lines := make([]MovementLine, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, MovementLine{
			ProductID: strings.TrimSpace(it.ProductID),
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	return uc.Submit(ctx, MovementRequest{
		Type:  t,
		Lines: lines,
		Header: inventory.Header{
			Vendor:             strings.TrimSpace(in.Vendor),
			InvoiceNumber:      strings.TrimSpace(in.InvoiceNumber),
			Requester:          strings.TrimSpace(in.Requester),
			Sector:             strings.TrimSpace(in.Sector),
			ProjectDestination: strings.TrimSpace(in.ProjectDestination),
			Destination:        strings.TrimSpace(in.Destination),
			Signature:          in.Signature,
			Accepted:           in.Accepted,
		},
		CreatedBy: operator,
	})
}

// ToTransactionResponse convierte la entidad al DTO de salida.
func ToTransactionResponse(tx *entity.Transaction) dto.TransactionResponse {
	items := make([]dto.TransactionItemResponse, 0, len(tx.Items))
	for _, it := range tx.Items {
		items = append(items, dto.TransactionItemResponse{
			ProductID:            it.ProductID,
			ProductName:          it.ProductName,
			ProductSpecification: it.ProductSpecification,
			Quantity:             it.Quantity,
			UnitPrice:            it.UnitPrice,
			TotalPrice:           it.TotalPrice,
		})
	}
	return dto.TransactionResponse{
		ID:                 tx.ID,
		Type:               string(tx.Type),
		Date:               tx.Date,
		Vendor:             tx.Vendor,
		InvoiceNumber:      tx.InvoiceNumber,
		Requester:          tx.Requester,
		Sector:             tx.Sector,
		ProjectDestination: tx.ProjectDestination,
		Destination:        tx.Destination,
		Signature:          tx.Signature,
		Accepted:           tx.Accepted,
		TotalValue:         tx.TotalValue,
		Items:              items,
		CreatedBy:          tx.CreatedBy,
	}
}
