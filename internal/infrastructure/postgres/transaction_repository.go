package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `id, type, date, vendor, invoice_number, requester, sector, project_destination,
	destination, signature, accepted, total_value, created_by`

// TransactionRepo libro append-only sobre PostgreSQL (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Append inserta cabecera y líneas. Debe ejecutarse dentro de una tx para que sea atómico.
func (r *TransactionRepo) Append(ctx context.Context, tx *entity.Transaction) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		tx.ID, string(tx.Type), tx.Date, tx.Vendor, tx.InvoiceNumber, tx.Requester, tx.Sector,
		tx.ProjectDestination, tx.Destination, tx.Signature, tx.Accepted, tx.TotalValue, tx.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert transaction: %w", err)
	}

	for i, it := range tx.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO transaction_items (transaction_id, line_no, product_id, product_name, product_specification,
				quantity, unit_price, total_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			tx.ID, i+1, it.ProductID, it.ProductName, it.ProductSpecification, it.Quantity, it.UnitPrice, it.TotalPrice,
		)
		if err != nil {
			return fmt.Errorf("insert transaction item: %w", err)
		}
	}
	return nil
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	var typ string
	err := row.Scan(
		&t.ID, &typ, &t.Date, &t.Vendor, &t.InvoiceNumber, &t.Requester, &t.Sector, &t.ProjectDestination,
		&t.Destination, &t.Signature, &t.Accepted, &t.TotalValue, &t.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	t.Type = entity.TransactionType(typ)
	t.Date = t.Date.UTC()
	return &t, nil
}

// GetByID obtiene un movimiento con sus líneas.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Transaction{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// List filtra en SQL y devuelve en orden de creación.
func (r *TransactionRepo) List(ctx context.Context, filter repository.TransactionFilter) ([]*entity.Transaction, error) {
	where, args := filterClause(filter)
	query := `SELECT ` + transactionColumns + ` FROM transactions` + where + ` ORDER BY seq`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	list := make([]*entity.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func filterClause(f repository.TransactionFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Type != "" {
		add("type = $%d", string(f.Type))
	}
	if f.From != nil {
		add("date >= $%d", *f.From)
	}
	if f.To != nil {
		add("date <= $%d", *f.To)
	}
	if f.Sector != "" {
		add("sector = $%d", f.Sector)
	}
	if f.Requester != "" {
		add("strpos(lower(requester), lower($%d)) > 0", f.Requester)
	}
	if f.Project != "" {
		add("strpos(lower(project_destination), lower($%d)) > 0", f.Project)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// loadItems completa las líneas de todos los movimientos con una sola consulta.
func (r *TransactionRepo) loadItems(ctx context.Context, txs []*entity.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Transaction, len(txs))
	ids := make([]string, 0, len(txs))
	for _, t := range txs {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT transaction_id, product_id, product_name, product_specification, quantity, unit_price, total_price
		FROM transaction_items WHERE transaction_id = ANY($1)
		ORDER BY transaction_id, line_no`, ids)
	if err != nil {
		return fmt.Errorf("list transaction items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var txID string
		var it entity.TransactionItem
		if err := rows.Scan(&txID, &it.ProductID, &it.ProductName, &it.ProductSpecification,
			&it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return fmt.Errorf("scan transaction item: %w", err)
		}
		if t := byID[txID]; t != nil {
			t.Items = append(t.Items, it)
		}
	}
	return rows.Err()
}
