package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `id, type, date, vendor, invoice_number, requester, sector, project_destination,
	destination, signature, accepted, total_value, created_by`

// TransactionRepo libro append-only sobre SQLite.
type TransactionRepo struct {
	q querier
}

func (r *TransactionRepo) Append(ctx context.Context, tx *entity.Transaction) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, string(tx.Type), formatTime(tx.Date), tx.Vendor, tx.InvoiceNumber, tx.Requester, tx.Sector,
		tx.ProjectDestination, tx.Destination, tx.Signature, tx.Accepted, tx.TotalValue, tx.CreatedBy,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	for i, it := range tx.Items {
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO transaction_items (transaction_id, line_no, product_id, product_name, product_specification,
				quantity, unit_price, total_price)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			tx.ID, i+1, it.ProductID, it.ProductName, it.ProductSpecification, it.Quantity, it.UnitPrice, it.TotalPrice,
		)
		if err != nil {
			return fmt.Errorf("insert transaction item: %w", err)
		}
	}
	return nil
}

func scanTransaction(row rowScanner) (*entity.Transaction, error) {
	var t entity.Transaction
	var typ, date string
	err := row.Scan(
		&t.ID, &typ, &date, &t.Vendor, &t.InvoiceNumber, &t.Requester, &t.Sector, &t.ProjectDestination,
		&t.Destination, &t.Signature, &t.Accepted, &t.TotalValue, &t.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	t.Type = entity.TransactionType(typ)
	if t.Date, err = parseTime(date); err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}
	return &t, nil
}

func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Transaction{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// List filtra por tipo, rango y sector en SQL; las búsquedas por subcadena usan
// TransactionFilter.Match porque lower() de SQLite solo pliega ASCII.
func (r *TransactionRepo) List(ctx context.Context, filter repository.TransactionFilter) ([]*entity.Transaction, error) {
	var conds []string
	var args []any
	if filter.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.From != nil {
		conds = append(conds, "date >= ?")
		args = append(args, formatTime(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, "date <= ?")
		args = append(args, formatTime(*filter.To))
	}
	if filter.Sector != "" {
		conds = append(conds, "sector = ?")
		args = append(args, filter.Sector)
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY seq`

	rows, err := r.q.QueryContext(ctx, query, args...)
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
		if filter.Match(t) {
			list = append(list, t)
		}
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

func (r *TransactionRepo) loadItems(ctx context.Context, txs []*entity.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Transaction, len(txs))
	args := make([]any, 0, len(txs))
	for _, t := range txs {
		byID[t.ID] = t
		args = append(args, t.ID)
	}
	rows, err := r.q.QueryContext(ctx, `
		SELECT transaction_id, product_id, product_name, product_specification, quantity, unit_price, total_price
		FROM transaction_items WHERE transaction_id IN (`+placeholders(len(args))+`)
		ORDER BY transaction_id, line_no`, args...)
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
