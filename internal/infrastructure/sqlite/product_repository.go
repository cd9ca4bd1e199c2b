package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, code, name, specification, description, unit, min_stock, current_stock,
	unit_price, average_price, category, version, created_at`

// ProductRepo catálogo sobre SQLite (usable con *sql.DB o *sql.Tx).
type ProductRepo struct {
	q querier
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var p entity.Product
	var createdAt string
	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.Specification, &p.Description, &p.Unit, &p.MinStock, &p.CurrentStock,
		&p.UnitPrice, &p.AveragePrice, &p.Category, &p.Version, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	return &p, nil
}

func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`, name_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.Code, product.Name, product.Specification, product.Description, product.Unit,
		product.MinStock, product.CurrentStock, product.UnitPrice, product.AveragePrice, product.Category,
		product.Version, formatTime(product.CreatedAt), entity.NameKey(product.Name),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return duplicateProduct(err, product)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY seq`)
}

func (r *ProductRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	return nil
}

// GetForUpdate dentro de TxRunner la transacción ya tiene el lock de escritura (BEGIN IMMEDIATE).
func (r *ProductRepo) GetForUpdate(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	list, err := r.query(ctx, `SELECT `+productColumns+` FROM products WHERE id IN (`+placeholders(len(ids))+`) ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

func (r *ProductRepo) ApplyMutation(ctx context.Context, id string, version int64, m entity.StockMutation) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE products
		SET current_stock = ?, unit_price = ?, average_price = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		m.CurrentStock, m.UnitPrice, m.AveragePrice, id, version,
	)
	if err != nil {
		return fmt.Errorf("apply mutation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = ?)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("apply mutation: %w", err)
	}
	if !exists {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	return domain.ErrConflict
}
