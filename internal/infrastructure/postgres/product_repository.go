package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, code, name, specification, description, unit, min_stock, current_stock,
	unit_price, average_price, category, version, created_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.Specification, &p.Description, &p.Unit, &p.MinStock, &p.CurrentStock,
		&p.UnitPrice, &p.AveragePrice, &p.Category, &p.Version, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto. Los índices únicos resuelven la carrera entre altas concurrentes.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `, name_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Code, product.Name, product.Specification, product.Description, product.Unit,
		product.MinStock, product.CurrentStock, product.UnitPrice, product.AveragePrice, product.Category,
		product.Version, product.CreatedAt, entity.NameKey(product.Name),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicateProduct(err, product)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// List lista el catálogo completo en orden de alta.
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at, code`
	rows, err := r.q.Query(ctx, query)
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

// Delete elimina un producto por ID.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	return nil
}

// GetForUpdate bloquea las filas (SELECT FOR UPDATE) en orden de id para que dos lotes
// con productos en común no se interbloqueen.
func (r *ProductRepo) GetForUpdate(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get products for update: %w", err)
	}
	defer rows.Close()
	out := make(map[string]*entity.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// ApplyMutation actualiza stock y costos con control de versión.
func (r *ProductRepo) ApplyMutation(ctx context.Context, id string, version int64, m entity.StockMutation) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE products
		SET current_stock = $3, unit_price = $4, average_price = $5, version = version + 1
		WHERE id = $1 AND version = $2`,
		id, version, m.CurrentStock, m.UnitPrice, m.AveragePrice,
	)
	if err != nil {
		return fmt.Errorf("apply mutation: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("apply mutation: %w", err)
	}
	if !exists {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	return domain.ErrConflict
}
