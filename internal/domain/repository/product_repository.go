package repository

import (
	"context"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	// Create persiste un producto nuevo. Devuelve *domain.DuplicateProductError si el código
	// (sensible a mayúsculas) o el nombre (insensible) ya existen.
	Create(ctx context.Context, product *entity.Product) error
	// GetByID devuelve nil, nil cuando el producto no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// List devuelve todos los productos en orden estable (creación, luego código).
	List(ctx context.Context) ([]*entity.Product, error)
	// Delete elimina el producto. Los movimientos históricos conservan su snapshot.
	Delete(ctx context.Context, id string) error

	// GetForUpdate bloquea y devuelve los productos indicados (orden ascendente de id).
	// Los ids inexistentes no aparecen en el mapa. Solo tiene efecto dentro de TxRunner.
	GetForUpdate(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	// ApplyMutation reemplaza stock y costos si la versión coincide. Devuelve
	// *domain.ProductNotFoundError si el producto desapareció y domain.ErrConflict si la versión cambió.
	ApplyMutation(ctx context.Context, id string, version int64, m entity.StockMutation) error
}
