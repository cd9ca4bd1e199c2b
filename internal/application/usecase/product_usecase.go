package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	appinventory "github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// codeAttempts reintentos de asignación automática cuando otro alta tomó el mismo código.
const codeAttempts = 3

// ProductUseCase casos de uso del catálogo. Stock y costos se manejan vía movimientos.
type ProductUseCase struct {
	repo      repository.ProductRepository
	txRunner  appinventory.TxRunner
	allocator *inventory.CodeAllocator
	timeout   time.Duration // 0 = sin límite propio
	log       zerolog.Logger
	now       func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	txRunner appinventory.TxRunner,
	allocator *inventory.CodeAllocator,
	timeout time.Duration,
	log zerolog.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		repo:      repo,
		txRunner:  txRunner,
		allocator: allocator,
		timeout:   timeout,
		log:       log.With().Str("component", "catalog").Logger(),
		now:       time.Now,
	}
}

// Create crea un producto. AveragePrice inicia igual a UnitPrice.
// Con Code vacío se asigna el siguiente ProdNNN del catálogo.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidation(domain.RuleProductField, "nombre requerido")
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = entity.UnitUnit
	}
	if !entity.IsValidUnit(unit) {
		return nil, domain.NewValidation(domain.RuleProductField, "unidad inválida: %q", unit)
	}
	if in.MinStock.IsNegative() || in.CurrentStock.IsNegative() || in.UnitPrice.IsNegative() {
		return nil, domain.NewValidation(domain.RuleProductField, "stock mínimo, stock y precio no pueden ser negativos")
	}

	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()

	code := strings.TrimSpace(in.Code)
	auto := code == ""
	product := &entity.Product{
		ID:            uuid.New().String(),
		Name:          name,
		Specification: strings.TrimSpace(in.Specification),
		Description:   strings.TrimSpace(in.Description),
		Unit:          unit,
		MinStock:      in.MinStock,
		CurrentStock:  in.CurrentStock,
		UnitPrice:     in.UnitPrice,
		AveragePrice:  in.UnitPrice,
		Category:      strings.TrimSpace(in.Category),
		CreatedAt:     uc.now().UTC(),
	}

	for attempt := 1; ; attempt++ {
		if auto {
			next, err := uc.nextCode(ctx)
			if err != nil {
				return nil, err
			}
			code = next
		}
		product.Code = code

		err := uc.repo.Create(ctx, product)
		if err == nil {
			break
		}
		var dup *domain.DuplicateProductError
		if auto && errors.As(err, &dup) && dup.Field == "code" && attempt < codeAttempts {
			uc.log.Debug().Str("code", code).Int("attempt", attempt).Msg("código tomado, reasignando")
			continue
		}
		return nil, domain.Persistence("crear producto", err)
	}

	uc.log.Info().Str("product_id", product.ID).Str("code", product.Code).Msg("producto creado")
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID. Devuelve *domain.ProductNotFoundError si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("obtener producto", err)
	}
	if product == nil {
		return nil, &domain.ProductNotFoundError{ProductID: id}
	}
	return ToProductResponse(product), nil
}

// List lista todo el catálogo en orden estable.
func (uc *ProductUseCase) List(ctx context.Context) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, domain.Persistence("listar productos", err)
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return &dto.ProductListResponse{Items: items, Total: len(items)}, nil
}

// NextCode código que recibiría el próximo alta automática.
func (uc *ProductUseCase) NextCode(ctx context.Context) (string, error) {
	return uc.nextCode(ctx)
}

func (uc *ProductUseCase) nextCode(ctx context.Context) (string, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return "", domain.Persistence("asignar código", err)
	}
	return uc.allocator.Next(list), nil
}

// Delete elimina un producto solo si su stock es cero. Bloquea la fila para que
// ningún movimiento concurrente lo altere entre la verificación y el borrado.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()

	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, _ repository.TransactionRepository) error {
		locked, err := productRepo.GetForUpdate(ctx, []string{id})
		if err != nil {
			return err
		}
		p := locked[id]
		if p == nil {
			return &domain.ProductNotFoundError{ProductID: id}
		}
		if !p.CurrentStock.Equal(decimal.Zero) {
			return domain.ErrConflict
		}
		return productRepo.Delete(ctx, id)
	})
	if err != nil {
		return domain.Persistence("eliminar producto", err)
	}
	uc.log.Info().Str("product_id", id).Msg("producto eliminado")
	return nil
}

// withTimeout acota las escrituras del catálogo con el mismo límite que los movimientos.
func (uc *ProductUseCase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, uc.timeout)
}

// ToProductResponse convierte la entidad al DTO de salida.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:            p.ID,
		Code:          p.Code,
		Name:          p.Name,
		Specification: p.Specification,
		Description:   p.Description,
		Unit:          p.Unit,
		MinStock:      p.MinStock,
		CurrentStock:  p.CurrentStock,
		UnitPrice:     p.UnitPrice,
		AveragePrice:  p.AveragePrice,
		Category:      p.Category,
		CreatedAt:     p.CreatedAt,
	}
}
