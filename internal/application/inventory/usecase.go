package inventory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// LedgerConfig parámetros del motor de movimientos.
type LedgerConfig struct {
	AllowNegativeStock bool
	SubmitTimeout      time.Duration // 0 = sin límite propio
}

// LedgerUseCase registra movimientos (entrada, salida, devolución) de forma transaccional:
// valida, bloquea los productos referenciados, calcula el efecto por línea, aplica y
// agrega el registro inmutable. Todo o nada.
type LedgerUseCase struct {
	txRunner TxRunner
	txRepo   repository.TransactionRepository
	cfg      LedgerConfig
	log      zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	txRepo repository.TransactionRepository,
	cfg LedgerConfig,
	log zerolog.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner: txRunner,
		txRepo:   txRepo,
		cfg:      cfg,
		log:      log.With().Str("component", "ledger").Logger(),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// MovementLine línea solicitada. UnitPrice es obligatorio en entradas; en salidas y devoluciones
// es el snapshot del promedio tomado al agregar la línea (nil = promedio vigente al registrar).
type MovementLine struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice *decimal.Decimal
}

// MovementRequest solicitud de movimiento en lote.
type MovementRequest struct {
	Type      entity.TransactionType
	Lines     []MovementLine
	Header    inventory.Header
	CreatedBy string
}

// Submit valida y registra el movimiento. En error ningún producto ni el libro cambian.
func (uc *LedgerUseCase) Submit(ctx context.Context, req MovementRequest) (*entity.Transaction, error) {
	kind, err := uc.validate(req)
	if err != nil {
		uc.log.Debug().Err(err).Str("type", string(req.Type)).Msg("movimiento rechazado")
		return nil, err
	}

	if uc.cfg.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.cfg.SubmitTimeout)
		defer cancel()
	}

	ids := make([]string, 0, len(req.Lines))
	for _, l := range req.Lines {
		ids = append(ids, l.ProductID)
	}
	sort.Strings(ids)

	policy := inventory.Policy{AllowNegativeStock: uc.cfg.AllowNegativeStock}
	var recorded *entity.Transaction

	err = uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, txRepo repository.TransactionRepository) error {
		// Bloquea las filas de todos los productos del lote antes de calcular.
		locked, err := productRepo.GetForUpdate(ctx, ids)
		if err != nil {
			return err
		}

		type planned struct {
			product  *entity.Product
			mutation entity.StockMutation
		}
		plan := make([]planned, 0, len(req.Lines))
		items := make([]entity.TransactionItem, 0, len(req.Lines))
		total := decimal.Zero

		for _, line := range req.Lines {
			p := locked[line.ProductID]
			if p == nil {
				return &domain.ProductNotFoundError{ProductID: line.ProductID}
			}
			price, err := kind.LinePrice(p, line.UnitPrice)
			if err != nil {
				return err
			}
			m, err := kind.Effect(p, line.Quantity, price, policy)
			if err != nil {
				return err
			}
			lineTotal := line.Quantity.Mul(price)
			items = append(items, entity.TransactionItem{
				ProductID:            p.ID,
				ProductName:          p.Name,
				ProductSpecification: p.Specification,
				Quantity:             line.Quantity,
				UnitPrice:            price,
				TotalPrice:           lineTotal,
			})
			total = total.Add(lineTotal)
			plan = append(plan, planned{product: p, mutation: m})
		}

		// Todas las líneas calcularon sin error: aplicar.
		for _, pl := range plan {
			if err := productRepo.ApplyMutation(ctx, pl.product.ID, pl.product.Version, pl.mutation); err != nil {
				return err
			}
		}

		tx := &entity.Transaction{
			ID:         uc.newID(),
			Type:       kind.Type(),
			Date:       uc.now().UTC(),
			TotalValue: total,
			Items:      items,
			CreatedBy:  strings.TrimSpace(req.CreatedBy),
		}
		kind.Stamp(tx, req.Header)
		if err := txRepo.Append(ctx, tx); err != nil {
			return err
		}
		recorded = tx
		return nil
	})
	if err != nil {
		err = domain.Persistence("registrar movimiento", err)
		uc.log.Debug().Err(err).Str("type", string(req.Type)).Msg("movimiento rechazado")
		return nil, err
	}

	uc.log.Info().
		Str("transaction_id", recorded.ID).
		Str("type", string(recorded.Type)).
		Int("lines", len(recorded.Items)).
		Str("total_value", recorded.TotalValue.String()).
		Str("created_by", recorded.CreatedBy).
		Msg("movimiento registrado")
	return recorded, nil
}

// validate aplica las reglas que no dependen del catálogo.
func (uc *LedgerUseCase) validate(req MovementRequest) (inventory.Kind, error) {
	kind, ok := inventory.KindFor(req.Type)
	if !ok {
		return nil, domain.NewValidation(domain.RuleUnknownType, "tipo de movimiento desconocido: %q", req.Type)
	}
	if len(req.Lines) == 0 {
		return nil, domain.NewValidation(domain.RuleItemsRequired, "el movimiento no tiene líneas")
	}
	if strings.TrimSpace(req.CreatedBy) == "" {
		return nil, domain.NewValidation(domain.RuleOperatorRequired, "operador no identificado")
	}
	if err := kind.Validate(req.Header); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(req.Lines))
	for i, l := range req.Lines {
		if strings.TrimSpace(l.ProductID) == "" {
			return nil, domain.NewValidation(domain.RuleProductField, "línea %d sin product_id", i+1)
		}
		if _, dup := seen[l.ProductID]; dup {
			return nil, domain.NewValidation(domain.RuleDuplicateLine, "producto %s repetido en el lote", l.ProductID)
		}
		seen[l.ProductID] = struct{}{}
		if !l.Quantity.IsPositive() {
			return nil, domain.NewValidation(domain.RuleQuantityPositive, "línea %d: cantidad debe ser positiva", i+1)
		}
	}
	return kind, nil
}

// Get devuelve un movimiento por ID (nil si no existe).
func (uc *LedgerUseCase) Get(ctx context.Context, id string) (*entity.Transaction, error) {
	tx, err := uc.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("obtener movimiento", err)
	}
	return tx, nil
}

// List devuelve los movimientos en orden de creación.
func (uc *LedgerUseCase) List(ctx context.Context, filter repository.TransactionFilter) ([]*entity.Transaction, error) {
	list, err := uc.txRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.Persistence("listar movimientos", err)
	}
	return list, nil
}
