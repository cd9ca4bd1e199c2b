package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP de movimientos (protegido).
type InventoryHandler struct {
	uc  *inventory.LedgerUseCase
	loc *time.Location
	log zerolog.Logger
}

// NewInventoryHandler construye el handler. loc define los límites de día de los filtros (nil = UTC).
func NewInventoryHandler(uc *inventory.LedgerUseCase, loc *time.Location, log zerolog.Logger) *InventoryHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &InventoryHandler{uc: uc, loc: loc, log: log}
}

// Submit godoc
// @Summary      Registrar movimiento (entrada, salida o devolución)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitMovementRequest  true  "type, items y campos de contexto según el tipo"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *InventoryHandler) Submit(c *fiber.Ctx) error {
	operator := GetOperator(c)
	if operator == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "operador no identificado"})
	}
	var in dto.SubmitMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	tx, err := h.uc.SubmitFromRequest(c.Context(), operator, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inventory.ToTransactionResponse(tx))
}

// GetByID godoc
// @Summary      Obtener movimiento por ID
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [get]
func (h *InventoryHandler) GetByID(c *fiber.Ctx) error {
	tx, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if tx == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "movimiento no encontrado"})
	}
	return c.JSON(inventory.ToTransactionResponse(tx))
}

// List godoc
// @Summary      Listar movimientos en orden de creación
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        type       query  string  false  "receipt | issue | return (acepta entrada, saida, devolucao)"
// @Param        from       query  string  false  "fecha inicial (YYYY-MM-DD o RFC3339)"
// @Param        to         query  string  false  "fecha final inclusiva (YYYY-MM-DD o RFC3339)"
// @Param        sector     query  string  false  "sector exacto"
// @Param        requester  query  string  false  "subcadena del solicitante"
// @Param        project    query  string  false  "subcadena del proyecto/destino"
// @Success      200  {object}  dto.TransactionListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	filter, err := parseFilter(c, h.loc)
	if err != nil {
		return writeError(c, h.log, err)
	}
	list, err := h.uc.List(c.Context(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.TransactionResponse, 0, len(list))
	for _, tx := range list {
		items = append(items, inventory.ToTransactionResponse(tx))
	}
	return c.JSON(dto.TransactionListResponse{Items: items, Total: len(items)})
}

// parseFilter lee los filtros de query comunes a listados y reportes.
func parseFilter(c *fiber.Ctx, loc *time.Location) (repository.TransactionFilter, error) {
	var f repository.TransactionFilter
	if raw := strings.TrimSpace(c.Query("type")); raw != "" {
		t, ok := entity.ParseTransactionType(raw)
		if !ok {
			return f, domain.NewValidation(domain.RuleUnknownType, "tipo de movimiento desconocido: %q", raw)
		}
		f.Type = t
	}
	var err error
	if f.From, err = parseDate(c.Query("from"), false, loc); err != nil {
		return f, err
	}
	if f.To, err = parseDate(c.Query("to"), true, loc); err != nil {
		return f, err
	}
	f.Sector = strings.TrimSpace(c.Query("sector"))
	f.Requester = strings.TrimSpace(c.Query("requester"))
	f.Project = strings.TrimSpace(c.Query("project"))
	return f, nil
}

// parseDate acepta YYYY-MM-DD (día civil en loc) o RFC3339. Con endOfDay, una fecha sin hora
// cubre el día completo. El resultado siempre se devuelve en UTC.
func parseDate(raw string, endOfDay bool, loc *time.Location) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return nil, domain.NewValidation("date_invalid", "fecha inválida: %q", raw)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	t = t.UTC()
	return &t, nil
}
