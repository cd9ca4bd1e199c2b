package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
)

// ReportHandler reportes de stock y de movimientos (protegido).
type ReportHandler struct {
	uc  *inventory.ReportUseCase
	loc *time.Location
	log zerolog.Logger
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *inventory.ReportUseCase, loc *time.Location, log zerolog.Logger) *ReportHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportHandler{uc: uc, loc: loc, log: log}
}

// Stock godoc
// @Summary      Valor del inventario y productos bajo el mínimo
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockReportDTO
// @Router       /api/reports/stock [get]
func (h *ReportHandler) Stock(c *fiber.Ctx) error {
	out, err := h.uc.StockReport(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Totales de movimientos filtrados
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        type       query  string  false  "receipt | issue | return"
// @Param        from       query  string  false  "fecha inicial"
// @Param        to         query  string  false  "fecha final inclusiva"
// @Param        sector     query  string  false  "sector"
// @Param        requester  query  string  false  "solicitante"
// @Param        project    query  string  false  "proyecto/destino"
// @Success      200  {object}  dto.MovementReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/movements [get]
func (h *ReportHandler) Movements(c *fiber.Ctx) error {
	filter, err := parseFilter(c, h.loc)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.MovementReport(c.Context(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
