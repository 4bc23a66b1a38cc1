package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/komplek-api/internal/application/accounting"
	"github.com/jhoicas/komplek-api/internal/application/dto"
	"github.com/jhoicas/komplek-api/internal/application/reporting"
)

// LedgerHandler expone el libro mayor compilado y los asientos manuales.
type LedgerHandler struct {
	compiler    *reporting.LedgerCompiler
	adjustments *accounting.AdjustmentUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(compiler *reporting.LedgerCompiler, adjustments *accounting.AdjustmentUseCase) *LedgerHandler {
	return &LedgerHandler{compiler: compiler, adjustments: adjustments}
}

// List godoc
// @Summary      Libro mayor compilado
// @Description  Filas ordenadas por updated_at descendente, filtradas por el alcance del actor.
// @Tags         ledger
// @Produce      json
// @Security     BearerAuth
// @Param        period        query  string  false  "YYYY-MM"
// @Param        resident_id   query  string  false  "ID del residente"
// @Param        account_type  query  string  false  "asset|liability|equity|revenue|expense"
// @Param        limit         query  int     false  "máximo 100"
// @Param        offset        query  int     false  "desplazamiento"
// @Success      200  {object}  dto.LedgerPageResponse
// @Router       /api/ledger [get]
func (h *LedgerHandler) List(c *fiber.Ctx) error {
	var q dto.LedgerQuery
	if err := c.QueryParser(&q); err != nil {
		return invalidBody(c)
	}
	out, err := h.compiler.Compile(c.UserContext(), GetActor(c), GetClusterID(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Statements GET /api/ledger/statements?period=YYYY-MM
func (h *LedgerHandler) Statements(c *fiber.Ctx) error {
	out, err := h.compiler.Statements(c.UserContext(), GetActor(c), GetClusterID(c), c.Query("period"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PostAdjustment godoc
// @Summary      Asiento manual
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.AdjustmentRequest  true  "líneas balanceadas"
// @Success      201   {object}  dto.PostingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/adjustments [post]
func (h *LedgerHandler) PostAdjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.adjustments.Post(c.UserContext(), GetActor(c), GetClusterID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
