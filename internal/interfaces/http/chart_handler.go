package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/komplek-api/internal/application/accounting"
	"github.com/jhoicas/komplek-api/internal/application/dto"
)

// ChartHandler CRUD del plan de cuentas del cluster.
type ChartHandler struct {
	uc *accounting.ChartUseCase
}

// NewChartHandler construye el handler.
func NewChartHandler(uc *accounting.ChartUseCase) *ChartHandler {
	return &ChartHandler{uc: uc}
}

// Create POST /api/chart-of-accounts
func (h *ChartHandler) Create(c *fiber.Ctx) error {
	var in dto.AccountRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), GetClusterID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/chart-of-accounts
func (h *ChartHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetActor(c), GetClusterID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/chart-of-accounts/:id
func (h *ChartHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetActor(c), GetClusterID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar cuenta
// @Description  Rechazado con 409 si la cuenta ya tiene movimientos en el libro mayor.
// @Tags         chart-of-accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string              true  "ID de la cuenta"
// @Param        body  body  dto.AccountRequest  true  "code, name, type"
// @Success      200   {object}  dto.AccountResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/chart-of-accounts/{id} [put]
func (h *ChartHandler) Update(c *fiber.Ctx) error {
	var in dto.AccountRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), GetClusterID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/chart-of-accounts/:id
func (h *ChartHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetActor(c), GetClusterID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
