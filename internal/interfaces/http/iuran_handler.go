package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/komplek-api/internal/application/billing"
	"github.com/jhoicas/komplek-api/internal/application/dto"
	"github.com/jhoicas/komplek-api/internal/application/iuran"
)

// IuranHandler maneja definiciones de iuran y su generación de tagihan.
type IuranHandler struct {
	uc        *iuran.UseCase
	generator *billing.Generator
}

// NewIuranHandler construye el handler.
func NewIuranHandler(uc *iuran.UseCase, generator *billing.Generator) *IuranHandler {
	return &IuranHandler{uc: uc, generator: generator}
}

// Create godoc
// @Summary      Crear iuran
// @Tags         iuran
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateIuranRequest  true  "definición"
// @Success      201   {object}  dto.IuranResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/iuran [post]
func (h *IuranHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateIuranRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), GetClusterID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/iuran?limit=&offset=
func (h *IuranHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.List(c.UserContext(), GetActor(c), GetClusterID(c), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/iuran/:id
func (h *IuranHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetActor(c), GetClusterID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar iuran
// @Description  amount y participants son inmutables una vez generada alguna tagihan.
// @Tags         iuran
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                  true  "ID del iuran"
// @Param        body  body  dto.UpdateIuranRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.IuranResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/iuran/{id} [patch]
func (h *IuranHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateIuranRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), GetClusterID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Deactivate POST /api/iuran/:id/deactivate
func (h *IuranHandler) Deactivate(c *fiber.Ctx) error {
	out, err := h.uc.Deactivate(c.UserContext(), GetActor(c), GetClusterID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Generate godoc
// @Summary      Generar tagihan del periodo
// @Description  Idempotente: repetir la corrida devuelve las tagihan existentes sin duplicarlas.
// @Tags         iuran
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                       true  "ID del iuran"
// @Param        body  body  dto.GenerateInvoicesRequest  true  "periodo YYYY-MM"
// @Success      200   {object}  dto.GenerateInvoicesResponse
// @Success      201   {object}  dto.GenerateInvoicesResponse
// @Success      207   {object}  dto.GenerateInvoicesResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/iuran/{id}/generate [post]
func (h *IuranHandler) Generate(c *fiber.Ctx) error {
	var in dto.GenerateInvoicesRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := dto.Validate(in); err != nil {
		return writeError(c, err)
	}
	res, err := h.generator.Generate(c.UserContext(), GetActor(c), GetClusterID(c), c.Params("id"), in.Period)
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusOK
	switch {
	case len(res.Failed) > 0:
		status = fiber.StatusMultiStatus
	case res.Created > 0:
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(billing.ToGenerateResponse(res))
}
