package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/komplek-api/internal/application/billing"
	"github.com/jhoicas/komplek-api/internal/application/dto"
	"github.com/jhoicas/komplek-api/internal/domain"
)

// InvoiceHandler maneja las tagihan (protegido).
type InvoiceHandler struct {
	uc    *billing.InvoiceUseCase
	pdfUC *billing.PDFUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase, pdfUC *billing.PDFUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, pdfUC: pdfUC}
}

// List godoc
// @Summary      Listar tagihan
// @Description  Un residente solo ve sus propias tagihan; el administrador ve todo el cluster.
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        iuran_id     query  string  false  "ID del iuran"
// @Param        resident_id  query  string  false  "ID del residente"
// @Param        period       query  string  false  "YYYY-MM"
// @Param        status       query  string  false  "pending|paid|overdue|cancelled"
// @Success      200  {object}  dto.InvoiceListResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var q dto.InvoiceListRequest
	if err := c.QueryParser(&q); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.List(c.UserContext(), GetActor(c), GetClusterID(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetActor(c), GetClusterID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Pay POST /api/invoices/:id/pay
func (h *InvoiceHandler) Pay(c *fiber.Ctx) error {
	out, err := h.uc.Pay(c.UserContext(), GetActor(c), GetClusterID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Cancel POST /api/invoices/:id/cancel
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), GetActor(c), GetClusterID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// MarkOverdue POST /api/invoices/overdue
func (h *InvoiceHandler) MarkOverdue(c *fiber.Ctx) error {
	out, err := h.uc.MarkOverdue(c.UserContext(), GetActor(c), GetClusterID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Balance GET /api/invoices/:id/balance
func (h *InvoiceHandler) Balance(c *fiber.Ctx) error {
	out, err := h.uc.VerifyBalance(c.UserContext(), GetActor(c), GetClusterID(c), c.Params("id"))
	if err != nil && !errors.Is(err, domain.ErrUnbalancedLedger) {
		return writeError(c, err)
	}
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(out)
	}
	return c.JSON(out)
}

// DownloadPDF godoc
// @Summary      Descargar PDF de la tagihan
// @Tags         invoices
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la tagihan"
// @Success      200  {file}    binary
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.pdfUC.DownloadInvoicePDF(c.UserContext(), GetActor(c), GetClusterID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
