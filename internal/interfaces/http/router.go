package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/komplek-api/internal/application/accounting"
	"github.com/jhoicas/komplek-api/internal/application/auth"
	"github.com/jhoicas/komplek-api/internal/application/billing"
	"github.com/jhoicas/komplek-api/internal/application/iuran"
	"github.com/jhoicas/komplek-api/internal/application/reporting"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	Resolver    actorResolver
	IuranUC     *iuran.UseCase
	Generator   *billing.Generator
	InvoiceUC   *billing.InvoiceUseCase
	PDFUC       *billing.PDFUseCase
	Compiler    *reporting.LedgerCompiler
	Adjustments *accounting.AdjustmentUseCase
	ChartUC     *accounting.ChartUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (Bearer Token + permisos del perfil)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), ResolveActor(deps.Resolver))
	protected.Get("/auth/me", authHandler.Me)

	// Iuran
	iuranGroup := protected.Group("/iuran")
	iuranHandler := NewIuranHandler(deps.IuranUC, deps.Generator)
	iuranGroup.Post("/", iuranHandler.Create)
	iuranGroup.Get("/", iuranHandler.List)
	iuranGroup.Get("/:id", iuranHandler.GetByID)
	iuranGroup.Patch("/:id", iuranHandler.Update)
	iuranGroup.Post("/:id/deactivate", iuranHandler.Deactivate)
	iuranGroup.Post("/:id/generate", iuranHandler.Generate)

	// Tagihan
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.PDFUC)
	invoices.Get("/", invoiceHandler.List)
	invoices.Post("/overdue", invoiceHandler.MarkOverdue)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
	invoices.Get("/:id/balance", invoiceHandler.Balance)
	invoices.Post("/:id/pay", invoiceHandler.Pay)
	invoices.Post("/:id/cancel", invoiceHandler.Cancel)

	// Libro mayor
	ledgerGroup := protected.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.Compiler, deps.Adjustments)
	ledgerGroup.Get("/", ledgerHandler.List)
	ledgerGroup.Get("/statements", ledgerHandler.Statements)
	ledgerGroup.Post("/adjustments", ledgerHandler.PostAdjustment)

	// Plan de cuentas
	coa := protected.Group("/chart-of-accounts")
	chartHandler := NewChartHandler(deps.ChartUC)
	coa.Post("/", chartHandler.Create)
	coa.Get("/", chartHandler.List)
	coa.Get("/:id", chartHandler.GetByID)
	coa.Put("/:id", chartHandler.Update)
	coa.Delete("/:id", chartHandler.Delete)
}
