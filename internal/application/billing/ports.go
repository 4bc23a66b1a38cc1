package billing

import (
	"context"

	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
)

// BillingTxRunner ejecuta fn dentro de una transacción que abarca tagihan, libro mayor y plan de cuentas.
// Si fn devuelve error, nada de lo escrito en la transacción persiste.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		ledgerRepo repository.LedgerRepository,
		coaRepo repository.ChartOfAccountsRepository,
	) error) error
}

// InvoicePDF datos necesarios para renderizar una tagihan.
type InvoicePDF struct {
	Invoice  *entity.Invoice
	Iuran    *entity.Iuran
	Cluster  *entity.Cluster
	Resident *entity.Profile
	Currency string
}

// InvoicePDFGenerator puerto de salida para la representación PDF de una tagihan.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, data InvoicePDF) ([]byte, error)
}
