package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/komplek-api/internal/domain/entity"
)

// LedgerViewFilter filtros de la vista de libro mayor.
type LedgerViewFilter struct {
	Period      string
	ResidentID  string
	AccountType entity.AccountType
}

// LedgerViewRow fila del join ledgers → chart_of_accounts, ledgers → invoices → profiles.
// Los campos de tagihan y residente quedan vacíos en ajustes sin tagihan.
type LedgerViewRow struct {
	EntryID       string
	ClusterID     string
	PostingRef    string
	Direction     entity.Direction
	Amount        decimal.Decimal
	Description   string
	AccountID     string
	AccountCode   string
	AccountName   string
	AccountType   entity.AccountType
	InvoiceID     string
	InvoiceStatus entity.InvoiceStatus
	BillingPeriod string
	ResidentID    string
	ResidentName  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// InvoiceWithLedger tagihan con sus entradas de libro mayor.
type InvoiceWithLedger struct {
	Invoice      entity.Invoice
	ResidentName string
	Entries      []entity.LedgerEntry
}

// ReportRepository consultas de solo lectura para el compilador del libro mayor.
// La forma del join es parte del contrato; el orden y la paginación los aplica el compilador.
type ReportRepository interface {
	ListLedgerView(ctx context.Context, clusterID string, filter LedgerViewFilter) ([]LedgerViewRow, error)
	ListInvoicesWithLedger(ctx context.Context, clusterID, period string) ([]InvoiceWithLedger, error)
}
