package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// GenerateInvoicesRequest body para POST /api/iuran/:id/generate.
type GenerateInvoicesRequest struct {
	Period string `json:"period" validate:"required"` // YYYY-MM
}

// InvoiceResponse tagihan en respuestas.
type InvoiceResponse struct {
	ID            string          `json:"id"`
	IuranID       string          `json:"iuran_id"`
	ClusterID     string          `json:"cluster_id"`
	ResidentID    string          `json:"resident_id"`
	Amount        decimal.Decimal `json:"amount"`
	BillingPeriod string          `json:"billing_period"`
	DueAt         string          `json:"due_at"` // YYYY-MM-DD
	Status        string          `json:"status"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// GenerationFailureDTO participante que no pudo facturarse.
type GenerationFailureDTO struct {
	ResidentID string `json:"resident_id"`
	Error      string `json:"error"`
}

// GenerateInvoicesResponse resultado de una corrida de generación.
// Invoices contiene todas las tagihan del periodo, nuevas y existentes.
type GenerateInvoicesResponse struct {
	IuranID  string                 `json:"iuran_id"`
	Period   string                 `json:"period"`
	Created  int                    `json:"created"`
	Existing int                    `json:"existing"`
	Invoices []InvoiceResponse      `json:"invoices"`
	Failed   []GenerationFailureDTO `json:"failed,omitempty"`
}

// InvoiceListRequest query de GET /api/invoices.
type InvoiceListRequest struct {
	IuranID    string `query:"iuran_id"`
	ResidentID string `query:"resident_id"`
	Period     string `query:"period"`
	Status     string `query:"status" validate:"omitempty,oneof=pending paid overdue cancelled"`
	PageRequest
}

// InvoiceListResponse página de tagihan visibles para el actor.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// OverdueSweepResponse resultado de POST /api/invoices/overdue.
type OverdueSweepResponse struct {
	Marked     int      `json:"marked"`
	InvoiceIDs []string `json:"invoice_ids"`
}

// InvoiceBalanceResponse totales de débito y crédito de una tagihan.
type InvoiceBalanceResponse struct {
	InvoiceID string          `json:"invoice_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Balanced  bool            `json:"balanced"`
}
