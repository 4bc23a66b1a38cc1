package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerQuery query de GET /api/ledger.
type LedgerQuery struct {
	Period      string `query:"period"`
	ResidentID  string `query:"resident_id"`
	AccountType string `query:"account_type" validate:"omitempty,oneof=asset liability equity revenue expense"`
	PageRequest
}

// AccountRef cuenta embebida en una fila del libro mayor.
type AccountRef struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// LedgerRowResponse fila compilada del libro mayor.
type LedgerRowResponse struct {
	EntryID       string          `json:"entry_id"`
	PostingRef    string          `json:"posting_ref"`
	Direction     string          `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	Account       AccountRef      `json:"account"`
	InvoiceID     string          `json:"invoice_id,omitempty"`
	InvoiceStatus string          `json:"invoice_status,omitempty"`
	BillingPeriod string          `json:"billing_period,omitempty"`
	ResidentID    string          `json:"resident_id,omitempty"`
	ResidentName  string          `json:"resident_name,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// LedgerPageResponse página del libro mayor ordenada por updated_at desc.
type LedgerPageResponse struct {
	Items []LedgerRowResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// InvoiceStatementResponse estado de cuenta de una tagihan.
type InvoiceStatementResponse struct {
	InvoiceID     string          `json:"invoice_id"`
	ResidentID    string          `json:"resident_id"`
	ResidentName  string          `json:"resident_name,omitempty"`
	BillingPeriod string          `json:"billing_period"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Balanced      bool            `json:"balanced"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// AdjustmentLineRequest línea de un asiento manual.
type AdjustmentLineRequest struct {
	AccountCode string          `json:"account_code" validate:"required,max=20"`
	Direction   string          `json:"direction" validate:"required,oneof=debit credit"`
	Amount      decimal.Decimal `json:"amount"`
}

// AdjustmentRequest body para POST /api/ledger/adjustments.
type AdjustmentRequest struct {
	Description string                  `json:"description" validate:"required,max=255"`
	Lines       []AdjustmentLineRequest `json:"lines" validate:"required,min=2,dive"`
}

// LedgerEntryResponse entrada posteada.
type LedgerEntryResponse struct {
	ID                string          `json:"id"`
	InvoiceID         string          `json:"invoice_id,omitempty"`
	ChartOfAccountsID string          `json:"chart_of_accounts_id"`
	Direction         string          `json:"direction"`
	Amount            decimal.Decimal `json:"amount"`
	Description       string          `json:"description,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// PostingResponse asiento balanceado.
type PostingResponse struct {
	PostingRef string                `json:"posting_ref"`
	Entries    []LedgerEntryResponse `json:"entries"`
}
