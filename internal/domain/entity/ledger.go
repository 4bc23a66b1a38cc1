package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction lado del asiento.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// Valid informa si d es debit o credit.
func (d Direction) Valid() bool {
	return d == DirectionDebit || d == DirectionCredit
}

// LedgerEntry movimiento contable posteado. InvoiceID vacío = ajuste sin tagihan.
// Las entradas nunca se borran; las correcciones se hacen con asientos compensatorios.
type LedgerEntry struct {
	ID                string
	ClusterID         string
	InvoiceID         string
	ChartOfAccountsID string
	Amount            decimal.Decimal
	Direction         Direction
	PostingRef        string // agrupa las líneas de un mismo asiento balanceado
	Description       string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
