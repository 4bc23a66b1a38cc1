package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/komplek-api/internal/domain"
)

// InvoiceStatus estado de una tagihan.
type InvoiceStatus string

// Estados de la tagihan. paid y cancelled son terminales.
const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Valid informa si s es un estado conocido.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// Terminal informa si no existe transición que salga de s.
func (s InvoiceStatus) Terminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// Invoice obligación de un residente para un periodo, derivada de un Iuran.
// Amount es una copia del iuran al momento de generar y no cambia después.
type Invoice struct {
	ID            string
	IuranID       string
	ClusterID     string
	ResidentID    string
	Amount        decimal.Decimal
	BillingPeriod string // YYYY-MM
	DueAt         time.Time
	Status        InvoiceStatus
	PaidAt        *time.Time
	CancelledAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IdempotencyKey llave única de generación (iuran, residente, periodo).
func (inv *Invoice) IdempotencyKey() string {
	return inv.IuranID + "|" + inv.ResidentID + "|" + inv.BillingPeriod
}

// MarkPaid pending|overdue → paid.
func (inv *Invoice) MarkPaid(now time.Time) error {
	if inv.Status != InvoiceStatusPending && inv.Status != InvoiceStatusOverdue {
		return inv.transitionError(InvoiceStatusPaid)
	}
	inv.Status = InvoiceStatusPaid
	inv.PaidAt = &now
	inv.UpdatedAt = now
	return nil
}

// MarkOverdue pending → overdue, solo a partir del día siguiente al vencimiento.
func (inv *Invoice) MarkOverdue(now time.Time) error {
	if inv.Status != InvoiceStatusPending {
		return inv.transitionError(InvoiceStatusOverdue)
	}
	if !IsPastDue(inv.DueAt, now) {
		return fmt.Errorf("%w: la tagihan %s vence el %s", domain.ErrInvalidTransition, inv.ID, inv.DueAt.Format("2006-01-02"))
	}
	inv.Status = InvoiceStatusOverdue
	inv.UpdatedAt = now
	return nil
}

// Cancel pending|overdue → cancelled (acción administrativa).
func (inv *Invoice) Cancel(now time.Time) error {
	if inv.Status != InvoiceStatusPending && inv.Status != InvoiceStatusOverdue {
		return inv.transitionError(InvoiceStatusCancelled)
	}
	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.UpdatedAt = now
	return nil
}

func (inv *Invoice) transitionError(to InvoiceStatus) error {
	return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, inv.Status, to)
}

// IsPastDue informa si el día calendario de now es posterior al vencimiento.
func IsPastDue(dueAt, now time.Time) bool {
	return DateOnly(now).After(DateOnly(dueAt))
}
