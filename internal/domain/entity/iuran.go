package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Iuran definición de cuota recurrente de un cluster (komplek).
// Nunca se borra: se desactiva moviendo EndDate a la fecha de desactivación.
type Iuran struct {
	ID            string
	ClusterID     string
	Name          string
	Participants  []string // IDs de residentes (profiles) del mismo cluster
	DueDate       int      // día del mes, 1–31
	StartDate     time.Time
	EndDate       time.Time
	Amount        decimal.Decimal
	DeactivatedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsDeactivated informa si el iuran fue desactivado.
func (i *Iuran) IsDeactivated() bool {
	return i.DeactivatedAt != nil
}

// DueDateFor vencimiento concreto del iuran en el periodo p.
func (i *Iuran) DueDateFor(p BillingPeriod) time.Time {
	return p.DueDate(i.DueDate)
}

// Covers informa si el vencimiento del periodo cae dentro de [StartDate, EndDate].
func (i *Iuran) Covers(p BillingPeriod) bool {
	due := i.DueDateFor(p)
	return !due.Before(DateOnly(i.StartDate)) && !due.After(DateOnly(i.EndDate))
}

// HasParticipant informa si residentID participa del iuran.
func (i *Iuran) HasParticipant(residentID string) bool {
	for _, p := range i.Participants {
		if p == residentID {
			return true
		}
	}
	return false
}
