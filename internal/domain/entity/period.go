package entity

import (
	"fmt"
	"time"
)

// PeriodLayout formato canónico del periodo de facturación (año-mes).
const PeriodLayout = "2006-01"

// BillingPeriod periodo mensual de facturación de un iuran.
type BillingPeriod struct {
	Year  int
	Month time.Month
}

// ParseBillingPeriod interpreta "YYYY-MM".
func ParseBillingPeriod(s string) (BillingPeriod, error) {
	t, err := time.Parse(PeriodLayout, s)
	if err != nil {
		return BillingPeriod{}, fmt.Errorf("periodo %q inválido, formato esperado YYYY-MM", s)
	}
	return BillingPeriod{Year: t.Year(), Month: t.Month()}, nil
}

// PeriodOf devuelve el periodo que contiene la fecha t.
func PeriodOf(t time.Time) BillingPeriod {
	return BillingPeriod{Year: t.Year(), Month: t.Month()}
}

func (p BillingPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// DueDate fecha de vencimiento del periodo para un día del mes dado.
// Si el mes es más corto que day (ej. 31 en febrero) se usa el último día del mes.
func (p BillingPeriod) DueDate(day int) time.Time {
	last := time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(p.Year, p.Month, day, 0, 0, 0, 0, time.UTC)
}

// DateOnly trunca t a medianoche UTC conservando la fecha calendario.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
