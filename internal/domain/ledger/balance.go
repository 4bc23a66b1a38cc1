// Package ledger contiene las reglas de partida doble sobre entradas del libro mayor.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
)

// Totals suma débitos y créditos de un conjunto de entradas.
func Totals(entries []*entity.LedgerEntry) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, e := range entries {
		switch e.Direction {
		case entity.DirectionDebit:
			debit = debit.Add(e.Amount)
		case entity.DirectionCredit:
			credit = credit.Add(e.Amount)
		}
	}
	return debit, credit
}

// ValidateEntries revisa cada línea de un asiento antes de postearlo.
func ValidateEntries(entries []*entity.LedgerEntry) error {
	if len(entries) < 2 {
		return domain.NewValidationError("entries", "un asiento requiere al menos dos líneas")
	}
	for i, e := range entries {
		if !e.Direction.Valid() {
			return domain.NewValidationError(fmt.Sprintf("entries[%d].direction", i), "debe ser debit o credit")
		}
		if !e.Amount.IsPositive() {
			return domain.NewValidationError(fmt.Sprintf("entries[%d].amount", i), "debe ser mayor que cero")
		}
		if e.ChartOfAccountsID == "" {
			return domain.NewValidationError(fmt.Sprintf("entries[%d].chart_of_accounts_id", i), "requerido")
		}
	}
	return ValidateBalanced(entries)
}

// ValidateBalanced devuelve ErrUnbalancedLedger si débitos y créditos difieren.
func ValidateBalanced(entries []*entity.LedgerEntry) error {
	debit, credit := Totals(entries)
	if !debit.Equal(credit) {
		return fmt.Errorf("%w: debit %s, credit %s", domain.ErrUnbalancedLedger, debit.String(), credit.String())
	}
	return nil
}
