package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
)

// ReportRepository join del libro mayor en memoria, con la misma forma que la consulta SQL.
type ReportRepository struct{ s *Store }

func (r *ReportRepository) ListLedgerView(ctx context.Context, clusterID string, f repository.LedgerViewFilter) ([]repository.LedgerViewRow, error) {
	if err := r.s.begin(ctx, "reports.ledger_view"); err != nil {
		return nil, err
	}
	sh := r.s.sh
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	out := make([]repository.LedgerViewRow, 0)
	for _, e := range sh.ledger {
		if e.ClusterID != clusterID {
			continue
		}
		acc, ok := sh.accounts[e.ChartOfAccountsID]
		if !ok {
			continue
		}
		if f.AccountType != "" && acc.Type != f.AccountType {
			continue
		}
		row := repository.LedgerViewRow{
			EntryID:     e.ID,
			ClusterID:   e.ClusterID,
			PostingRef:  e.PostingRef,
			Direction:   e.Direction,
			Amount:      e.Amount,
			Description: e.Description,
			AccountID:   acc.ID,
			AccountCode: acc.Code,
			AccountName: acc.Name,
			AccountType: acc.Type,
			CreatedAt:   e.CreatedAt,
			UpdatedAt:   e.UpdatedAt,
		}
		if e.InvoiceID != "" {
			if inv, ok := sh.invoices[e.InvoiceID]; ok {
				row.InvoiceID = inv.ID
				row.InvoiceStatus = inv.Status
				row.BillingPeriod = inv.BillingPeriod
				row.ResidentID = inv.ResidentID
				if p, ok := sh.profiles[inv.ResidentID]; ok {
					row.ResidentName = p.Name
				}
			}
		}
		if f.ResidentID != "" && row.ResidentID != f.ResidentID {
			continue
		}
		if f.Period != "" && !matchesPeriod(row, f.Period) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// matchesPeriod: periodo de la tagihan; para ajustes, el mes de creación.
func matchesPeriod(row repository.LedgerViewRow, period string) bool {
	if row.InvoiceID != "" {
		return row.BillingPeriod == period
	}
	return entity.PeriodOf(row.CreatedAt).String() == period
}

func (r *ReportRepository) ListInvoicesWithLedger(ctx context.Context, clusterID, period string) ([]repository.InvoiceWithLedger, error) {
	if err := r.s.begin(ctx, "reports.statements"); err != nil {
		return nil, err
	}
	sh := r.s.sh
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	byInvoice := make(map[string][]entity.LedgerEntry)
	for _, e := range sh.ledger {
		if e.ClusterID == clusterID && e.InvoiceID != "" {
			byInvoice[e.InvoiceID] = append(byInvoice[e.InvoiceID], e)
		}
	}
	out := make([]repository.InvoiceWithLedger, 0)
	for _, inv := range sh.invoices {
		if inv.ClusterID != clusterID || (period != "" && inv.BillingPeriod != period) {
			continue
		}
		item := repository.InvoiceWithLedger{Invoice: *copyInvoice(inv), Entries: byInvoice[inv.ID]}
		if p, ok := sh.profiles[inv.ResidentID]; ok {
			item.ResidentName = p.Name
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Invoice.ID < out[j].Invoice.ID })
	return out, nil
}
