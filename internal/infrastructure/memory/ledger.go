package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
)

// LedgerRepository libro mayor en memoria, solo inserción.
type LedgerRepository struct{ s *Store }

// CreateBatch inserta todas las líneas o ninguna, comprobando las referencias como lo haría una FK.
func (r *LedgerRepository) CreateBatch(ctx context.Context, entries []*entity.LedgerEntry) error {
	if err := r.s.begin(ctx, "ledger.create"); err != nil {
		return err
	}
	sh := r.s.sh
	sh.mu.Lock()
	defer sh.mu.Unlock()
	for _, e := range entries {
		acc, ok := sh.accounts[e.ChartOfAccountsID]
		if !ok || acc.ClusterID != e.ClusterID {
			return fmt.Errorf("ledger: cuenta %s: %w", e.ChartOfAccountsID, domain.ErrReferentialIntegrity)
		}
		if e.InvoiceID != "" {
			inv, ok := sh.invoices[e.InvoiceID]
			if !ok || inv.ClusterID != e.ClusterID {
				return fmt.Errorf("ledger: tagihan %s: %w", e.InvoiceID, domain.ErrReferentialIntegrity)
			}
		}
	}
	ids := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		sh.ledger = append(sh.ledger, *e)
		ids[e.ID] = struct{}{}
	}
	r.s.record(func() {
		kept := sh.ledger[:0]
		for _, e := range sh.ledger {
			if _, drop := ids[e.ID]; !drop {
				kept = append(kept, e)
			}
		}
		sh.ledger = kept
	})
	return nil
}

func (r *LedgerRepository) ListByInvoice(ctx context.Context, clusterID, invoiceID string) ([]*entity.LedgerEntry, error) {
	if err := r.s.begin(ctx, "ledger.list"); err != nil {
		return nil, err
	}
	sh := r.s.sh
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	out := make([]*entity.LedgerEntry, 0)
	for _, e := range sh.ledger {
		if e.ClusterID == clusterID && e.InvoiceID == invoiceID {
			c := e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *LedgerRepository) ExistsForAccount(ctx context.Context, clusterID, accountID string) (bool, error) {
	if err := r.s.begin(ctx, "ledger.exists"); err != nil {
		return false, err
	}
	sh := r.s.sh
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return sh.accountReferenced(clusterID, accountID), nil
}

// accountReferenced se llama con mu tomado.
func (sh *shared) accountReferenced(clusterID, accountID string) bool {
	for _, e := range sh.ledger {
		if e.ClusterID == clusterID && e.ChartOfAccountsID == accountID {
			return true
		}
	}
	return false
}
