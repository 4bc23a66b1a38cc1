package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
)

// InvoiceRepository tagihan en memoria. La llave de idempotencia se comprueba e inserta
// bajo el mismo lock.
type InvoiceRepository struct{ s *Store }

func (r *InvoiceRepository) CreateIfAbsent(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, bool, error) {
	if err := r.s.begin(ctx, "invoices.create"); err != nil {
		return nil, false, err
	}
	sh := r.s.sh
	sh.mu.Lock()
	defer sh.mu.Unlock()

	key := inv.IdempotencyKey()
	if id, ok := sh.invoiceKeys[key]; ok {
		return copyInvoice(sh.invoices[id]), false, nil
	}
	def, ok := sh.iuran[inv.IuranID]
	if !ok || def.ClusterID != inv.ClusterID {
		return nil, false, fmt.Errorf("invoices: iuran %s: %w", inv.IuranID, domain.ErrReferentialIntegrity)
	}
	if _, ok := sh.invoices[inv.ID]; ok {
		return nil, false, fmt.Errorf("invoices: id %s: %w", inv.ID, domain.ErrConflict)
	}
	sh.invoices[inv.ID] = *copyInvoice(*inv)
	sh.invoiceKeys[key] = inv.ID
	id := inv.ID
	r.s.record(func() {
		delete(sh.invoices, id)
		delete(sh.invoiceKeys, key)
	})
	return copyInvoice(*inv), true, nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, clusterID, id string) (*entity.Invoice, error) {
	if err := r.s.begin(ctx, "invoices.get"); err != nil {
		return nil, err
	}
	sh := r.s.sh
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	inv, ok := sh.invoices[id]
	if !ok || inv.ClusterID != clusterID {
		return nil, nil
	}
	return copyInvoice(inv), nil
}

func (r *InvoiceRepository) ListByIuranPeriod(ctx context.Context, clusterID, iuranID, period string) ([]*entity.Invoice, error) {
	out, err := r.List(ctx, clusterID, repository.InvoiceFilter{IuranID: iuranID, Period: period})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ResidentID < out[j].ResidentID })
	return out, nil
}

func (r *InvoiceRepository) ExistsForIuran(ctx context.Context, clusterID, iuranID string) (bool, error) {
	if err := r.s.begin(ctx, "invoices.exists"); err != nil {
		return false, err
	}
	sh := r.s.sh
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	for _, inv := range sh.invoices {
		if inv.ClusterID == clusterID && inv.IuranID == iuranID {
			return true, nil
		}
	}
	return false, nil
}

// List ordena por updated_at descendente, igual que la consulta SQL.
func (r *InvoiceRepository) List(ctx context.Context, clusterID string, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	if err := r.s.begin(ctx, "invoices.list"); err != nil {
		return nil, err
	}
	sh := r.s.sh
	sh.mu.RLock()
	out := make([]*entity.Invoice, 0)
	for _, inv := range sh.invoices {
		if inv.ClusterID != clusterID {
			continue
		}
		if f.IuranID != "" && inv.IuranID != f.IuranID {
			continue
		}
		if f.ResidentID != "" && inv.ResidentID != f.ResidentID {
			continue
		}
		if f.Period != "" && inv.BillingPeriod != f.Period {
			continue
		}
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		out = append(out, copyInvoice(inv))
	}
	sh.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *InvoiceRepository) UpdateStatus(ctx context.Context, inv *entity.Invoice, from entity.InvoiceStatus) error {
	if err := r.s.begin(ctx, "invoices.update_status"); err != nil {
		return err
	}
	sh := r.s.sh
	sh.mu.Lock()
	defer sh.mu.Unlock()
	prev, ok := sh.invoices[inv.ID]
	if !ok || prev.ClusterID != inv.ClusterID {
		return domain.ErrNotFound
	}
	if prev.Status != from {
		return fmt.Errorf("invoices: %s está en %s, no en %s: %w", inv.ID, prev.Status, from, domain.ErrConflict)
	}
	next := prev
	next.Status = inv.Status
	next.PaidAt = inv.PaidAt
	next.CancelledAt = inv.CancelledAt
	next.UpdatedAt = inv.UpdatedAt
	sh.invoices[inv.ID] = *copyInvoice(next)
	r.s.record(func() { sh.invoices[prev.ID] = prev })
	return nil
}

func (r *InvoiceRepository) ListPendingDueBefore(ctx context.Context, clusterID string, t time.Time) ([]*entity.Invoice, error) {
	all, err := r.List(ctx, clusterID, repository.InvoiceFilter{Status: entity.InvoiceStatusPending})
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Invoice, 0, len(all))
	for _, inv := range all {
		if inv.DueAt.Before(t) {
			out = append(out, inv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out, nil
}
