package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
)

// ChartOfAccountsRepository plan de cuentas en memoria. (cluster_id, code) es único.
type ChartOfAccountsRepository struct{ s *Store }

func (r *ChartOfAccountsRepository) Create(ctx context.Context, a *entity.ChartOfAccount) error {
	if err := r.s.begin(ctx, "coa.create"); err != nil {
		return err
	}
	sh := r.s.sh
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if existing := sh.accountByCode(a.ClusterID, a.Code); existing != nil {
		return fmt.Errorf("coa: código %s: %w", a.Code, domain.ErrConflict)
	}
	r.insert(a)
	return nil
}

func (r *ChartOfAccountsRepository) CreateIfAbsent(ctx context.Context, a *entity.ChartOfAccount) (*entity.ChartOfAccount, error) {
	if err := r.s.begin(ctx, "coa.create"); err != nil {
		return nil, err
	}
	sh := r.s.sh
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if existing := sh.accountByCode(a.ClusterID, a.Code); existing != nil {
		c := *existing
		return &c, nil
	}
	r.insert(a)
	c := *a
	return &c, nil
}

// insert se llama con mu tomado.
func (r *ChartOfAccountsRepository) insert(a *entity.ChartOfAccount) {
	sh := r.s.sh
	sh.accounts[a.ID] = *a
	id := a.ID
	r.s.record(func() { delete(sh.accounts, id) })
}

func (r *ChartOfAccountsRepository) GetByID(ctx context.Context, clusterID, id string) (*entity.ChartOfAccount, error) {
	if err := r.s.begin(ctx, "coa.get"); err != nil {
		return nil, err
	}
	sh := r.s.sh
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	a, ok := sh.accounts[id]
	if !ok || a.ClusterID != clusterID {
		return nil, nil
	}
	return &a, nil
}

func (r *ChartOfAccountsRepository) GetByCode(ctx context.Context, clusterID, code string) (*entity.ChartOfAccount, error) {
	if err := r.s.begin(ctx, "coa.get"); err != nil {
		return nil, err
	}
	sh := r.s.sh
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	if a := sh.accountByCode(clusterID, code); a != nil {
		c := *a
		return &c, nil
	}
	return nil, nil
}

func (r *ChartOfAccountsRepository) List(ctx context.Context, clusterID string) ([]*entity.ChartOfAccount, error) {
	if err := r.s.begin(ctx, "coa.list"); err != nil {
		return nil, err
	}
	sh := r.s.sh
	sh.mu.RLock()
	out := make([]*entity.ChartOfAccount, 0)
	for _, a := range sh.accounts {
		if a.ClusterID == clusterID {
			c := a
			out = append(out, &c)
		}
	}
	sh.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *ChartOfAccountsRepository) Update(ctx context.Context, a *entity.ChartOfAccount) error {
	if err := r.s.begin(ctx, "coa.update"); err != nil {
		return err
	}
	sh := r.s.sh
	sh.mu.Lock()
	defer sh.mu.Unlock()
	prev, ok := sh.accounts[a.ID]
	if !ok || prev.ClusterID != a.ClusterID {
		return domain.ErrNotFound
	}
	if sh.accountReferenced(a.ClusterID, a.ID) {
		return fmt.Errorf("coa: cuenta %s: %w", a.ID, domain.ErrReferentialIntegrity)
	}
	if other := sh.accountByCode(a.ClusterID, a.Code); other != nil && other.ID != a.ID {
		return fmt.Errorf("coa: código %s: %w", a.Code, domain.ErrConflict)
	}
	sh.accounts[a.ID] = *a
	r.s.record(func() { sh.accounts[prev.ID] = prev })
	return nil
}

// Delete rechaza cuentas con entradas, como ON DELETE RESTRICT.
func (r *ChartOfAccountsRepository) Delete(ctx context.Context, clusterID, id string) error {
	if err := r.s.begin(ctx, "coa.delete"); err != nil {
		return err
	}
	sh := r.s.sh
	sh.mu.Lock()
	defer sh.mu.Unlock()
	prev, ok := sh.accounts[id]
	if !ok || prev.ClusterID != clusterID {
		return domain.ErrNotFound
	}
	if sh.accountReferenced(clusterID, id) {
		return fmt.Errorf("coa: cuenta %s: %w", id, domain.ErrReferentialIntegrity)
	}
	delete(sh.accounts, id)
	r.s.record(func() { sh.accounts[prev.ID] = prev })
	return nil
}

// accountByCode se llama con mu tomado.
func (sh *shared) accountByCode(clusterID, code string) *entity.ChartOfAccount {
	for _, a := range sh.accounts {
		if a.ClusterID == clusterID && a.Code == code {
			c := a
			return &c
		}
	}
	return nil
}
