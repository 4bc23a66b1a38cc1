package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
)

// IuranRepository definiciones de iuran en memoria.
type IuranRepository struct{ s *Store }

func (r *IuranRepository) Create(ctx context.Context, def *entity.Iuran) error {
	if err := r.s.begin(ctx, "iuran.create"); err != nil {
		return err
	}
	sh := r.s.sh
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.iuran[def.ID]; ok {
		return fmt.Errorf("iuran %s: %w", def.ID, domain.ErrConflict)
	}
	sh.iuran[def.ID] = *copyIuran(*def)
	id := def.ID
	r.s.record(func() { delete(sh.iuran, id) })
	return nil
}

func (r *IuranRepository) Update(ctx context.Context, def *entity.Iuran) error {
	if err := r.s.begin(ctx, "iuran.update"); err != nil {
		return err
	}
	sh := r.s.sh
	sh.mu.Lock()
	defer sh.mu.Unlock()
	prev, ok := sh.iuran[def.ID]
	if !ok || prev.ClusterID != def.ClusterID {
		return domain.ErrNotFound
	}
	sh.iuran[def.ID] = *copyIuran(*def)
	r.s.record(func() { sh.iuran[prev.ID] = prev })
	return nil
}

func (r *IuranRepository) GetByID(ctx context.Context, clusterID, id string) (*entity.Iuran, error) {
	if err := r.s.begin(ctx, "iuran.get"); err != nil {
		return nil, err
	}
	sh := r.s.sh
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	def, ok := sh.iuran[id]
	if !ok || def.ClusterID != clusterID {
		return nil, nil
	}
	return copyIuran(def), nil
}

func (r *IuranRepository) ListByCluster(ctx context.Context, clusterID string, limit, offset int) ([]*entity.Iuran, error) {
	if err := r.s.begin(ctx, "iuran.list"); err != nil {
		return nil, err
	}
	sh := r.s.sh
	sh.mu.RLock()
	out := make([]*entity.Iuran, 0)
	for _, def := range sh.iuran {
		if def.ClusterID == clusterID {
			out = append(out, copyIuran(def))
		}
	}
	sh.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	start := offset
	if start > len(out) {
		start = len(out)
	}
	end := start + limit
	if limit <= 0 || end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (r *IuranRepository) CountByCluster(ctx context.Context, clusterID string) (int, error) {
	if err := r.s.begin(ctx, "iuran.count"); err != nil {
		return 0, err
	}
	r.s.sh.mu.RLock()
	defer r.s.sh.mu.RUnlock()
	n := 0
	for _, def := range r.s.sh.iuran {
		if def.ClusterID == clusterID {
			n++
		}
	}
	return n, nil
}
