package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/komplek-api/internal/domain/entity"
)

// ProfileRepository residentes y clusters en memoria.
type ProfileRepository struct{ s *Store }

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	if err := r.s.begin(ctx, "profiles.get"); err != nil {
		return nil, err
	}
	sh := r.s.sh
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	p, ok := sh.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	if err := r.s.begin(ctx, "profiles.get"); err != nil {
		return nil, err
	}
	sh := r.s.sh
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	for _, p := range sh.profiles {
		if strings.EqualFold(p.Email, email) {
			c := p
			return &c, nil
		}
	}
	return nil, nil
}

func (r *ProfileRepository) FilterInCluster(ctx context.Context, clusterID string, ids []string) ([]string, error) {
	if err := r.s.begin(ctx, "profiles.filter"); err != nil {
		return nil, err
	}
	sh := r.s.sh
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if p, ok := sh.profiles[id]; ok && p.ClusterID == clusterID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *ProfileRepository) GetCluster(ctx context.Context, clusterID string) (*entity.Cluster, error) {
	if err := r.s.begin(ctx, "clusters.get"); err != nil {
		return nil, err
	}
	sh := r.s.sh
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	c, ok := sh.clusters[clusterID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// PermissionRepository user_permissions en memoria.
type PermissionRepository struct{ s *Store }

func (r *PermissionRepository) ListByProfile(ctx context.Context, profileID, clusterID string) ([]entity.UserPermission, error) {
	if err := r.s.begin(ctx, "permissions.list"); err != nil {
		return nil, err
	}
	sh := r.s.sh
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	out := make([]entity.UserPermission, 0)
	for _, p := range sh.permissions {
		if p.ProfileID == profileID && p.ClusterID == clusterID {
			out = append(out, p)
		}
	}
	return out, nil
}
