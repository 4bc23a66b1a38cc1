package repository

import (
	"context"

	"github.com/jhoicas/komplek-api/internal/domain/entity"
)

// ProfileRepository puerto de lectura de residentes y clusters.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	GetByEmail(ctx context.Context, email string) (*entity.Profile, error)
	// FilterInCluster devuelve el subconjunto de ids que pertenecen al cluster.
	FilterInCluster(ctx context.Context, clusterID string, ids []string) ([]string, error)
	GetCluster(ctx context.Context, clusterID string) (*entity.Cluster, error)
}
