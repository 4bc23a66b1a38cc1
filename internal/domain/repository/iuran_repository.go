package repository

import (
	"context"

	"github.com/jhoicas/komplek-api/internal/domain/entity"
)

// IuranRepository puerto de persistencia de definiciones de iuran.
// Todas las lecturas van acotadas por clusterID.
type IuranRepository interface {
	Create(ctx context.Context, iuran *entity.Iuran) error
	// Update reemplaza la cabecera y el conjunto de participantes.
	Update(ctx context.Context, iuran *entity.Iuran) error
	// GetByID devuelve (nil, nil) si no existe en el cluster.
	GetByID(ctx context.Context, clusterID, id string) (*entity.Iuran, error)
	ListByCluster(ctx context.Context, clusterID string, limit, offset int) ([]*entity.Iuran, error)
	// CountByCluster total de definiciones del cluster, sin paginar.
	CountByCluster(ctx context.Context, clusterID string) (int, error)
}
