package repository

import (
	"context"

	"github.com/jhoicas/komplek-api/internal/domain/entity"
)

// ChartOfAccountsRepository puerto de persistencia del plan de cuentas.
type ChartOfAccountsRepository interface {
	// Create devuelve domain.ErrConflict si el código ya existe en el cluster.
	Create(ctx context.Context, account *entity.ChartOfAccount) error
	// CreateIfAbsent inserta por (cluster_id, code) y devuelve la fila vigente.
	CreateIfAbsent(ctx context.Context, account *entity.ChartOfAccount) (*entity.ChartOfAccount, error)
	GetByID(ctx context.Context, clusterID, id string) (*entity.ChartOfAccount, error)
	GetByCode(ctx context.Context, clusterID, code string) (*entity.ChartOfAccount, error)
	List(ctx context.Context, clusterID string) ([]*entity.ChartOfAccount, error)
	// Update devuelve domain.ErrReferentialIntegrity si el libro mayor la referencia,
	// comprobado de forma atómica con la escritura.
	Update(ctx context.Context, account *entity.ChartOfAccount) error
	// Delete devuelve domain.ErrReferentialIntegrity si el libro mayor la referencia.
	Delete(ctx context.Context, clusterID, id string) error
}
