package repository

import (
	"context"

	"github.com/jhoicas/komplek-api/internal/domain/entity"
)

// PermissionRepository lectura de user_permissions.
type PermissionRepository interface {
	ListByProfile(ctx context.Context, profileID, clusterID string) ([]entity.UserPermission, error)
}
