// Package access resuelve el actor autenticado a partir del perfil y el cluster del token.
package access

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/komplek-api/internal/application/storectx"
	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/permission"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
)

// Resolver carga los permisos vigentes del perfil en cada request.
type Resolver struct {
	profiles    repository.ProfileRepository
	permissions repository.PermissionRepository
	timeout     storectx.Timeout
}

// NewResolver construye el resolver.
func NewResolver(profiles repository.ProfileRepository, permissions repository.PermissionRepository) *Resolver {
	return &Resolver{profiles: profiles, permissions: permissions}
}

// WithStoreTimeout acota la carga de perfil y permisos.
func (r *Resolver) WithStoreTimeout(d time.Duration) *Resolver {
	r.timeout = storectx.Timeout(d)
	return r
}

// Resolve devuelve el Actor de profileID en clusterID.
// ErrUnauthorized si el perfil no existe; ErrNotAuthorized si no pertenece al cluster.
func (r *Resolver) Resolve(ctx context.Context, profileID, clusterID string) (permission.Actor, error) {
	ctx, cancel := r.timeout.Bound(ctx)
	defer cancel()
	profile, err := r.profiles.GetByID(ctx, profileID)
	if err != nil {
		return permission.Actor{}, fmt.Errorf("access: obtener perfil: %w", err)
	}
	if profile == nil {
		return permission.Actor{}, domain.ErrUnauthorized
	}
	if profile.ClusterID != clusterID {
		return permission.Actor{}, fmt.Errorf("%w: el perfil no pertenece al cluster %s", domain.ErrNotAuthorized, clusterID)
	}
	perms, err := r.permissions.ListByProfile(ctx, profileID, clusterID)
	if err != nil {
		return permission.Actor{}, fmt.Errorf("access: listar permisos: %w", err)
	}
	return permission.Actor{ProfileID: profileID, ClusterID: clusterID, Permissions: perms}, nil
}
