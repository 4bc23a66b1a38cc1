// Package permission decide qué filas puede leer o escribir un actor dentro de un cluster.
// Es un predicado puro: no accede al store.
package permission

import (
	"fmt"

	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
)

// Actor identidad autenticada con los permisos cargados desde user_permissions.
type Actor struct {
	ProfileID   string
	ClusterID   string
	Permissions []entity.UserPermission
}

// Row atributos de una fila relevantes para el alcance. ResidentID vacío = fila sin residente
// (ajuste contable), visible solo para administradores.
type Row struct {
	ClusterID  string
	ResidentID string
}

// SystemActor actor con alcance de administrador sobre un cluster (CLI y tareas programadas).
func SystemActor(clusterID string) Actor {
	return Actor{
		ProfileID: "system",
		ClusterID: clusterID,
		Permissions: []entity.UserPermission{
			{ProfileID: "system", ClusterID: clusterID, Scope: entity.ScopeClusterAdmin},
		},
	}
}

// IsClusterAdmin informa si el actor administra clusterID.
func IsClusterAdmin(a Actor, clusterID string) bool {
	if clusterID == "" || a.ClusterID != clusterID {
		return false
	}
	for _, p := range a.Permissions {
		if p.Scope == entity.ScopeClusterAdmin && p.ClusterID == clusterID {
			return true
		}
	}
	return false
}

// IsMember informa si el actor tiene algún permiso en clusterID.
func IsMember(a Actor, clusterID string) bool {
	if clusterID == "" || a.ClusterID != clusterID {
		return false
	}
	for _, p := range a.Permissions {
		if p.ClusterID == clusterID {
			return true
		}
	}
	return false
}

// CanRead informa si el actor puede ver la fila.
func CanRead(a Actor, r Row) bool {
	if r.ClusterID == "" || a.ClusterID != r.ClusterID {
		return false
	}
	if IsClusterAdmin(a, r.ClusterID) {
		return true
	}
	if r.ResidentID == "" {
		return false
	}
	for _, p := range a.Permissions {
		if p.Scope == entity.ScopeSelf && p.ClusterID == r.ClusterID && p.ResidentID == r.ResidentID {
			return true
		}
	}
	return false
}

// Authorize variante de CanRead para lecturas directas: devuelve ErrNotAuthorized en vez de filtrar.
func Authorize(a Actor, r Row) error {
	if !CanRead(a, r) {
		return fmt.Errorf("%w: perfil %s sin acceso", domain.ErrNotAuthorized, a.ProfileID)
	}
	return nil
}

// RequireAdmin devuelve ErrNotAuthorized si el actor no administra clusterID.
func RequireAdmin(a Actor, clusterID string) error {
	if !IsClusterAdmin(a, clusterID) {
		return fmt.Errorf("%w: se requiere cluster_admin en %s", domain.ErrNotAuthorized, clusterID)
	}
	return nil
}

// RequireMember devuelve ErrNotAuthorized si el actor no pertenece a clusterID.
func RequireMember(a Actor, clusterID string) error {
	if !IsMember(a, clusterID) {
		return fmt.Errorf("%w: perfil %s fuera del cluster %s", domain.ErrNotAuthorized, a.ProfileID, clusterID)
	}
	return nil
}

// Filter conserva los elementos visibles para el actor, manteniendo el orden.
func Filter[T any](a Actor, items []T, row func(T) Row) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if CanRead(a, row(it)) {
			out = append(out, it)
		}
	}
	return out
}
