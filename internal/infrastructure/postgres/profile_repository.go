package postgres

import (
	"context"

	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
)

var (
	_ repository.ProfileRepository    = (*ProfileRepo)(nil)
	_ repository.PermissionRepository = (*PermissionRepo)(nil)
)

// ProfileRepo lectura de profiles y clusters.
type ProfileRepo struct {
	q Querier
}

// NewProfileRepository construye el adaptador.
func NewProfileRepository(q Querier) *ProfileRepo {
	return &ProfileRepo{q: q}
}

const profileColumns = `id, cluster_id, name, email, phone, block, house_number, password_hash, created_at, updated_at`

// GetByID (nil, nil) si no existe.
func (r *ProfileRepo) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
}

// GetByEmail búsqueda sin distinguir mayúsculas.
func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE lower(email) = lower($1)`, email)
}

func (r *ProfileRepo) getOne(ctx context.Context, sql string, args ...any) (*entity.Profile, error) {
	var p entity.Profile
	var email, phone, block, house, hash *string
	err := r.q.QueryRow(ctx, sql, args...).Scan(
		&p.ID, &p.ClusterID, &p.Name, &email, &phone, &block, &house, &hash, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get profile", err)
	}
	p.Email = derefStr(email)
	p.Phone = derefStr(phone)
	p.Block = derefStr(block)
	p.HouseNumber = derefStr(house)
	p.PasswordHash = derefStr(hash)
	return &p, nil
}

// FilterInCluster devuelve los ids que pertenecen al cluster.
func (r *ProfileRepo) FilterInCluster(ctx context.Context, clusterID string, ids []string) ([]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id::text FROM profiles
		WHERE cluster_id = $1 AND id::text = ANY($2::text[])`, clusterID, ids)
	if err != nil {
		return nil, wrapErr("filter profiles", err)
	}
	defer rows.Close()
	out := make([]string, 0, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapErr("scan profile id", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("filter profiles", err)
	}
	return out, nil
}

// GetCluster (nil, nil) si no existe.
func (r *ProfileRepo) GetCluster(ctx context.Context, clusterID string) (*entity.Cluster, error) {
	var c entity.Cluster
	err := r.q.QueryRow(ctx, `SELECT id, name, created_at FROM clusters WHERE id = $1`, clusterID).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get cluster", err)
	}
	return &c, nil
}

// PermissionRepo lectura de user_permissions.
type PermissionRepo struct {
	q Querier
}

// NewPermissionRepository construye el adaptador.
func NewPermissionRepository(q Querier) *PermissionRepo {
	return &PermissionRepo{q: q}
}

// ListByProfile permisos del perfil en el cluster.
func (r *PermissionRepo) ListByProfile(ctx context.Context, profileID, clusterID string) ([]entity.UserPermission, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, profile_id, cluster_id, resident_id, scope
		FROM user_permissions
		WHERE profile_id = $1 AND cluster_id = $2`, profileID, clusterID)
	if err != nil {
		return nil, wrapErr("list permissions", err)
	}
	defer rows.Close()
	var out []entity.UserPermission
	for rows.Next() {
		var p entity.UserPermission
		var resident *string
		var scope string
		if err := rows.Scan(&p.ID, &p.ProfileID, &p.ClusterID, &resident, &scope); err != nil {
			return nil, wrapErr("scan permission", err)
		}
		p.ResidentID = derefStr(resident)
		p.Scope = entity.Scope(scope)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list permissions", err)
	}
	return out, nil
}
