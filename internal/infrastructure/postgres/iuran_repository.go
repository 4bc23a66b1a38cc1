package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
)

var _ repository.IuranRepository = (*IuranRepo)(nil)

// IuranRepo implementación de IuranRepository (usable con pool o tx).
type IuranRepo struct {
	q Querier
}

// NewIuranRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIuranRepository(q Querier) *IuranRepo {
	return &IuranRepo{q: q}
}

const iuranColumns = `
	i.id, i.cluster_id, i.name, i.due_date, i.start_date, i.end_date, i.amount,
	i.deactivated_at, i.created_at, i.updated_at,
	ARRAY(SELECT p.resident_id::text FROM iuran_participants p WHERE p.iuran_id = i.id ORDER BY p.position)`

// Create persiste la cabecera y los participantes en una sola transacción.
func (r *IuranRepo) Create(ctx context.Context, def *entity.Iuran) error {
	err := pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO iuran (id, cluster_id, name, due_date, start_date, end_date, amount, deactivated_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			def.ID, def.ClusterID, def.Name, def.DueDate, def.StartDate, def.EndDate, def.Amount,
			def.DeactivatedAt, def.CreatedAt, def.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return insertParticipants(ctx, tx, def.ID, def.Participants)
	})
	return wrapErr("insert iuran", err)
}

// Update reemplaza la cabecera y el conjunto de participantes.
func (r *IuranRepo) Update(ctx context.Context, def *entity.Iuran) error {
	err := pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE iuran
			SET name = $3, due_date = $4, start_date = $5, end_date = $6, amount = $7,
			    deactivated_at = $8, updated_at = $9
			WHERE id = $1 AND cluster_id = $2`,
			def.ID, def.ClusterID, def.Name, def.DueDate, def.StartDate, def.EndDate, def.Amount,
			def.DeactivatedAt, def.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM iuran_participants WHERE iuran_id = $1`, def.ID); err != nil {
			return err
		}
		return insertParticipants(ctx, tx, def.ID, def.Participants)
	})
	return wrapErr("update iuran", err)
}

func insertParticipants(ctx context.Context, tx pgx.Tx, iuranID string, participants []string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO iuran_participants (iuran_id, resident_id, position)
		SELECT $1, t.resident_id::uuid, t.position
		FROM unnest($2::text[]) WITH ORDINALITY AS t(resident_id, position)`,
		iuranID, participants,
	)
	return err
}

// GetByID obtiene una definición del cluster; (nil, nil) si no existe.
func (r *IuranRepo) GetByID(ctx context.Context, clusterID, id string) (*entity.Iuran, error) {
	if !isUUID(id) {
		return nil, nil
	}
	row := r.q.QueryRow(ctx, `SELECT `+iuranColumns+` FROM iuran i WHERE i.id = $1 AND i.cluster_id = $2`, id, clusterID)
	def, err := scanIuran(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get iuran", err)
	}
	return def, nil
}

// ListByCluster lista las definiciones del cluster, más recientes primero.
func (r *IuranRepo) ListByCluster(ctx context.Context, clusterID string, limit, offset int) ([]*entity.Iuran, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+iuranColumns+`
		FROM iuran i
		WHERE i.cluster_id = $1
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT $2 OFFSET $3`, clusterID, limit, offset)
	if err != nil {
		return nil, wrapErr("list iuran", err)
	}
	defer rows.Close()
	var out []*entity.Iuran
	for rows.Next() {
		def, err := scanIuran(rows)
		if err != nil {
			return nil, wrapErr("scan iuran", err)
		}
		out = append(out, def)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list iuran", err)
	}
	return out, nil
}

// CountByCluster total de definiciones del cluster.
func (r *IuranRepo) CountByCluster(ctx context.Context, clusterID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM iuran WHERE cluster_id = $1`, clusterID).Scan(&n); err != nil {
		return 0, wrapErr("count iuran", err)
	}
	return n, nil
}

func scanIuran(row scanner) (*entity.Iuran, error) {
	var def entity.Iuran
	var dueDate int16
	if err := row.Scan(
		&def.ID, &def.ClusterID, &def.Name, &dueDate, &def.StartDate, &def.EndDate, &def.Amount,
		&def.DeactivatedAt, &def.CreatedAt, &def.UpdatedAt, &def.Participants,
	); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	def.DueDate = int(dueDate)
	return &def, nil
}
