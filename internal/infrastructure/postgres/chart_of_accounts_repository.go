package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
)

var _ repository.ChartOfAccountsRepository = (*ChartOfAccountsRepo)(nil)

// ChartOfAccountsRepo implementación de ChartOfAccountsRepository (usable con pool o tx).
type ChartOfAccountsRepo struct {
	q Querier
}

// NewChartOfAccountsRepository construye el adaptador. Pasar pool o tx (Querier).
func NewChartOfAccountsRepository(q Querier) *ChartOfAccountsRepo {
	return &ChartOfAccountsRepo{q: q}
}

const accountColumns = `id, cluster_id, code, name, type, created_at, updated_at`

// Create inserta la cuenta; un código repetido en el cluster devuelve ErrConflict.
func (r *ChartOfAccountsRepo) Create(ctx context.Context, a *entity.ChartOfAccount) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO chart_of_accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.ClusterID, a.Code, a.Name, string(a.Type), a.CreatedAt, a.UpdatedAt,
	)
	return wrapErr("insert account", err)
}

// CreateIfAbsent inserta por (cluster_id, code) y vuelve a leer la fila vigente.
func (r *ChartOfAccountsRepo) CreateIfAbsent(ctx context.Context, a *entity.ChartOfAccount) (*entity.ChartOfAccount, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO chart_of_accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT ON CONSTRAINT uq_chart_of_accounts_cluster_code DO NOTHING`,
		a.ID, a.ClusterID, a.Code, a.Name, string(a.Type), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return nil, wrapErr("ensure account", err)
	}
	stored, err := r.GetByCode(ctx, a.ClusterID, a.Code)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, wrapErr("ensure account", domain.ErrNotFound)
	}
	return stored, nil
}

// GetByID (nil, nil) si no existe en el cluster.
func (r *ChartOfAccountsRepo) GetByID(ctx context.Context, clusterID, id string) (*entity.ChartOfAccount, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM chart_of_accounts WHERE cluster_id = $1 AND id = $2`, clusterID, id)
}

// GetByCode (nil, nil) si no existe en el cluster.
func (r *ChartOfAccountsRepo) GetByCode(ctx context.Context, clusterID, code string) (*entity.ChartOfAccount, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM chart_of_accounts WHERE cluster_id = $1 AND code = $2`, clusterID, code)
}

func (r *ChartOfAccountsRepo) getOne(ctx context.Context, sql string, args ...any) (*entity.ChartOfAccount, error) {
	a, err := scanAccount(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get account", err)
	}
	return a, nil
}

// List cuentas del cluster ordenadas por código.
func (r *ChartOfAccountsRepo) List(ctx context.Context, clusterID string) ([]*entity.ChartOfAccount, error) {
	rows, err := r.q.Query(ctx, `SELECT `+accountColumns+` FROM chart_of_accounts WHERE cluster_id = $1 ORDER BY code`, clusterID)
	if err != nil {
		return nil, wrapErr("list accounts", err)
	}
	defer rows.Close()
	var out []*entity.ChartOfAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, wrapErr("scan account", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list accounts", err)
	}
	return out, nil
}

// Update reemplaza código, nombre y tipo si ninguna entrada del libro mayor la usa.
// El FOR UPDATE espera a los posteos en curso (que toman FOR KEY SHARE por la FK) y bloquea
// los nuevos hasta el commit; la comprobación siguiente ya ve lo que confirmaron.
func (r *ChartOfAccountsRepo) Update(ctx context.Context, a *entity.ChartOfAccount) error {
	if !isUUID(a.ID) {
		return domain.ErrNotFound
	}
	err := pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		var id string
		err := tx.QueryRow(ctx, `
			SELECT id::text FROM chart_of_accounts WHERE cluster_id = $1 AND id = $2 FOR UPDATE`,
			a.ClusterID, a.ID,
		).Scan(&id)
		if isNoRows(err) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			UPDATE chart_of_accounts SET code = $3, name = $4, type = $5, updated_at = $6
			WHERE cluster_id = $1 AND id = $2
			  AND NOT EXISTS (SELECT 1 FROM ledgers l WHERE l.chart_of_accounts_id = $2)`,
			a.ClusterID, a.ID, a.Code, a.Name, string(a.Type), a.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("cuenta %s con entradas: %w", a.ID, domain.ErrReferentialIntegrity)
		}
		return nil
	})
	return wrapErr("update account", err)
}

// Delete borra la cuenta. La FK ON DELETE RESTRICT de ledgers produce ErrReferentialIntegrity.
func (r *ChartOfAccountsRepo) Delete(ctx context.Context, clusterID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM chart_of_accounts WHERE cluster_id = $1 AND id = $2`, clusterID, id)
	if err != nil {
		return wrapErr("delete account", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanAccount(row scanner) (*entity.ChartOfAccount, error) {
	var a entity.ChartOfAccount
	var typ string
	if err := row.Scan(&a.ID, &a.ClusterID, &a.Code, &a.Name, &typ, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Type = entity.AccountType(typ)
	return &a, nil
}
