package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, iuran_id, cluster_id, resident_id, amount, billing_period, due_at, status,
	paid_at, cancelled_at, created_at, updated_at`

// CreateIfAbsent inserta con ON CONFLICT DO NOTHING sobre uq_invoices_iuran_resident_period.
// Si la llave ya existe (o la insertó otra transacción concurrente) devuelve la fila vigente.
func (r *InvoiceRepo) CreateIfAbsent(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, bool, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT ON CONSTRAINT uq_invoices_iuran_resident_period DO NOTHING
		RETURNING `+invoiceColumns,
		inv.ID, inv.IuranID, inv.ClusterID, inv.ResidentID, inv.Amount, inv.BillingPeriod, inv.DueAt, inv.Status,
		inv.PaidAt, inv.CancelledAt, inv.CreatedAt, inv.UpdatedAt,
	)
	stored, err := scanInvoice(row)
	if err == nil {
		return stored, true, nil
	}
	if !isNoRows(err) {
		return nil, false, wrapErr("insert invoice", err)
	}
	row = r.q.QueryRow(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE iuran_id = $1 AND resident_id = $2 AND billing_period = $3`,
		inv.IuranID, inv.ResidentID, inv.BillingPeriod,
	)
	stored, err = scanInvoice(row)
	if err != nil {
		return nil, false, wrapErr("get invoice by key", err)
	}
	return stored, false, nil
}

// GetByID obtiene una tagihan del cluster; (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, clusterID, id string) (*entity.Invoice, error) {
	if !isUUID(id) {
		return nil, nil
	}
	row := r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 AND cluster_id = $2`, id, clusterID)
	inv, err := scanInvoice(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get invoice", err)
	}
	return inv, nil
}

// ListByIuranPeriod tagihan de un iuran en un periodo, por residente.
func (r *InvoiceRepo) ListByIuranPeriod(ctx context.Context, clusterID, iuranID, period string) ([]*entity.Invoice, error) {
	return r.query(ctx, "list invoices by period", `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE cluster_id = $1 AND iuran_id = $2 AND billing_period = $3
		ORDER BY resident_id`, clusterID, iuranID, period)
}

// ExistsForIuran informa si el iuran ya generó alguna tagihan.
func (r *InvoiceRepo) ExistsForIuran(ctx context.Context, clusterID, iuranID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM invoices WHERE cluster_id = $1 AND iuran_id = $2)`,
		clusterID, iuranID,
	).Scan(&exists)
	if err != nil {
		return false, wrapErr("exists invoices", err)
	}
	return exists, nil
}

// List aplica los filtros presentes y ordena por updated_at descendente.
func (r *InvoiceRepo) List(ctx context.Context, clusterID string, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	where := []string{"cluster_id = $1"}
	args := []any{clusterID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.IuranID != "" {
		add("iuran_id::text = $%d", f.IuranID)
	}
	if f.ResidentID != "" {
		add("resident_id::text = $%d", f.ResidentID)
	}
	if f.Period != "" {
		add("billing_period = $%d", f.Period)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	return r.query(ctx, "list invoices", `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY updated_at DESC, id DESC`, args...)
}

// UpdateStatus escribe el nuevo estado solo si la fila sigue en from.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, inv *entity.Invoice, from entity.InvoiceStatus) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE invoices
		SET status = $3, paid_at = $4, cancelled_at = $5, updated_at = $6
		WHERE id = $1 AND cluster_id = $2 AND status = $7`,
		inv.ID, inv.ClusterID, inv.Status, inv.PaidAt, inv.CancelledAt, inv.UpdatedAt, from,
	)
	if err != nil {
		return wrapErr("update invoice status", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	current, err := r.GetByID(ctx, inv.ClusterID, inv.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return domain.ErrNotFound
	}
	return fmt.Errorf("update invoice status: %s está en %s, no en %s: %w", inv.ID, current.Status, from, domain.ErrConflict)
}

// ListPendingDueBefore tagihan pending con due_at < t.
func (r *InvoiceRepo) ListPendingDueBefore(ctx context.Context, clusterID string, t time.Time) ([]*entity.Invoice, error) {
	return r.query(ctx, "list overdue candidates", `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE cluster_id = $1 AND status = 'pending' AND due_at < $2::date
		ORDER BY due_at, id`, clusterID, t)
}

func (r *InvoiceRepo) query(ctx context.Context, op, sql string, args ...any) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	var out []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return out, nil
}

func scanInvoice(row scanner) (*entity.Invoice, error) {
	var inv entity.Invoice
	var status string
	err := row.Scan(
		&inv.ID, &inv.IuranID, &inv.ClusterID, &inv.ResidentID, &inv.Amount, &inv.BillingPeriod, &inv.DueAt, &status,
		&inv.PaidAt, &inv.CancelledAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.Status = entity.InvoiceStatus(status)
	return &inv, nil
}
