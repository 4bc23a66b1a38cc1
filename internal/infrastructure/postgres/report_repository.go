package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para el compilador del libro mayor.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// ListLedgerView join ledgers → chart_of_accounts, ledgers → invoices → profiles.
// Con filtro de periodo, los ajustes sin tagihan se incluyen por el mes de creación.
func (r *ReportRepo) ListLedgerView(ctx context.Context, clusterID string, f repository.LedgerViewFilter) ([]repository.LedgerViewRow, error) {
	where := []string{"l.cluster_id = $1"}
	args := []any{clusterID}
	if f.Period != "" {
		args = append(args, f.Period)
		where = append(where, fmt.Sprintf(
			"(i.billing_period = $%d::text OR (l.invoice_id IS NULL AND to_char(l.created_at AT TIME ZONE 'UTC', 'YYYY-MM') = $%d::text))",
			len(args), len(args)))
	}
	if f.ResidentID != "" {
		args = append(args, f.ResidentID)
		where = append(where, fmt.Sprintf("i.resident_id::text = $%d", len(args)))
	}
	if f.AccountType != "" {
		args = append(args, string(f.AccountType))
		where = append(where, fmt.Sprintf("c.type = $%d", len(args)))
	}
	rows, err := r.q.Query(ctx, `
		SELECT l.id, l.cluster_id, l.posting_ref, l.direction, l.amount, l.description,
		       c.id, c.code, c.name, c.type,
		       i.id, i.status, i.billing_period, i.resident_id, p.name,
		       l.created_at, l.updated_at
		FROM ledgers l
		JOIN chart_of_accounts c ON c.id = l.chart_of_accounts_id
		LEFT JOIN invoices i ON i.id = l.invoice_id
		LEFT JOIN profiles p ON p.id = i.resident_id
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY l.updated_at DESC, l.id DESC`, args...)
	if err != nil {
		return nil, wrapErr("ledger view", err)
	}
	defer rows.Close()

	var out []repository.LedgerViewRow
	for rows.Next() {
		var row repository.LedgerViewRow
		var direction, accType string
		var invoiceID, status, period, residentID, residentName *string
		if err := rows.Scan(
			&row.EntryID, &row.ClusterID, &row.PostingRef, &direction, &row.Amount, &row.Description,
			&row.AccountID, &row.AccountCode, &row.AccountName, &accType,
			&invoiceID, &status, &period, &residentID, &residentName,
			&row.CreatedAt, &row.UpdatedAt,
		); err != nil {
			return nil, wrapErr("scan ledger view", err)
		}
		row.Direction = entity.Direction(direction)
		row.AccountType = entity.AccountType(accType)
		row.InvoiceID = derefStr(invoiceID)
		row.InvoiceStatus = entity.InvoiceStatus(derefStr(status))
		row.BillingPeriod = derefStr(period)
		row.ResidentID = derefStr(residentID)
		row.ResidentName = derefStr(residentName)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("ledger view", err)
	}
	return out, nil
}

// ListInvoicesWithLedger tagihan del periodo con sus entradas (periodo vacío = todas).
func (r *ReportRepo) ListInvoicesWithLedger(ctx context.Context, clusterID, period string) ([]repository.InvoiceWithLedger, error) {
	rows, err := r.q.Query(ctx, `
		SELECT i.id, i.iuran_id, i.cluster_id, i.resident_id, i.amount, i.billing_period, i.due_at, i.status,
		       i.paid_at, i.cancelled_at, i.created_at, i.updated_at,
		       COALESCE(p.name, '')
		FROM invoices i
		LEFT JOIN profiles p ON p.id = i.resident_id
		WHERE i.cluster_id = $1 AND ($2::text = '' OR i.billing_period = $2::text)
		ORDER BY i.id`, clusterID, period)
	if err != nil {
		return nil, wrapErr("statements", err)
	}
	var out []repository.InvoiceWithLedger
	index := make(map[string]int)
	for rows.Next() {
		var it repository.InvoiceWithLedger
		var status string
		inv := &it.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.IuranID, &inv.ClusterID, &inv.ResidentID, &inv.Amount, &inv.BillingPeriod, &inv.DueAt, &status,
			&inv.PaidAt, &inv.CancelledAt, &inv.CreatedAt, &inv.UpdatedAt, &it.ResidentName,
		); err != nil {
			rows.Close()
			return nil, wrapErr("scan statement", err)
		}
		inv.Status = entity.InvoiceStatus(status)
		index[inv.ID] = len(out)
		out = append(out, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapErr("statements", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	entries, err := r.q.Query(ctx, `
		SELECT l.`+strings.ReplaceAll(ledgerColumns, ", ", ", l.")+`
		FROM ledgers l
		JOIN invoices i ON i.id = l.invoice_id
		WHERE l.cluster_id = $1 AND ($2::text = '' OR i.billing_period = $2::text)
		ORDER BY l.created_at, l.id`, clusterID, period)
	if err != nil {
		return nil, wrapErr("statements entries", err)
	}
	defer entries.Close()
	for entries.Next() {
		e, err := scanLedgerEntry(entries)
		if err != nil {
			return nil, wrapErr("scan statement entry", err)
		}
		if i, ok := index[e.InvoiceID]; ok {
			out[i].Entries = append(out[i].Entries, *e)
		}
	}
	if err := entries.Err(); err != nil {
		return nil, wrapErr("statements entries", err)
	}
	return out, nil
}
