package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implementación de LedgerRepository (usable con pool o tx). Solo inserta.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const ledgerColumns = `id, cluster_id, invoice_id, chart_of_accounts_id, amount, direction, posting_ref, description, created_at, updated_at`

// CreateBatch inserta todas las líneas en un único INSERT multi-fila (todas o ninguna).
func (r *LedgerRepo) CreateBatch(ctx context.Context, entries []*entity.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	const cols = 10
	values := make([]string, 0, len(entries))
	args := make([]any, 0, len(entries)*cols)
	for i, e := range entries {
		ph := make([]string, cols)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", i*cols+j+1)
		}
		values = append(values, "("+strings.Join(ph, ", ")+")")
		args = append(args,
			e.ID, e.ClusterID, nullIfEmpty(e.InvoiceID), e.ChartOfAccountsID, e.Amount,
			string(e.Direction), e.PostingRef, e.Description, e.CreatedAt, e.UpdatedAt,
		)
	}
	_, err := r.q.Exec(ctx, `INSERT INTO ledgers (`+ledgerColumns+`) VALUES `+strings.Join(values, ", "), args...)
	return wrapErr("insert ledger entries", err)
}

// ListByInvoice entradas ligadas a una tagihan en orden de creación.
func (r *LedgerRepo) ListByInvoice(ctx context.Context, clusterID, invoiceID string) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledgers
		WHERE cluster_id = $1 AND invoice_id = $2
		ORDER BY created_at, id`, clusterID, invoiceID)
	if err != nil {
		return nil, wrapErr("list ledger entries", err)
	}
	defer rows.Close()
	var out []*entity.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, wrapErr("scan ledger entry", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list ledger entries", err)
	}
	return out, nil
}

// ExistsForAccount informa si alguna entrada referencia la cuenta.
func (r *LedgerRepo) ExistsForAccount(ctx context.Context, clusterID, accountID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ledgers WHERE cluster_id = $1 AND chart_of_accounts_id = $2)`,
		clusterID, accountID,
	).Scan(&exists)
	if err != nil {
		return false, wrapErr("exists ledger entries", err)
	}
	return exists, nil
}

func scanLedgerEntry(row scanner) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	var invoiceID *string
	var direction string
	if err := row.Scan(
		&e.ID, &e.ClusterID, &invoiceID, &e.ChartOfAccountsID, &e.Amount,
		&direction, &e.PostingRef, &e.Description, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.InvoiceID = derefStr(invoiceID)
	e.Direction = entity.Direction(direction)
	return &e, nil
}
