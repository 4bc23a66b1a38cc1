package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/komplek-api/internal/application/billing"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
)

var _ billing.BillingTxRunner = (*TxRunner)(nil)

// TxRunner agrupa en una transacción la tagihan, sus asientos y las cuentas de sistema que falten.
type TxRunner struct {
	pool *pgxpool.Pool
	opts pgx.TxOptions
}

// NewTxRunner construye el runner con aislamiento read committed. La unicidad de
// (iuran, residente, periodo) la resuelve el índice único, no el nivel de aislamiento.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool, opts: pgx.TxOptions{IsoLevel: pgx.ReadCommitted}}
}

// RunBilling ejecuta fn con repos ligados a la transacción. Error de fn = rollback.
// Si ctx tiene deadline se traslada a statement_timeout para que el servidor corte también.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	ledgerRepo repository.LedgerRepository,
	coaRepo repository.ChartOfAccountsRepository,
) error) error {
	tx, err := r.pool.BeginTx(ctx, r.opts)
	if err != nil {
		return wrapErr("billing tx: begin", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if ms, ok := statementTimeout(ctx); ok {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", ms)); err != nil {
			return wrapErr("billing tx: statement_timeout", err)
		}
	}
	if err := fn(NewInvoiceRepository(tx), NewLedgerRepository(tx), NewChartOfAccountsRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("billing tx: commit", err)
	}
	return nil
}

// statementTimeout milisegundos que le quedan a ctx; al menos 1.
func statementTimeout(ctx context.Context) (int64, bool) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0, false
	}
	ms := time.Until(deadline).Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return ms, true
}
