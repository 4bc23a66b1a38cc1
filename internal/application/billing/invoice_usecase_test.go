package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/komplek-api/internal/application/accounting"
	"github.com/jhoicas/komplek-api/internal/application/billing"
	"github.com/jhoicas/komplek-api/internal/application/dto"
	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
	"github.com/jhoicas/komplek-api/internal/infrastructure/memory"
	"github.com/jhoicas/komplek-api/pkg/logger"
)

func newInvoiceUseCase(st *memory.Store, now time.Time) *billing.InvoiceUseCase {
	return billing.NewInvoiceUseCase(st.Invoices(), st.Ledger(), st, accounting.NewPoster(nil), logger.Nop()).
		WithClock(func() time.Time { return now })
}

// generated prepara el escenario base: tres tagihan pending de 2024-03 (vencen el 10).
func generated(t *testing.T) (*memory.Store, []*entity.Invoice) {
	t.Helper()
	st, def := newStore(t)
	res, err := newGenerator(st, 3).Generate(context.Background(), admin, cluster, def.ID, "2024-03")
	require.NoError(t, err)
	require.Len(t, res.Invoices, 3)
	return st, res.Invoices
}

func TestPay_PasaAPaidYPosteaCobro(t *testing.T) {
	st, invs := generated(t)
	uc := newInvoiceUseCase(st, time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	out, err := uc.Pay(ctx, admin, cluster, invs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.InvoiceStatusPaid), out.Status)
	require.NotNil(t, out.PaidAt)

	assert.Equal(t, 4, ledgerCount(t, st, invs[0].ID))
	bal, err := uc.VerifyBalance(ctx, admin, cluster, invs[0].ID)
	require.NoError(t, err)
	assert.True(t, bal.Balanced)
	assert.Equal(t, "100000", bal.Debit.String())

	_, err = uc.Pay(ctx, admin, cluster, invs[0].ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, 4, ledgerCount(t, st, invs[0].ID), "un rechazo no postea")
}

func TestCancel_SoloDesdePendingUOverdue(t *testing.T) {
	st, invs := generated(t)
	uc := newInvoiceUseCase(st, time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	out, err := uc.Cancel(ctx, admin, cluster, invs[1].ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.InvoiceStatusCancelled), out.Status)
	assert.Equal(t, 4, ledgerCount(t, st, invs[1].ID))

	_, err = uc.Pay(ctx, admin, cluster, invs[1].ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = uc.Pay(ctx, admin, cluster, invs[2].ID)
	require.NoError(t, err)
	_, err = uc.Cancel(ctx, admin, cluster, invs[2].ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTransiciones_SoloAdmin(t *testing.T) {
	st, invs := generated(t)
	uc := newInvoiceUseCase(st, time.Now())

	_, err := uc.Pay(context.Background(), residentActor("A"), cluster, invs[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	_, err = uc.Pay(context.Background(), admin, cluster, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkOverdue_DesdeElDiaSiguienteAlVencimiento(t *testing.T) {
	st, invs := generated(t)
	ctx := context.Background()

	sameDay := newInvoiceUseCase(st, time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC))
	out, err := sameDay.MarkOverdue(ctx, admin, cluster)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Marked)

	nextDay := newInvoiceUseCase(st, time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC))
	_, err = nextDay.Pay(ctx, admin, cluster, invs[0].ID)
	require.NoError(t, err)

	out, err = nextDay.MarkOverdue(ctx, admin, cluster)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Marked)
	assert.ElementsMatch(t, []string{invs[1].ID, invs[2].ID}, out.InvoiceIDs)

	again, err := nextDay.MarkOverdue(ctx, admin, cluster)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Marked, "el barrido es idempotente")

	paid, err := nextDay.Pay(ctx, admin, cluster, invs[1].ID)
	require.NoError(t, err, "overdue sigue siendo cobrable")
	assert.Equal(t, string(entity.InvoiceStatusPaid), paid.Status)
}

func TestList_AlcanceDelResidente(t *testing.T) {
	st, invs := generated(t)
	uc := newInvoiceUseCase(st, time.Now())
	ctx := context.Background()

	mine, err := uc.List(ctx, residentActor("A"), cluster, dto.InvoiceListRequest{Period: "2024-03"})
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, "A", mine.Items[0].ResidentID)
	assert.Equal(t, 1, mine.Page.Total)

	all, err := uc.List(ctx, admin, cluster, dto.InvoiceListRequest{PageRequest: dto.PageRequest{Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
	assert.Equal(t, 3, all.Page.Total)

	_, err = uc.Get(ctx, residentActor("A"), cluster, invs[1].ID)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	_, err = uc.List(ctx, admin, cluster, dto.InvoiceListRequest{Status: "lunas"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestVerifyBalance_DetectaDescuadre(t *testing.T) {
	st, invs := generated(t)
	uc := newInvoiceUseCase(st, time.Now())
	ctx := context.Background()

	entries, err := st.Ledger().ListByInvoice(ctx, cluster, invs[0].ID)
	require.NoError(t, err)
	orphan := *entries[0]
	orphan.ID = "huerfana"
	orphan.PostingRef = "manual"
	require.NoError(t, st.Ledger().CreateBatch(ctx, []*entity.LedgerEntry{&orphan}))

	bal, err := uc.VerifyBalance(ctx, admin, cluster, invs[0].ID)
	assert.ErrorIs(t, err, domain.ErrUnbalancedLedger)
	require.NotNil(t, bal)
	assert.False(t, bal.Balanced)
}

// deadlineTx registra si cada transacción llega con plazo.
type deadlineTx struct {
	*memory.Store
	deadlines []bool
}

func (d *deadlineTx) RunBilling(ctx context.Context, fn func(repository.InvoiceRepository, repository.LedgerRepository, repository.ChartOfAccountsRepository) error) error {
	_, ok := ctx.Deadline()
	d.deadlines = append(d.deadlines, ok)
	return d.Store.RunBilling(ctx, fn)
}

// deadlineInvoices registra si cada llamada del barrido llega con plazo.
type deadlineInvoices struct {
	repository.InvoiceRepository
	deadlines []bool
}

func (r *deadlineInvoices) ListPendingDueBefore(ctx context.Context, clusterID string, t time.Time) ([]*entity.Invoice, error) {
	_, ok := ctx.Deadline()
	r.deadlines = append(r.deadlines, ok)
	return r.InvoiceRepository.ListPendingDueBefore(ctx, clusterID, t)
}

func (r *deadlineInvoices) UpdateStatus(ctx context.Context, inv *entity.Invoice, from entity.InvoiceStatus) error {
	_, ok := ctx.Deadline()
	r.deadlines = append(r.deadlines, ok)
	return r.InvoiceRepository.UpdateStatus(ctx, inv, from)
}

func TestTransiciones_AplicanTimeoutDelStore(t *testing.T) {
	st, invs := generated(t)
	tx := &deadlineTx{Store: st}
	invoices := &deadlineInvoices{InvoiceRepository: st.Invoices()}
	uc := billing.NewInvoiceUseCase(invoices, st.Ledger(), tx, accounting.NewPoster(nil), logger.Nop()).
		WithClock(func() time.Time { return time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC) }).
		WithStoreTimeout(time.Second)
	ctx := context.Background()

	_, err := uc.Pay(ctx, admin, cluster, invs[0].ID)
	require.NoError(t, err)
	_, err = uc.Cancel(ctx, admin, cluster, invs[1].ID)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, tx.deadlines)

	out, err := uc.MarkOverdue(ctx, admin, cluster)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Marked)
	assert.Equal(t, []bool{true, true}, invoices.deadlines, "listado y una actualización")
}

func TestTransiciones_TimeoutVencidoEsTransitorio(t *testing.T) {
	st, invs := generated(t)
	uc := newInvoiceUseCase(st, time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)).WithStoreTimeout(time.Nanosecond)

	_, err := uc.Pay(context.Background(), admin, cluster, invs[0].ID)
	assert.ErrorIs(t, err, domain.ErrTransientStore)
	assert.Equal(t, 2, ledgerCount(t, st, invs[0].ID), "sin cobro posteado")
}
