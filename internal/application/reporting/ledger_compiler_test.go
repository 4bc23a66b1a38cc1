package reporting_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/komplek-api/internal/application/dto"
	"github.com/jhoicas/komplek-api/internal/application/reporting"
	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/permission"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
	"github.com/jhoicas/komplek-api/internal/infrastructure/memory"
	"github.com/jhoicas/komplek-api/pkg/logger"
)

const cluster = "c1"

var (
	admin = permission.SystemActor(cluster)
	base  = time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)
)

func resident(id string) permission.Actor {
	return permission.Actor{ProfileID: id, ClusterID: cluster, Permissions: []entity.UserPermission{
		{ProfileID: id, ClusterID: cluster, ResidentID: id, Scope: entity.ScopeSelf},
	}}
}

// seeded arma un libro mayor con updated_at conocidos, insertados fuera de orden:
//
//	inv-A  (A, 2024-03): e1 +1h, e2 +1h
//	inv-B  (B, 2024-03): e3 +3h, e4 +3h
//	inv-A4 (A, 2024-04): e5 +5h, e6 +5h
//	ajuste (marzo):      e7 +2h, e8 +2h
func seeded(t *testing.T) *reporting.LedgerCompiler {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	st.AddCluster(entity.Cluster{ID: cluster, Name: "Griya Asri"})
	for _, id := range []string{"A", "B"} {
		st.AddProfile(entity.Profile{ID: id, ClusterID: cluster, Name: "Warga " + id})
	}
	require.NoError(t, st.Iuran().Create(ctx, &entity.Iuran{
		ID: "iuran-1", ClusterID: cluster, Name: "Monthly Dues", Participants: []string{"A", "B"},
		DueDate: 10, StartDate: base.AddDate(0, -2, 0), EndDate: base.AddDate(1, 0, 0), Amount: decimal.NewFromInt(50000),
	}))
	for _, a := range []entity.ChartOfAccount{
		{ID: "acc-ar", ClusterID: cluster, Code: "1-1200", Name: "Piutang Iuran", Type: entity.AccountTypeAsset},
		{ID: "acc-rev", ClusterID: cluster, Code: "4-1000", Name: "Pendapatan Iuran", Type: entity.AccountTypeRevenue},
	} {
		require.NoError(t, st.Accounts().Create(ctx, &a))
	}
	for _, inv := range []struct{ id, resident, period string }{
		{"inv-A", "A", "2024-03"}, {"inv-B", "B", "2024-03"}, {"inv-A4", "A", "2024-04"},
	} {
		_, _, err := st.Invoices().CreateIfAbsent(ctx, &entity.Invoice{
			ID: inv.id, IuranID: "iuran-1", ClusterID: cluster, ResidentID: inv.resident,
			Amount: decimal.NewFromInt(50000), BillingPeriod: inv.period, DueAt: base, Status: entity.InvoiceStatusPending,
			CreatedAt: base, UpdatedAt: base,
		})
		require.NoError(t, err)
	}

	entry := func(id, invoiceID, account string, dir entity.Direction, offset time.Duration) *entity.LedgerEntry {
		return &entity.LedgerEntry{
			ID: id, ClusterID: cluster, InvoiceID: invoiceID, ChartOfAccountsID: account,
			Amount: decimal.NewFromInt(50000), Direction: dir, PostingRef: "ref-" + invoiceID,
			CreatedAt: base.Add(offset), UpdatedAt: base.Add(offset),
		}
	}
	batches := [][]*entity.LedgerEntry{
		{entry("e5", "inv-A4", "acc-ar", entity.DirectionDebit, 5*time.Hour), entry("e6", "inv-A4", "acc-rev", entity.DirectionCredit, 5*time.Hour)},
		{entry("e1", "inv-A", "acc-ar", entity.DirectionDebit, time.Hour), entry("e2", "inv-A", "acc-rev", entity.DirectionCredit, time.Hour)},
		{entry("e7", "", "acc-ar", entity.DirectionDebit, 2*time.Hour), entry("e8", "", "acc-rev", entity.DirectionCredit, 2*time.Hour)},
		{entry("e3", "inv-B", "acc-ar", entity.DirectionDebit, 3*time.Hour), entry("e4", "inv-B", "acc-rev", entity.DirectionCredit, 3*time.Hour)},
	}
	for _, b := range batches {
		require.NoError(t, st.Ledger().CreateBatch(ctx, b))
	}
	return reporting.NewLedgerCompiler(st.Reports(), logger.Nop())
}

func entryIDs(rows []dto.LedgerRowResponse) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.EntryID)
	}
	return out
}

func TestCompile_OrdenUpdatedAtDescendente(t *testing.T) {
	c := seeded(t)

	out, err := c.Compile(context.Background(), admin, cluster, dto.LedgerQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"e6", "e5", "e4", "e3", "e8", "e7", "e2", "e1"}, entryIDs(out.Items))
	assert.Equal(t, 8, out.Page.Total)

	for i := 1; i < len(out.Items); i++ {
		assert.False(t, out.Items[i].UpdatedAt.After(out.Items[i-1].UpdatedAt))
	}
}

func TestCompile_FiltroDePeriodo(t *testing.T) {
	c := seeded(t)

	out, err := c.Compile(context.Background(), admin, cluster, dto.LedgerQuery{Period: "2024-03"})
	require.NoError(t, err)
	assert.Equal(t, []string{"e4", "e3", "e8", "e7", "e2", "e1"}, entryIDs(out.Items))
	assert.Equal(t, "Warga B", out.Items[0].ResidentName)
	assert.Equal(t, "1-1200", out.Items[1].Account.Code)
}

func TestCompile_AlcanceDelResidente(t *testing.T) {
	c := seeded(t)
	ctx := context.Background()

	out, err := c.Compile(ctx, resident("A"), cluster, dto.LedgerQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"e6", "e5", "e2", "e1"}, entryIDs(out.Items), "sin filas de B ni ajustes")
	assert.Equal(t, 4, out.Page.Total)

	out, err = c.Compile(ctx, resident("A"), cluster, dto.LedgerQuery{ResidentID: "B"})
	require.NoError(t, err)
	assert.Empty(t, out.Items)

	out, err = c.Compile(ctx, admin, cluster, dto.LedgerQuery{ResidentID: "B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"e4", "e3"}, entryIDs(out.Items))
}

func TestCompile_FiltroTipoDeCuenta(t *testing.T) {
	c := seeded(t)

	out, err := c.Compile(context.Background(), admin, cluster, dto.LedgerQuery{AccountType: "revenue"})
	require.NoError(t, err)
	assert.Equal(t, []string{"e6", "e4", "e8", "e2"}, entryIDs(out.Items))
}

func TestCompile_Paginacion(t *testing.T) {
	c := seeded(t)
	ctx := context.Background()

	out, err := c.Compile(ctx, admin, cluster, dto.LedgerQuery{PageRequest: dto.PageRequest{Limit: 3, Offset: 2}})
	require.NoError(t, err)
	assert.Equal(t, []string{"e4", "e3", "e8"}, entryIDs(out.Items))
	assert.Equal(t, 8, out.Page.Total)

	out, err = c.Compile(ctx, admin, cluster, dto.LedgerQuery{PageRequest: dto.PageRequest{Limit: 1000}})
	require.NoError(t, err)
	assert.Equal(t, dto.MaxPageLimit, out.Page.Limit)

	out, err = c.Compile(ctx, admin, cluster, dto.LedgerQuery{PageRequest: dto.PageRequest{Offset: 50}})
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, dto.DefaultPageLimit, out.Page.Limit)
}

func TestCompile_Errores(t *testing.T) {
	c := seeded(t)
	ctx := context.Background()

	_, err := c.Compile(ctx, admin, cluster, dto.LedgerQuery{Period: "marzo"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = c.Compile(ctx, admin, cluster, dto.LedgerQuery{AccountType: "gasto"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = c.Compile(ctx, permission.Actor{ProfileID: "Z", ClusterID: cluster}, cluster, dto.LedgerQuery{})
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	_, err = c.Compile(ctx, admin, "c2", dto.LedgerQuery{})
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
}

func TestStatements(t *testing.T) {
	c := seeded(t)
	ctx := context.Background()

	out, err := c.Statements(ctx, admin, cluster, "2024-03")
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, s := range out {
		assert.True(t, s.Balanced, s.InvoiceID)
		assert.Equal(t, "50000", s.Debit.String())
	}

	mine, err := c.Statements(ctx, resident("B"), cluster, "2024-03")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "inv-B", mine[0].InvoiceID)
}

func TestSortRowsByUpdatedDesc_EmpatePorID(t *testing.T) {
	rows := make([]repository.LedgerViewRow, 0, 4)
	for i, offset := range []time.Duration{0, time.Minute, 0, time.Minute} {
		rows = append(rows, repository.LedgerViewRow{EntryID: fmt.Sprintf("r%d", i), UpdatedAt: base.Add(offset)})
	}
	reporting.SortRowsByUpdatedDesc(rows)

	got := make([]string, 0, len(rows))
	for _, r := range rows {
		got = append(got, r.EntryID)
	}
	assert.Equal(t, []string{"r3", "r1", "r2", "r0"}, got)
}

// deadlineReports registra si cada consulta llega con plazo.
type deadlineReports struct {
	repository.ReportRepository
	deadlines []bool
}

func (r *deadlineReports) ListLedgerView(ctx context.Context, clusterID string, f repository.LedgerViewFilter) ([]repository.LedgerViewRow, error) {
	_, ok := ctx.Deadline()
	r.deadlines = append(r.deadlines, ok)
	return r.ReportRepository.ListLedgerView(ctx, clusterID, f)
}

func (r *deadlineReports) ListInvoicesWithLedger(ctx context.Context, clusterID, period string) ([]repository.InvoiceWithLedger, error) {
	_, ok := ctx.Deadline()
	r.deadlines = append(r.deadlines, ok)
	return r.ReportRepository.ListInvoicesWithLedger(ctx, clusterID, period)
}

func TestCompile_AplicaTimeoutDelStore(t *testing.T) {
	st := memory.New()
	st.AddCluster(entity.Cluster{ID: cluster, Name: "Griya Asri"})
	repo := &deadlineReports{ReportRepository: st.Reports()}
	c := reporting.NewLedgerCompiler(repo, logger.Nop()).WithStoreTimeout(time.Second)

	_, err := c.Compile(context.Background(), admin, cluster, dto.LedgerQuery{})
	require.NoError(t, err)
	_, err = c.Statements(context.Background(), admin, cluster, "2024-03")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, repo.deadlines)
}
