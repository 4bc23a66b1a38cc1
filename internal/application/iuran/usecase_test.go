package iuran_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/komplek-api/internal/application/dto"
	"github.com/jhoicas/komplek-api/internal/application/iuran"
	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/permission"
	"github.com/jhoicas/komplek-api/internal/infrastructure/memory"
	"github.com/jhoicas/komplek-api/pkg/logger"
)

const cluster = "c1"

var admin = permission.SystemActor(cluster)

func setup(t *testing.T, now time.Time) (*iuran.UseCase, *memory.Store) {
	t.Helper()
	st := memory.New()
	st.AddCluster(entity.Cluster{ID: cluster, Name: "Griya Asri"})
	st.AddCluster(entity.Cluster{ID: "c2", Name: "Taman Sari"})
	for _, id := range []string{"A", "B", "C"} {
		st.AddProfile(entity.Profile{ID: id, ClusterID: cluster, Name: "Warga " + id})
	}
	st.AddProfile(entity.Profile{ID: "X", ClusterID: "c2", Name: "Warga lain"})
	uc := iuran.NewUseCase(st.Iuran(), st.Invoices(), st.Profiles(), logger.Nop()).
		WithClock(func() time.Time { return now })
	return uc, st
}

func monthlyDues() dto.CreateIuranRequest {
	return dto.CreateIuranRequest{
		Name:         "Monthly Dues",
		Participants: []string{"A", "B", "C"},
		DueDate:      10,
		StartDate:    "2024-01-01",
		EndDate:      "2024-12-31",
		Amount:       decimal.NewFromInt(50000),
	}
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "se esperaba ValidationError, llegó %v", err)
	return verr.Field
}

func TestCreate(t *testing.T) {
	uc, _ := setup(t, time.Now())

	out, err := uc.Create(context.Background(), admin, cluster, monthlyDues())
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.True(t, out.Active)
	assert.Equal(t, []string{"A", "B", "C"}, out.Participants)
	assert.Equal(t, "2024-01-01", out.StartDate)

	got, err := uc.Get(context.Background(), admin, cluster, out.ID)
	require.NoError(t, err)
	assert.Equal(t, out.Name, got.Name)
}

func TestCreate_Validaciones(t *testing.T) {
	uc, _ := setup(t, time.Now())
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*dto.CreateIuranRequest)
		field  string
	}{
		{"monto cero", func(r *dto.CreateIuranRequest) { r.Amount = decimal.Zero }, "amount"},
		{"monto negativo", func(r *dto.CreateIuranRequest) { r.Amount = decimal.NewFromInt(-1) }, "amount"},
		{"día inválido", func(r *dto.CreateIuranRequest) { r.DueDate = 32 }, "due_date"},
		{"ventana invertida", func(r *dto.CreateIuranRequest) { r.EndDate = "2023-12-31" }, "end_date"},
		{"fecha malformada", func(r *dto.CreateIuranRequest) { r.StartDate = "01/01/2024" }, "start_date"},
		{"sin participantes", func(r *dto.CreateIuranRequest) { r.Participants = nil }, "participants"},
		{"participante repetido", func(r *dto.CreateIuranRequest) { r.Participants = []string{"A", "A"} }, "participants"},
		{"participante de otro cluster", func(r *dto.CreateIuranRequest) { r.Participants = []string{"A", "X"} }, "participants"},
		{"sin nombre", func(r *dto.CreateIuranRequest) { r.Name = "" }, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := monthlyDues()
			tt.mutate(&in)
			_, err := uc.Create(ctx, admin, cluster, in)
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, tt.field, fieldOf(t, err))
		})
	}
}

func TestCreate_SoloAdmin(t *testing.T) {
	uc, _ := setup(t, time.Now())
	resident := permission.Actor{ProfileID: "A", ClusterID: cluster, Permissions: []entity.UserPermission{
		{ProfileID: "A", ClusterID: cluster, ResidentID: "A", Scope: entity.ScopeSelf},
	}}

	_, err := uc.Create(context.Background(), resident, cluster, monthlyDues())
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	_, err = uc.Create(context.Background(), permission.SystemActor("c2"), cluster, monthlyDues())
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
}

func TestUpdate_CamposInmutablesTrasGenerar(t *testing.T) {
	uc, st := setup(t, time.Now())
	ctx := context.Background()
	def, err := uc.Create(ctx, admin, cluster, monthlyDues())
	require.NoError(t, err)

	// Sin tagihan todo es editable.
	amount := decimal.NewFromInt(60000)
	out, err := uc.Update(ctx, admin, cluster, def.ID, dto.UpdateIuranRequest{Amount: &amount})
	require.NoError(t, err)
	assert.True(t, out.Amount.Equal(amount))

	_, _, err = st.Invoices().CreateIfAbsent(ctx, &entity.Invoice{
		ID: "inv-1", IuranID: def.ID, ClusterID: cluster, ResidentID: "A",
		Amount: amount, BillingPeriod: "2024-03", DueAt: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Status: entity.InvoiceStatusPending,
	})
	require.NoError(t, err)

	other := decimal.NewFromInt(75000)
	_, err = uc.Update(ctx, admin, cluster, def.ID, dto.UpdateIuranRequest{Amount: &other})
	var ierr *domain.ImmutableFieldError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, "amount", ierr.Field)

	participants := []string{"A", "B"}
	_, err = uc.Update(ctx, admin, cluster, def.ID, dto.UpdateIuranRequest{Participants: &participants})
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, "participants", ierr.Field)

	// Mismo conjunto en otro orden y mismo monto no son cambios.
	reordered := []string{"C", "B", "A"}
	name := "Iuran Bulanan"
	out, err = uc.Update(ctx, admin, cluster, def.ID, dto.UpdateIuranRequest{Amount: &amount, Participants: &reordered, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Iuran Bulanan", out.Name)
}

func TestDeactivate(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	uc, _ := setup(t, now)
	ctx := context.Background()
	def, err := uc.Create(ctx, admin, cluster, monthlyDues())
	require.NoError(t, err)

	out, err := uc.Deactivate(ctx, admin, cluster, def.ID)
	require.NoError(t, err)
	assert.False(t, out.Active)
	assert.Equal(t, "2024-06-15", out.EndDate)
	require.NotNil(t, out.DeactivatedAt)

	again, err := uc.Deactivate(ctx, admin, cluster, def.ID)
	require.NoError(t, err)
	assert.Equal(t, out.DeactivatedAt.Unix(), again.DeactivatedAt.Unix())

	name := "otro"
	_, err = uc.Update(ctx, admin, cluster, def.ID, dto.UpdateIuranRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDeactivate_AntesDeIniciar(t *testing.T) {
	uc, _ := setup(t, time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC))
	def, err := uc.Create(context.Background(), admin, cluster, monthlyDues())
	require.NoError(t, err)

	out, err := uc.Deactivate(context.Background(), admin, cluster, def.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", out.EndDate, "end_date no queda antes de start_date")
}

func TestList(t *testing.T) {
	uc, _ := setup(t, time.Now())
	ctx := context.Background()
	for range 3 {
		_, err := uc.Create(ctx, admin, cluster, monthlyDues())
		require.NoError(t, err)
	}

	out, err := uc.List(ctx, admin, cluster, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, 3, out.Page.Total, "total del cluster, no de la página")

	last, err := uc.List(ctx, admin, cluster, dto.PageRequest{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)
	assert.Equal(t, 3, last.Page.Total)

	_, err = uc.Get(ctx, admin, cluster, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
