package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/komplek-api/internal/application/accounting"
	"github.com/jhoicas/komplek-api/internal/application/billing"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/permission"
	"github.com/jhoicas/komplek-api/internal/infrastructure/memory"
	"github.com/jhoicas/komplek-api/pkg/logger"
)

const cluster = "c1"

var admin = permission.SystemActor(cluster)

func residentActor(id string) permission.Actor {
	return permission.Actor{
		ProfileID: id,
		ClusterID: cluster,
		Permissions: []entity.UserPermission{
			{ProfileID: id, ClusterID: cluster, ResidentID: id, Scope: entity.ScopeSelf},
		},
	}
}

// newStore crea el cluster c1 con los residentes A, B y C y el iuran "Monthly Dues"
// de 50000 con vencimiento el día 10, vigente durante 2024.
func newStore(t *testing.T) (*memory.Store, *entity.Iuran) {
	t.Helper()
	st := memory.New()
	st.AddCluster(entity.Cluster{ID: cluster, Name: "Griya Asri"})
	for _, id := range []string{"A", "B", "C"} {
		st.AddProfile(entity.Profile{ID: id, ClusterID: cluster, Name: "Warga " + id})
	}
	def := &entity.Iuran{
		ID:           "iuran-1",
		ClusterID:    cluster,
		Name:         "Monthly Dues",
		Participants: []string{"A", "B", "C"},
		DueDate:      10,
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Amount:       decimal.NewFromInt(50000),
	}
	require.NoError(t, st.Iuran().Create(context.Background(), def))
	return st, def
}

func newGenerator(st *memory.Store, maxRetries int) *billing.Generator {
	return billing.NewGenerator(st.Iuran(), st, accounting.NewPoster(nil), billing.GeneratorConfig{
		Concurrency:          4,
		MaxRetries:           maxRetries,
		RetryInitialInterval: time.Millisecond,
		StoreTimeout:         time.Second,
	}, logger.Nop())
}

func ledgerCount(t *testing.T, st *memory.Store, invoiceIDs ...string) int {
	t.Helper()
	n := 0
	for _, id := range invoiceIDs {
		entries, err := st.Ledger().ListByInvoice(context.Background(), cluster, id)
		require.NoError(t, err)
		n += len(entries)
	}
	return n
}

func ids(invoices []*entity.Invoice) []string {
	out := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, inv.ID)
	}
	return out
}
