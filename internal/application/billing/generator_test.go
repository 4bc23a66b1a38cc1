package billing_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/komplek-api/internal/application/accounting"
	"github.com/jhoicas/komplek-api/internal/application/billing"
	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/ledger"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
	"github.com/jhoicas/komplek-api/pkg/logger"
)

func TestGenerate_UnaTagihanPorParticipante(t *testing.T) {
	st, def := newStore(t)
	gen := newGenerator(st, 3)

	res, err := gen.Generate(context.Background(), admin, cluster, def.ID, "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Created)
	assert.Equal(t, 0, res.Existing)
	assert.Empty(t, res.Failed)
	require.Len(t, res.Invoices, 3)

	for i, resident := range []string{"A", "B", "C"} {
		inv := res.Invoices[i]
		assert.Equal(t, resident, inv.ResidentID)
		assert.Equal(t, entity.InvoiceStatusPending, inv.Status)
		assert.True(t, inv.Amount.Equal(decimal.NewFromInt(50000)))
		assert.Equal(t, "2024-03", inv.BillingPeriod)
		assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), inv.DueAt)

		entries, err := st.Ledger().ListByInvoice(context.Background(), cluster, inv.ID)
		require.NoError(t, err)
		require.Len(t, entries, 2, "reconocimiento: debe Piutang / haber Pendapatan")
		assert.NoError(t, ledger.ValidateBalanced(entries))
	}
}

func TestGenerate_RepetirNoDuplica(t *testing.T) {
	st, def := newStore(t)
	gen := newGenerator(st, 3)
	ctx := context.Background()

	first, err := gen.Generate(ctx, admin, cluster, def.ID, "2024-03")
	require.NoError(t, err)
	second, err := gen.Generate(ctx, admin, cluster, def.ID, "2024-03")
	require.NoError(t, err)

	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 3, second.Existing)
	assert.Equal(t, ids(first.Invoices), ids(second.Invoices))
	assert.Equal(t, 6, ledgerCount(t, st, ids(second.Invoices)...), "el reconocimiento se postea una sola vez")
}

func TestGenerate_CorridasConcurrentes(t *testing.T) {
	st, def := newStore(t)
	gen := newGenerator(st, 3)

	var (
		wg      sync.WaitGroup
		created atomic.Int64
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := gen.Generate(context.Background(), admin, cluster, def.ID, "2024-03")
			if !assert.NoError(t, err) {
				return
			}
			created.Add(int64(res.Created))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(3), created.Load())
	all, err := st.Invoices().ListByIuranPeriod(context.Background(), cluster, def.ID, "2024-03")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 6, ledgerCount(t, st, ids(all)...))
}

func TestGenerate_PeriodosDistintosSonIndependientes(t *testing.T) {
	st, def := newStore(t)
	gen := newGenerator(st, 3)
	ctx := context.Background()

	mar, err := gen.Generate(ctx, admin, cluster, def.ID, "2024-03")
	require.NoError(t, err)
	apr, err := gen.Generate(ctx, admin, cluster, def.ID, "2024-04")
	require.NoError(t, err)

	assert.Equal(t, 3, apr.Created)
	assert.NotEqual(t, ids(mar.Invoices), ids(apr.Invoices))
}

func TestGenerate_FueraDeVigencia(t *testing.T) {
	st, def := newStore(t)
	gen := newGenerator(st, 3)

	_, err := gen.Generate(context.Background(), admin, cluster, def.ID, "2025-01")
	require.ErrorIs(t, err, domain.ErrOutOfWindow)

	var werr *domain.OutOfWindowError
	require.True(t, errors.As(err, &werr))
	assert.False(t, werr.Deactivated)

	all, err := st.Invoices().List(context.Background(), cluster, repository.InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGenerate_IuranDesactivado(t *testing.T) {
	st, def := newStore(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	def.DeactivatedAt = &now
	require.NoError(t, st.Iuran().Update(context.Background(), def))

	_, err := newGenerator(st, 3).Generate(context.Background(), admin, cluster, def.ID, "2024-03")
	var werr *domain.OutOfWindowError
	require.True(t, errors.As(err, &werr))
	assert.True(t, werr.Deactivated)
}

func TestGenerate_EntradasInvalidas(t *testing.T) {
	st, def := newStore(t)
	gen := newGenerator(st, 3)
	ctx := context.Background()

	_, err := gen.Generate(ctx, admin, cluster, def.ID, "2024-13")
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "period", verr.Field)

	_, err = gen.Generate(ctx, admin, cluster, "no-existe", "2024-03")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = gen.Generate(ctx, residentActor("A"), cluster, def.ID, "2024-03")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	_, err = gen.Generate(ctx, admin, "otro-cluster", def.ID, "2024-03")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
}

func TestGenerate_ReintentaFallosTransitorios(t *testing.T) {
	st, def := newStore(t)
	var calls atomic.Int64
	st.SetFaultHook(func(op string) error {
		if op == "invoices.create" && calls.Add(1) <= 2 {
			return fmt.Errorf("conexión reiniciada: %w", domain.ErrTransientStore)
		}
		return nil
	})

	res, err := newGenerator(st, 5).Generate(context.Background(), admin, cluster, def.ID, "2024-03")
	require.NoError(t, err)
	assert.Empty(t, res.Failed)
	assert.Equal(t, 3, res.Created)
	assert.Equal(t, int64(5), calls.Load(), "dos fallos y tres inserciones")
}

func TestGenerate_FalloPersistenteQuedaEnFailed(t *testing.T) {
	st, def := newStore(t)
	st.SetFaultHook(func(op string) error {
		if op == "ledger.create" {
			return fmt.Errorf("disco lleno: %w", domain.ErrTransientStore)
		}
		return nil
	})

	res, err := newGenerator(st, 2).Generate(context.Background(), admin, cluster, def.ID, "2024-03")
	require.NoError(t, err)
	assert.Len(t, res.Failed, 3)
	assert.Empty(t, res.Invoices)
	assert.ErrorIs(t, res.FailureError(), domain.ErrTransientStore)

	st.SetFaultHook(nil)
	all, err := st.Invoices().ListByIuranPeriod(context.Background(), cluster, def.ID, "2024-03")
	require.NoError(t, err)
	assert.Empty(t, all, "la tagihan sin asiento se revierte")

	res, err = newGenerator(st, 2).Generate(context.Background(), admin, cluster, def.ID, "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Created, "la corrida siguiente completa el periodo")
}

func TestGenerate_FalloParcialNoRevierteLoInsertado(t *testing.T) {
	st, def := newStore(t)
	var creates atomic.Int64
	st.SetFaultHook(func(op string) error {
		if op == "invoices.create" && creates.Add(1) == 2 {
			return errors.New("permiso denegado")
		}
		return nil
	})
	gen := billing.NewGenerator(st.Iuran(), st, accounting.NewPoster(nil), billing.GeneratorConfig{
		Concurrency:          1,
		MaxRetries:           3,
		RetryInitialInterval: time.Millisecond,
		StoreTimeout:         time.Second,
	}, logger.Nop())
	ctx := context.Background()

	res, err := gen.Generate(ctx, admin, cluster, def.ID, "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "B", res.Failed[0].ResidentID)
	assert.ErrorContains(t, res.Failed[0].Err, "permiso denegado")
	assert.Equal(t, int64(3), creates.Load(), "un error no transitorio no se reintenta")

	st.SetFaultHook(nil)
	stored, err := st.Invoices().ListByIuranPeriod(ctx, cluster, def.ID, "2024-03")
	require.NoError(t, err)
	residents := make([]string, 0, len(stored))
	for _, inv := range stored {
		residents = append(residents, inv.ResidentID)
	}
	assert.ElementsMatch(t, []string{"A", "C"}, residents)
	assert.Equal(t, 4, ledgerCount(t, st, ids(stored)...))

	rerun, err := gen.Generate(ctx, admin, cluster, def.ID, "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 1, rerun.Created)
	assert.Equal(t, 2, rerun.Existing)
	assert.Empty(t, rerun.Failed)
}
