package billing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/komplek-api/internal/application/accounting"
	"github.com/jhoicas/komplek-api/internal/application/storectx"
	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/permission"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
	"github.com/jhoicas/komplek-api/pkg/logger"
)

// GeneratorConfig límites de la generación.
type GeneratorConfig struct {
	Concurrency          int           // participantes en paralelo
	MaxRetries           int           // intentos por participante ante ErrTransientStore
	RetryInitialInterval time.Duration // primer backoff
	StoreTimeout         time.Duration // timeout por transacción
}

// ParticipantFailure participante que no pudo facturarse en la corrida.
type ParticipantFailure struct {
	ResidentID string
	Err        error
}

// GenerationResult tagihan del periodo (nuevas y previas) ordenadas por residente.
type GenerationResult struct {
	IuranID  string
	Period   string
	Invoices []*entity.Invoice
	Created  int
	Existing int
	Failed   []ParticipantFailure
}

// Generator convierte una definición de iuran en tagihan, una por participante y periodo.
// Repetir la corrida no duplica: la unicidad (iuran, residente, periodo) la impone el store.
type Generator struct {
	iuranRepo repository.IuranRepository
	tx        BillingTxRunner
	poster    *accounting.Poster
	cfg       GeneratorConfig
	log       *logger.Logger
	now       func() time.Time
}

// NewGenerator construye el generador.
func NewGenerator(iuranRepo repository.IuranRepository, tx BillingTxRunner, poster *accounting.Poster, cfg GeneratorConfig, log *logger.Logger) *Generator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	if cfg.RetryInitialInterval <= 0 {
		cfg.RetryInitialInterval = 100 * time.Millisecond
	}
	return &Generator{
		iuranRepo: iuranRepo,
		tx:        tx,
		poster:    poster,
		cfg:       cfg,
		log:       log.Component("generator"),
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate crea las tagihan de period para todos los participantes de iuranID.
// Los fallos por participante se acumulan en Failed; lo ya insertado no se revierte.
func (g *Generator) Generate(ctx context.Context, actor permission.Actor, clusterID, iuranID, period string) (*GenerationResult, error) {
	if err := permission.RequireAdmin(actor, clusterID); err != nil {
		return nil, err
	}
	p, err := entity.ParseBillingPeriod(period)
	if err != nil {
		return nil, domain.NewValidationError("period", err.Error())
	}
	def, err := retry(ctx, g.cfg, func() (*entity.Iuran, error) {
		sctx, cancel := g.storeContext(ctx)
		defer cancel()
		return g.iuranRepo.GetByID(sctx, clusterID, iuranID)
	})
	if err != nil {
		return nil, fmt.Errorf("generator: obtener iuran %s: %w", iuranID, err)
	}
	if def == nil {
		return nil, domain.ErrNotFound
	}
	if def.IsDeactivated() || !def.Covers(p) {
		return nil, &domain.OutOfWindowError{
			Period:      p.String(),
			Start:       def.StartDate,
			End:         def.EndDate,
			Deactivated: def.IsDeactivated(),
		}
	}

	type outcome struct {
		invoice *entity.Invoice
		created bool
		err     error
	}
	outcomes := make([]outcome, len(def.Participants))
	dueAt := def.DueDateFor(p)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Concurrency)
	for i, residentID := range def.Participants {
		eg.Go(func() error {
			inv, created, err := g.generateOne(egCtx, def, residentID, p.String(), dueAt)
			outcomes[i] = outcome{invoice: inv, created: created, err: err}
			return nil
		})
	}
	_ = eg.Wait()

	res := &GenerationResult{IuranID: def.ID, Period: p.String()}
	for i, o := range outcomes {
		if o.err != nil {
			res.Failed = append(res.Failed, ParticipantFailure{ResidentID: def.Participants[i], Err: o.err})
			continue
		}
		if o.created {
			res.Created++
		} else {
			res.Existing++
		}
		res.Invoices = append(res.Invoices, o.invoice)
	}
	sort.Slice(res.Invoices, func(a, b int) bool { return res.Invoices[a].ResidentID < res.Invoices[b].ResidentID })

	ev := g.log.Info()
	if len(res.Failed) > 0 {
		ev = g.log.Warn()
	}
	ev.Str("cluster_id", clusterID).
		Str("iuran_id", def.ID).
		Str("period", res.Period).
		Int("created", res.Created).
		Int("existing", res.Existing).
		Int("failed", len(res.Failed)).
		Msg("generación de tagihan")
	return res, nil
}

// generateOne inserta la tagihan si falta y, solo si es nueva, postea el reconocimiento en la misma transacción.
func (g *Generator) generateOne(ctx context.Context, def *entity.Iuran, residentID, period string, dueAt time.Time) (*entity.Invoice, bool, error) {
	type inserted struct {
		invoice *entity.Invoice
		created bool
	}
	out, err := retry(ctx, g.cfg, func() (inserted, error) {
		now := g.now()
		candidate := &entity.Invoice{
			ID:            uuid.New().String(),
			IuranID:       def.ID,
			ClusterID:     def.ClusterID,
			ResidentID:    residentID,
			Amount:        def.Amount,
			BillingPeriod: period,
			DueAt:         dueAt,
			Status:        entity.InvoiceStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		var res inserted
		sctx, cancel := g.storeContext(ctx)
		defer cancel()
		err := g.tx.RunBilling(sctx, func(invoiceRepo repository.InvoiceRepository, ledgerRepo repository.LedgerRepository, coaRepo repository.ChartOfAccountsRepository) error {
			stored, created, err := invoiceRepo.CreateIfAbsent(sctx, candidate)
			if err != nil {
				return err
			}
			if created {
				books := accounting.Books{Ledger: ledgerRepo, Accounts: coaRepo}
				if _, err := g.poster.Accrue(sctx, books, stored); err != nil {
					return err
				}
			}
			res = inserted{invoice: stored, created: created}
			return nil
		})
		return res, err
	})
	if err != nil {
		g.log.Error().Err(err).
			Str("iuran_id", def.ID).
			Str("resident_id", residentID).
			Str("period", period).
			Msg("no se pudo generar la tagihan")
		return nil, false, err
	}
	return out.invoice, out.created, nil
}

func (g *Generator) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return storectx.Timeout(g.cfg.StoreTimeout).Bound(ctx)
}

// retry reintenta op con backoff exponencial mientras el error sea transitorio.
func retry[T any](ctx context.Context, cfg GeneratorConfig, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.RetryInitialInterval
	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && !domain.IsRetryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(cfg.MaxRetries)))
}

// FailureError resume los fallos de una corrida en un único error.
func (r *GenerationResult) FailureError() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, fmt.Errorf("residente %s: %w", f.ResidentID, f.Err))
	}
	return errors.Join(errs...)
}
