package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/komplek-api/internal/application/accounting"
	"github.com/jhoicas/komplek-api/internal/application/dto"
	"github.com/jhoicas/komplek-api/internal/application/storectx"
	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/ledger"
	"github.com/jhoicas/komplek-api/internal/domain/permission"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
	"github.com/jhoicas/komplek-api/pkg/logger"
)

// InvoiceUseCase consulta y ciclo de vida de las tagihan: pago, vencimiento y anulación.
// Cada transición persiste el estado y su asiento en la misma transacción.
type InvoiceUseCase struct {
	invoiceRepo repository.InvoiceRepository
	ledgerRepo  repository.LedgerRepository
	tx          BillingTxRunner
	poster      *accounting.Poster
	log         *logger.Logger
	now         func() time.Time
	timeout     storectx.Timeout
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	invoiceRepo repository.InvoiceRepository,
	ledgerRepo repository.LedgerRepository,
	tx BillingTxRunner,
	poster *accounting.Poster,
	log *logger.Logger,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		invoiceRepo: invoiceRepo,
		ledgerRepo:  ledgerRepo,
		tx:          tx,
		poster:      poster,
		log:         log.Component("invoices"),
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *InvoiceUseCase) WithClock(now func() time.Time) *InvoiceUseCase {
	uc.now = now
	return uc
}

// WithStoreTimeout acota cada llamada al store.
func (uc *InvoiceUseCase) WithStoreTimeout(d time.Duration) *InvoiceUseCase {
	uc.timeout = storectx.Timeout(d)
	return uc
}

// Get devuelve una tagihan visible para el actor.
func (uc *InvoiceUseCase) Get(ctx context.Context, actor permission.Actor, clusterID, id string) (*dto.InvoiceResponse, error) {
	ctx, cancel := uc.timeout.Bound(ctx)
	defer cancel()
	inv, err := uc.load(ctx, uc.invoiceRepo, clusterID, id)
	if err != nil {
		return nil, err
	}
	if err := permission.Authorize(actor, invoiceRow(inv)); err != nil {
		return nil, err
	}
	return ToInvoiceResponse(inv), nil
}

// List devuelve las tagihan del cluster que el actor puede ver.
func (uc *InvoiceUseCase) List(ctx context.Context, actor permission.Actor, clusterID string, q dto.InvoiceListRequest) (*dto.InvoiceListResponse, error) {
	if err := permission.RequireMember(actor, clusterID); err != nil {
		return nil, err
	}
	if err := dto.Validate(q); err != nil {
		return nil, err
	}
	if q.Period != "" {
		if _, err := entity.ParseBillingPeriod(q.Period); err != nil {
			return nil, domain.NewValidationError("period", err.Error())
		}
	}
	q.DefaultPage()
	ctx, cancel := uc.timeout.Bound(ctx)
	defer cancel()
	all, err := uc.invoiceRepo.List(ctx, clusterID, repository.InvoiceFilter{
		IuranID:    q.IuranID,
		ResidentID: q.ResidentID,
		Period:     q.Period,
		Status:     entity.InvoiceStatus(q.Status),
	})
	if err != nil {
		return nil, fmt.Errorf("invoices: listar: %w", err)
	}
	visible := permission.Filter(actor, all, invoiceRow)
	from, to := q.Window(len(visible))
	out := &dto.InvoiceListResponse{
		Items: make([]dto.InvoiceResponse, 0, to-from),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: len(visible)},
	}
	for _, inv := range visible[from:to] {
		out.Items = append(out.Items, *ToInvoiceResponse(inv))
	}
	return out, nil
}

// Pay registra el pago: pending|overdue → paid, debe Kas / haber Piutang.
func (uc *InvoiceUseCase) Pay(ctx context.Context, actor permission.Actor, clusterID, id string) (*dto.InvoiceResponse, error) {
	return uc.transition(ctx, actor, clusterID, id, "pago", func(inv *entity.Invoice, now time.Time) error {
		return inv.MarkPaid(now)
	}, uc.poster.SettlePayment)
}

// Cancel anula la tagihan: pending|overdue → cancelled y asiento compensatorio.
func (uc *InvoiceUseCase) Cancel(ctx context.Context, actor permission.Actor, clusterID, id string) (*dto.InvoiceResponse, error) {
	return uc.transition(ctx, actor, clusterID, id, "anulación", func(inv *entity.Invoice, now time.Time) error {
		return inv.Cancel(now)
	}, uc.poster.Reverse)
}

type postFunc func(ctx context.Context, books accounting.Books, inv *entity.Invoice) ([]*entity.LedgerEntry, error)

func (uc *InvoiceUseCase) transition(
	ctx context.Context,
	actor permission.Actor,
	clusterID, id, action string,
	apply func(inv *entity.Invoice, now time.Time) error,
	post postFunc,
) (*dto.InvoiceResponse, error) {
	if err := permission.RequireAdmin(actor, clusterID); err != nil {
		return nil, err
	}
	ctx, cancel := uc.timeout.Bound(ctx)
	defer cancel()
	var updated *entity.Invoice
	err := uc.tx.RunBilling(ctx, func(invoiceRepo repository.InvoiceRepository, ledgerRepo repository.LedgerRepository, coaRepo repository.ChartOfAccountsRepository) error {
		inv, err := uc.load(ctx, invoiceRepo, clusterID, id)
		if err != nil {
			return err
		}
		from := inv.Status
		if err := apply(inv, uc.now()); err != nil {
			return err
		}
		if err := invoiceRepo.UpdateStatus(ctx, inv, from); err != nil {
			return err
		}
		if _, err := post(ctx, accounting.Books{Ledger: ledgerRepo, Accounts: coaRepo}, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("cluster_id", clusterID).
		Str("invoice_id", id).
		Str("status", string(updated.Status)).
		Msg(action + " registrado")
	return ToInvoiceResponse(updated), nil
}

// MarkOverdue pasa a overdue las tagihan pending ya vencidas. Las que cambian de estado
// en paralelo (pagadas o anuladas entre la lectura y la escritura) se omiten.
func (uc *InvoiceUseCase) MarkOverdue(ctx context.Context, actor permission.Actor, clusterID string) (*dto.OverdueSweepResponse, error) {
	if err := permission.RequireAdmin(actor, clusterID); err != nil {
		return nil, err
	}
	now := uc.now()
	lctx, cancel := uc.timeout.Bound(ctx)
	candidates, err := uc.invoiceRepo.ListPendingDueBefore(lctx, clusterID, entity.DateOnly(now))
	cancel()
	if err != nil {
		return nil, fmt.Errorf("invoices: listar vencidas: %w", err)
	}
	out := &dto.OverdueSweepResponse{InvoiceIDs: []string{}}
	for _, inv := range candidates {
		if err := inv.MarkOverdue(now); err != nil {
			continue
		}
		uctx, cancel := uc.timeout.Bound(ctx)
		err := uc.invoiceRepo.UpdateStatus(uctx, inv, entity.InvoiceStatusPending)
		cancel()
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return out, fmt.Errorf("invoices: marcar vencida %s: %w", inv.ID, err)
		}
		out.Marked++
		out.InvoiceIDs = append(out.InvoiceIDs, inv.ID)
	}
	uc.log.Info().Str("cluster_id", clusterID).Int("marked", out.Marked).Msg("barrido de vencidas")
	return out, nil
}

// VerifyBalance compara débitos y créditos de la tagihan. Un descuadre devuelve ErrUnbalancedLedger.
func (uc *InvoiceUseCase) VerifyBalance(ctx context.Context, actor permission.Actor, clusterID, id string) (*dto.InvoiceBalanceResponse, error) {
	ctx, cancel := uc.timeout.Bound(ctx)
	defer cancel()
	inv, err := uc.load(ctx, uc.invoiceRepo, clusterID, id)
	if err != nil {
		return nil, err
	}
	if err := permission.Authorize(actor, invoiceRow(inv)); err != nil {
		return nil, err
	}
	entries, err := uc.ledgerRepo.ListByInvoice(ctx, clusterID, id)
	if err != nil {
		return nil, fmt.Errorf("invoices: entradas de %s: %w", id, err)
	}
	debit, credit := ledger.Totals(entries)
	resp := &dto.InvoiceBalanceResponse{InvoiceID: id, Debit: debit, Credit: credit, Balanced: debit.Equal(credit)}
	if err := ledger.ValidateBalanced(entries); err != nil {
		uc.log.Error().Err(err).Str("invoice_id", id).Msg("tagihan descuadrada")
		return resp, err
	}
	return resp, nil
}

func (uc *InvoiceUseCase) load(ctx context.Context, repo repository.InvoiceRepository, clusterID, id string) (*entity.Invoice, error) {
	inv, err := repo.GetByID(ctx, clusterID, id)
	if err != nil {
		return nil, fmt.Errorf("invoices: obtener %s: %w", id, err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func invoiceRow(inv *entity.Invoice) permission.Row {
	return permission.Row{ClusterID: inv.ClusterID, ResidentID: inv.ResidentID}
}

// ToInvoiceResponse mapea la entidad a la respuesta HTTP.
func ToInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	return &dto.InvoiceResponse{
		ID:            inv.ID,
		IuranID:       inv.IuranID,
		ClusterID:     inv.ClusterID,
		ResidentID:    inv.ResidentID,
		Amount:        inv.Amount,
		BillingPeriod: inv.BillingPeriod,
		DueAt:         inv.DueAt.Format(dto.DateLayout),
		Status:        string(inv.Status),
		PaidAt:        inv.PaidAt,
		CancelledAt:   inv.CancelledAt,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

// ToGenerateResponse mapea el resultado de una corrida.
func ToGenerateResponse(r *GenerationResult) *dto.GenerateInvoicesResponse {
	out := &dto.GenerateInvoicesResponse{
		IuranID:  r.IuranID,
		Period:   r.Period,
		Created:  r.Created,
		Existing: r.Existing,
		Invoices: make([]dto.InvoiceResponse, 0, len(r.Invoices)),
	}
	for _, inv := range r.Invoices {
		out.Invoices = append(out.Invoices, *ToInvoiceResponse(inv))
	}
	for _, f := range r.Failed {
		out.Failed = append(out.Failed, dto.GenerationFailureDTO{ResidentID: f.ResidentID, Error: f.Err.Error()})
	}
	return out
}
