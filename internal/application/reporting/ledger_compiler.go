// Package reporting compila vistas de solo lectura del libro mayor.
package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/komplek-api/internal/application/dto"
	"github.com/jhoicas/komplek-api/internal/application/storectx"
	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/ledger"
	"github.com/jhoicas/komplek-api/internal/domain/permission"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
	"github.com/jhoicas/komplek-api/pkg/logger"
)

// LedgerCompiler une libro mayor, plan de cuentas, tagihan y residentes, filtra por alcance del actor
// y ordena por updated_at descendente. No escribe.
type LedgerCompiler struct {
	repo    repository.ReportRepository
	log     *logger.Logger
	timeout storectx.Timeout
}

// NewLedgerCompiler construye el compilador.
func NewLedgerCompiler(repo repository.ReportRepository, log *logger.Logger) *LedgerCompiler {
	return &LedgerCompiler{repo: repo, log: log.Component("ledger-compiler")}
}

// WithStoreTimeout acota las consultas de la vista.
func (c *LedgerCompiler) WithStoreTimeout(d time.Duration) *LedgerCompiler {
	c.timeout = storectx.Timeout(d)
	return c
}

// Compile devuelve la página pedida de la vista del libro mayor.
// Total cuenta solo las filas visibles para el actor.
func (c *LedgerCompiler) Compile(ctx context.Context, actor permission.Actor, clusterID string, q dto.LedgerQuery) (*dto.LedgerPageResponse, error) {
	ctx, cancel := c.timeout.Bound(ctx)
	defer cancel()
	if err := permission.RequireMember(actor, clusterID); err != nil {
		return nil, err
	}
	if err := dto.Validate(q); err != nil {
		return nil, err
	}
	if err := validatePeriod(q.Period); err != nil {
		return nil, err
	}
	q.DefaultPage()

	rows, err := c.repo.ListLedgerView(ctx, clusterID, repository.LedgerViewFilter{
		Period:      q.Period,
		ResidentID:  q.ResidentID,
		AccountType: entity.AccountType(q.AccountType),
	})
	if err != nil {
		return nil, fmt.Errorf("compiler: vista del libro mayor: %w", err)
	}
	visible := permission.Filter(actor, rows, func(r repository.LedgerViewRow) permission.Row {
		return permission.Row{ClusterID: r.ClusterID, ResidentID: r.ResidentID}
	})
	SortRowsByUpdatedDesc(visible)

	from, to := q.Window(len(visible))
	out := &dto.LedgerPageResponse{
		Items: make([]dto.LedgerRowResponse, 0, to-from),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: len(visible)},
	}
	for _, r := range visible[from:to] {
		out.Items = append(out.Items, toLedgerRow(r))
	}
	c.log.Debug().
		Str("cluster_id", clusterID).
		Str("profile_id", actor.ProfileID).
		Int("rows", len(rows)).
		Int("visible", len(visible)).
		Msg("libro mayor compilado")
	return out, nil
}

// Statements estado de cuenta por tagihan visible del periodo: débitos, créditos y si cuadran.
func (c *LedgerCompiler) Statements(ctx context.Context, actor permission.Actor, clusterID, period string) ([]dto.InvoiceStatementResponse, error) {
	ctx, cancel := c.timeout.Bound(ctx)
	defer cancel()
	if err := permission.RequireMember(actor, clusterID); err != nil {
		return nil, err
	}
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	items, err := c.repo.ListInvoicesWithLedger(ctx, clusterID, period)
	if err != nil {
		return nil, fmt.Errorf("compiler: tagihan con libro mayor: %w", err)
	}
	visible := permission.Filter(actor, items, func(it repository.InvoiceWithLedger) permission.Row {
		return permission.Row{ClusterID: it.Invoice.ClusterID, ResidentID: it.Invoice.ResidentID}
	})
	sort.SliceStable(visible, func(i, j int) bool {
		a, b := visible[i].Invoice, visible[j].Invoice
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID > b.ID
	})

	out := make([]dto.InvoiceStatementResponse, 0, len(visible))
	for _, it := range visible {
		entries := make([]*entity.LedgerEntry, 0, len(it.Entries))
		for i := range it.Entries {
			entries = append(entries, &it.Entries[i])
		}
		debit, credit := ledger.Totals(entries)
		out = append(out, dto.InvoiceStatementResponse{
			InvoiceID:     it.Invoice.ID,
			ResidentID:    it.Invoice.ResidentID,
			ResidentName:  it.ResidentName,
			BillingPeriod: it.Invoice.BillingPeriod,
			Status:        string(it.Invoice.Status),
			Amount:        it.Invoice.Amount,
			Debit:         debit,
			Credit:        credit,
			Balanced:      debit.Equal(credit),
			UpdatedAt:     it.Invoice.UpdatedAt,
		})
	}
	return out, nil
}

// SortRowsByUpdatedDesc ordena por updated_at descendente; empates por id descendente.
func SortRowsByUpdatedDesc(rows []repository.LedgerViewRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].UpdatedAt.Equal(rows[j].UpdatedAt) {
			return rows[i].UpdatedAt.After(rows[j].UpdatedAt)
		}
		return rows[i].EntryID > rows[j].EntryID
	})
}

func validatePeriod(period string) error {
	if period == "" {
		return nil
	}
	if _, err := entity.ParseBillingPeriod(period); err != nil {
		return domain.NewValidationError("period", err.Error())
	}
	return nil
}

func toLedgerRow(r repository.LedgerViewRow) dto.LedgerRowResponse {
	return dto.LedgerRowResponse{
		EntryID:     r.EntryID,
		PostingRef:  r.PostingRef,
		Direction:   string(r.Direction),
		Amount:      r.Amount,
		Description: r.Description,
		Account: dto.AccountRef{
			ID:   r.AccountID,
			Code: r.AccountCode,
			Name: r.AccountName,
			Type: string(r.AccountType),
		},
		InvoiceID:     r.InvoiceID,
		InvoiceStatus: string(r.InvoiceStatus),
		BillingPeriod: r.BillingPeriod,
		ResidentID:    r.ResidentID,
		ResidentName:  r.ResidentName,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
