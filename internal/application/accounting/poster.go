// Package accounting mantiene el plan de cuentas y postea asientos de partida doble.
package accounting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/ledger"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
)

// Books repos sobre los que se postea. Dentro de una transacción son los repos de esa tx.
type Books struct {
	Ledger   repository.LedgerRepository
	Accounts repository.ChartOfAccountsRepository
}

// Line línea de asiento expresada por código de cuenta.
type Line struct {
	AccountCode string
	Direction   entity.Direction
	Amount      decimal.Decimal
}

// Poster arma y persiste asientos balanceados.
type Poster struct {
	now func() time.Time
}

// NewPoster construye el poster. now nil = time.Now.
func NewPoster(now func() time.Time) *Poster {
	if now == nil {
		now = time.Now
	}
	return &Poster{now: now}
}

// Accrue reconoce la tagihan: debe Piutang, haber Pendapatan.
func (p *Poster) Accrue(ctx context.Context, books Books, inv *entity.Invoice) ([]*entity.LedgerEntry, error) {
	return p.post(ctx, books, inv.ClusterID, inv.ID, "Tagihan iuran "+inv.BillingPeriod, []Line{
		{AccountCode: entity.AccountCodeReceivable, Direction: entity.DirectionDebit, Amount: inv.Amount},
		{AccountCode: entity.AccountCodeDuesIncome, Direction: entity.DirectionCredit, Amount: inv.Amount},
	})
}

// SettlePayment registra el cobro: debe Kas, haber Piutang.
func (p *Poster) SettlePayment(ctx context.Context, books Books, inv *entity.Invoice) ([]*entity.LedgerEntry, error) {
	return p.post(ctx, books, inv.ClusterID, inv.ID, "Pembayaran iuran "+inv.BillingPeriod, []Line{
		{AccountCode: entity.AccountCodeCash, Direction: entity.DirectionDebit, Amount: inv.Amount},
		{AccountCode: entity.AccountCodeReceivable, Direction: entity.DirectionCredit, Amount: inv.Amount},
	})
}

// Reverse compensa el reconocimiento de una tagihan anulada: debe Pendapatan, haber Piutang.
// Las entradas originales se conservan.
func (p *Poster) Reverse(ctx context.Context, books Books, inv *entity.Invoice) ([]*entity.LedgerEntry, error) {
	return p.post(ctx, books, inv.ClusterID, inv.ID, "Pembatalan tagihan "+inv.BillingPeriod, []Line{
		{AccountCode: entity.AccountCodeDuesIncome, Direction: entity.DirectionDebit, Amount: inv.Amount},
		{AccountCode: entity.AccountCodeReceivable, Direction: entity.DirectionCredit, Amount: inv.Amount},
	})
}

// Adjust postea un asiento manual sin tagihan asociada.
func (p *Poster) Adjust(ctx context.Context, books Books, clusterID, description string, lines []Line) ([]*entity.LedgerEntry, error) {
	return p.post(ctx, books, clusterID, "", description, lines)
}

func (p *Poster) post(ctx context.Context, books Books, clusterID, invoiceID, description string, lines []Line) ([]*entity.LedgerEntry, error) {
	now := p.now()
	ref := uuid.New().String()
	entries := make([]*entity.LedgerEntry, 0, len(lines))
	for i, l := range lines {
		account, err := ResolveAccount(ctx, books.Accounts, clusterID, l.AccountCode, now)
		if err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				ve.Field = fmt.Sprintf("lines[%d].account_code", i)
			}
			return nil, err
		}
		entries = append(entries, &entity.LedgerEntry{
			ID:                uuid.New().String(),
			ClusterID:         clusterID,
			InvoiceID:         invoiceID,
			ChartOfAccountsID: account.ID,
			Amount:            l.Amount,
			Direction:         l.Direction,
			PostingRef:        ref,
			Description:       description,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}
	if err := ledger.ValidateEntries(entries); err != nil {
		return nil, err
	}
	if err := books.Ledger.CreateBatch(ctx, entries); err != nil {
		return nil, fmt.Errorf("accounting: postear %s: %w", ref, err)
	}
	return entries, nil
}

// ResolveAccount busca la cuenta por código; las cuentas de sistema se crean si faltan.
// Un código desconocido que no es de sistema es un error de validación.
func ResolveAccount(ctx context.Context, repo repository.ChartOfAccountsRepository, clusterID, code string, now time.Time) (*entity.ChartOfAccount, error) {
	account, err := repo.GetByCode(ctx, clusterID, code)
	if err != nil {
		return nil, fmt.Errorf("accounting: buscar cuenta %s: %w", code, err)
	}
	if account != nil {
		return account, nil
	}
	def, ok := entity.LookupDefaultAccount(code)
	if !ok {
		return nil, domain.NewValidationError("account_code", fmt.Sprintf("la cuenta %s no existe en el cluster", code))
	}
	account, err = repo.CreateIfAbsent(ctx, &entity.ChartOfAccount{
		ID:        uuid.New().String(),
		ClusterID: clusterID,
		Code:      def.Code,
		Name:      def.Name,
		Type:      def.Type,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("accounting: crear cuenta %s: %w", code, err)
	}
	return account, nil
}
