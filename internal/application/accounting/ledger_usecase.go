package accounting

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/komplek-api/internal/application/dto"
	"github.com/jhoicas/komplek-api/internal/application/storectx"
	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/permission"
)

// AdjustmentUseCase asientos manuales (sin tagihan) de un administrador.
type AdjustmentUseCase struct {
	books   Books
	poster  *Poster
	timeout storectx.Timeout
}

// NewAdjustmentUseCase construye el caso de uso.
func NewAdjustmentUseCase(books Books, poster *Poster) *AdjustmentUseCase {
	return &AdjustmentUseCase{books: books, poster: poster}
}

// WithStoreTimeout acota el posteo.
func (uc *AdjustmentUseCase) WithStoreTimeout(d time.Duration) *AdjustmentUseCase {
	uc.timeout = storectx.Timeout(d)
	return uc
}

// Post valida y postea el asiento. Un asiento descuadrado devuelve ErrUnbalancedLedger.
func (uc *AdjustmentUseCase) Post(ctx context.Context, actor permission.Actor, clusterID string, in dto.AdjustmentRequest) (*dto.PostingResponse, error) {
	ctx, cancel := uc.timeout.Bound(ctx)
	defer cancel()
	if err := permission.RequireAdmin(actor, clusterID); err != nil {
		return nil, err
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(in.Lines))
	for i, l := range in.Lines {
		if !l.Amount.IsPositive() {
			return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].amount", i), "debe ser mayor que cero")
		}
		lines = append(lines, Line{AccountCode: l.AccountCode, Direction: entity.Direction(l.Direction), Amount: l.Amount})
	}
	entries, err := uc.poster.Adjust(ctx, uc.books, clusterID, in.Description, lines)
	if err != nil {
		return nil, err
	}
	return ToPostingResponse(entries), nil
}

// ToPostingResponse agrupa entradas de un mismo asiento.
func ToPostingResponse(entries []*entity.LedgerEntry) *dto.PostingResponse {
	resp := &dto.PostingResponse{Entries: make([]dto.LedgerEntryResponse, 0, len(entries))}
	for _, e := range entries {
		resp.PostingRef = e.PostingRef
		resp.Entries = append(resp.Entries, dto.LedgerEntryResponse{
			ID:                e.ID,
			InvoiceID:         e.InvoiceID,
			ChartOfAccountsID: e.ChartOfAccountsID,
			Direction:         string(e.Direction),
			Amount:            e.Amount,
			Description:       e.Description,
			CreatedAt:         e.CreatedAt,
		})
	}
	return resp
}
