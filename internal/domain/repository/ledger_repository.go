package repository

import (
	"context"

	"github.com/jhoicas/komplek-api/internal/domain/entity"
)

// LedgerRepository puerto de persistencia del libro mayor. Solo inserta: no hay update ni delete.
type LedgerRepository interface {
	CreateBatch(ctx context.Context, entries []*entity.LedgerEntry) error
	ListByInvoice(ctx context.Context, clusterID, invoiceID string) ([]*entity.LedgerEntry, error)
	// ExistsForAccount informa si alguna entrada referencia la cuenta.
	ExistsForAccount(ctx context.Context, clusterID, accountID string) (bool, error)
}
