package repository

import (
	"context"
	"time"

	"github.com/jhoicas/komplek-api/internal/domain/entity"
)

// InvoiceFilter filtros opcionales para listar tagihan de un cluster.
type InvoiceFilter struct {
	IuranID    string
	ResidentID string
	Period     string
	Status     entity.InvoiceStatus
}

// InvoiceRepository puerto de persistencia de tagihan.
type InvoiceRepository interface {
	// CreateIfAbsent inserta la tagihan salvo que ya exista otra con la misma llave
	// (iuran_id, resident_id, billing_period). La unicidad la garantiza el store de forma atómica:
	// si la llave existe devuelve la fila almacenada con created=false y sin error.
	CreateIfAbsent(ctx context.Context, invoice *entity.Invoice) (stored *entity.Invoice, created bool, err error)
	// GetByID devuelve (nil, nil) si no existe en el cluster.
	GetByID(ctx context.Context, clusterID, id string) (*entity.Invoice, error)
	ListByIuranPeriod(ctx context.Context, clusterID, iuranID, period string) ([]*entity.Invoice, error)
	ExistsForIuran(ctx context.Context, clusterID, iuranID string) (bool, error)
	List(ctx context.Context, clusterID string, filter InvoiceFilter) ([]*entity.Invoice, error)
	// UpdateStatus persiste el nuevo estado solo si la fila sigue en `from`; si otro proceso
	// la cambió antes devuelve domain.ErrConflict.
	UpdateStatus(ctx context.Context, invoice *entity.Invoice, from entity.InvoiceStatus) error
	// ListPendingDueBefore tagihan pending con due_at anterior a t (fecha sin hora).
	ListPendingDueBefore(ctx context.Context, clusterID string, t time.Time) ([]*entity.Invoice, error)
}
