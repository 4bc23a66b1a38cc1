package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateIuranRequest body para POST /api/iuran.
// Amount se valida en el caso de uso (decimal > 0).
type CreateIuranRequest struct {
	Name         string          `json:"name" validate:"required,max=150"`
	Participants []string        `json:"participants" validate:"required,min=1,dive,required"`
	DueDate      int             `json:"due_date" validate:"min=1,max=31"` // día del mes
	StartDate    string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string          `json:"end_date" validate:"required,datetime=2006-01-02"`
	Amount       decimal.Decimal `json:"amount"`
}

// UpdateIuranRequest body para PATCH /api/iuran/:id. Campos nil = sin cambio.
type UpdateIuranRequest struct {
	Name         *string          `json:"name,omitempty" validate:"omitempty,min=1,max=150"`
	Participants *[]string        `json:"participants,omitempty" validate:"omitempty,min=1,dive,required"`
	DueDate      *int             `json:"due_date,omitempty" validate:"omitempty,min=1,max=31"`
	StartDate    *string          `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate      *string          `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
}

// IuranResponse definición de iuran en respuestas.
type IuranResponse struct {
	ID            string          `json:"id"`
	ClusterID     string          `json:"cluster_id"`
	Name          string          `json:"name"`
	Participants  []string        `json:"participants"`
	DueDate       int             `json:"due_date"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	Amount        decimal.Decimal `json:"amount"`
	Active        bool            `json:"active"`
	DeactivatedAt *time.Time      `json:"deactivated_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IuranListResponse página de definiciones.
type IuranListResponse struct {
	Items []IuranResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
