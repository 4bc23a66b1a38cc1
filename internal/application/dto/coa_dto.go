package dto

import "time"

// AccountRequest body para POST y PUT /api/chart-of-accounts.
type AccountRequest struct {
	Code string `json:"code" validate:"required,max=20"`
	Name string `json:"name" validate:"required,max=150"`
	Type string `json:"type" validate:"required,oneof=asset liability equity revenue expense"`
}

// AccountResponse cuenta del plan de cuentas.
type AccountResponse struct {
	ID        string    `json:"id"`
	ClusterID string    `json:"cluster_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
