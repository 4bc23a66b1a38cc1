package dto

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileResponse perfil del residente autenticado (sin password).
type ProfileResponse struct {
	ID          string `json:"id"`
	ClusterID   string `json:"cluster_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Block       string `json:"block,omitempty"`
	HouseNumber string `json:"house_number,omitempty"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token   string          `json:"token"`
	Profile ProfileResponse `json:"profile"`
}

// MeResponse perfil autenticado y alcance efectivo de sus permisos en el cluster.
type MeResponse struct {
	Profile      ProfileResponse `json:"profile"`
	ClusterAdmin bool            `json:"cluster_admin"`
	Residents    []string        `json:"residents"` // residentes visibles con alcance self
}
