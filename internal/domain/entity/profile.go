package entity

import "time"

// Cluster komplek residencial: frontera de multi-tenancy.
type Cluster struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Profile residente de un cluster. El ID del perfil es el ID de residente.
type Profile struct {
	ID           string
	ClusterID    string
	Name         string
	Email        string
	Phone        string
	Block        string
	HouseNumber  string
	PasswordHash string // bcrypt
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
