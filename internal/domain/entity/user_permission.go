package entity

// Scope alcance de lectura de un permiso.
type Scope string

const (
	ScopeSelf         Scope = "self"          // solo las filas del residente indicado
	ScopeClusterAdmin Scope = "cluster_admin" // todo el cluster, y escritura
)

// UserPermission concede a ProfileID lectura sobre un cluster o un residente.
// Se usa solo para autorización, nunca en cálculos financieros.
type UserPermission struct {
	ID         string
	ProfileID  string
	ClusterID  string
	ResidentID string // vacío para ScopeClusterAdmin
	Scope      Scope
}
