// Package seed carga el padrón de warga de un komplek desde CSV, ya sea como script SQL
// para PostgreSQL o directamente sobre el store en memoria.
package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/infrastructure/memory"
)

// Resident fila del padrón: name,email,phone,block,house_number,role.
type Resident struct {
	Name        string
	Email       string
	Phone       string
	Block       string
	HouseNumber string
	Admin       bool
}

// ParseResidents lee el CSV del padrón. encoding acepta utf-8 (por defecto), latin1 y windows-1252,
// habituales en hojas de cálculo exportadas. Una primera fila con "name" se toma como cabecera.
func ParseResidents(r io.Reader, encoding string) ([]Resident, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
	case "latin1", "iso-8859-1", "iso8859-1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case "windows-1252", "cp1252":
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	default:
		return nil, fmt.Errorf("seed: encoding no soportado %q", encoding)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		out    []Resident
		emails = make(map[string]int)
		line   int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("seed: leer CSV: %w", err)
		}
		line++
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "name") {
			continue
		}
		res := Resident{
			Name:        field(rec, 0),
			Email:       strings.ToLower(field(rec, 1)),
			Phone:       field(rec, 2),
			Block:       field(rec, 3),
			HouseNumber: field(rec, 4),
			Admin:       strings.EqualFold(field(rec, 5), "admin"),
		}
		if res.Name == "" {
			return nil, fmt.Errorf("seed: línea %d: name requerido", line)
		}
		if res.Email != "" {
			if prev, dup := emails[res.Email]; dup {
				return nil, fmt.Errorf("seed: línea %d: email %s repetido (línea %d)", line, res.Email, prev)
			}
			emails[res.Email] = line
		}
		out = append(out, res)
	}
	return out, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// Plan padrón con IDs asignados y passwords hasheadas, listo para persistir.
type Plan struct {
	Cluster     entity.Cluster
	Profiles    []entity.Profile
	Permissions []entity.UserPermission
}

// BuildPlan asigna IDs al cluster y a cada warga. Cada warga recibe alcance sobre sí mismo;
// los de rol admin, además, alcance de administrador del cluster.
func BuildPlan(clusterID, clusterName string, residents []Resident, password string, cost int) (*Plan, error) {
	if clusterID == "" {
		clusterID = uuid.NewString()
	}
	if _, err := uuid.Parse(clusterID); err != nil {
		return nil, fmt.Errorf("seed: cluster id inválido: %w", err)
	}
	if password == "" {
		return nil, fmt.Errorf("seed: password inicial requerida")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("seed: hash de password: %w", err)
	}
	now := time.Now().UTC()
	p := &Plan{Cluster: entity.Cluster{ID: clusterID, Name: clusterName, CreatedAt: now}}
	for _, r := range residents {
		prof := entity.Profile{
			ID:           uuid.NewString(),
			ClusterID:    clusterID,
			Name:         r.Name,
			Email:        r.Email,
			Phone:        r.Phone,
			Block:        r.Block,
			HouseNumber:  r.HouseNumber,
			PasswordHash: string(hash),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		p.Profiles = append(p.Profiles, prof)
		p.Permissions = append(p.Permissions, entity.UserPermission{
			ID: uuid.NewString(), ProfileID: prof.ID, ClusterID: clusterID, ResidentID: prof.ID, Scope: entity.ScopeSelf,
		})
		if r.Admin {
			p.Permissions = append(p.Permissions, entity.UserPermission{
				ID: uuid.NewString(), ProfileID: prof.ID, ClusterID: clusterID, Scope: entity.ScopeClusterAdmin,
			})
		}
	}
	return p, nil
}

// WriteSQL escribe el plan como script SQL idempotente.
func (p *Plan) WriteSQL(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "-- Padrón de warga del komplek %s\n\n", p.Cluster.Name)
	fmt.Fprintf(&b, "INSERT INTO clusters (id, name) VALUES ('%s', '%s')\nON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name;\n\n",
		p.Cluster.ID, escapeSQL(p.Cluster.Name))

	for _, prof := range p.Profiles {
		fmt.Fprintf(&b, "INSERT INTO profiles (id, cluster_id, name, email, phone, block, house_number, password_hash)\n")
		fmt.Fprintf(&b, "VALUES ('%s', '%s', '%s', %s, %s, %s, %s, '%s')\nON CONFLICT (email) DO NOTHING;\n",
			prof.ID, prof.ClusterID, escapeSQL(prof.Name),
			nullable(prof.Email), nullable(prof.Phone), nullable(prof.Block), nullable(prof.HouseNumber),
			prof.PasswordHash)
	}
	b.WriteString("\n")
	for _, perm := range p.Permissions {
		fmt.Fprintf(&b, "INSERT INTO user_permissions (id, profile_id, cluster_id, resident_id, scope)\n")
		fmt.Fprintf(&b, "SELECT '%s', id, '%s', %s, '%s' FROM profiles WHERE id = '%s';\n",
			perm.ID, perm.ClusterID, nullable(perm.ResidentID), perm.Scope, perm.ProfileID)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// LoadInto carga el plan en el store en memoria.
func (p *Plan) LoadInto(st *memory.Store) {
	st.AddCluster(p.Cluster)
	for _, prof := range p.Profiles {
		st.AddProfile(prof)
	}
	for _, perm := range p.Permissions {
		st.AddPermission(perm)
	}
}

func nullable(s string) string {
	if s == "" {
		return "NULL"
	}
	return "'" + escapeSQL(s) + "'"
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
