// Package memory implementa los repositorios sobre mapas protegidos por mutex.
// Se usa en tests y con STORE_DRIVER=memory.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jhoicas/komplek-api/internal/application/billing"
	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
)

var (
	_ billing.BillingTxRunner              = (*Store)(nil)
	_ repository.IuranRepository           = (*IuranRepository)(nil)
	_ repository.InvoiceRepository         = (*InvoiceRepository)(nil)
	_ repository.LedgerRepository          = (*LedgerRepository)(nil)
	_ repository.ChartOfAccountsRepository = (*ChartOfAccountsRepository)(nil)
	_ repository.ProfileRepository         = (*ProfileRepository)(nil)
	_ repository.PermissionRepository      = (*PermissionRepository)(nil)
	_ repository.ReportRepository          = (*ReportRepository)(nil)
)

type shared struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	clusters    map[string]entity.Cluster
	profiles    map[string]entity.Profile
	permissions []entity.UserPermission
	iuran       map[string]entity.Iuran
	invoices    map[string]entity.Invoice
	invoiceKeys map[string]string // iuran|resident|period → invoice id
	accounts    map[string]entity.ChartOfAccount
	ledger      []entity.LedgerEntry

	fault func(op string) error
}

// Store raíz del almacenamiento en memoria. Dentro de RunBilling cada escritura registra
// su deshacer; si la función falla se aplican en orden inverso.
// Las transacciones se serializan entre sí; las lecturas fuera de la transacción no se bloquean.
type Store struct {
	sh   *shared
	undo *[]func()
}

// New crea un store vacío.
func New() *Store {
	return &Store{sh: &shared{
		clusters:    make(map[string]entity.Cluster),
		profiles:    make(map[string]entity.Profile),
		iuran:       make(map[string]entity.Iuran),
		invoices:    make(map[string]entity.Invoice),
		invoiceKeys: make(map[string]string),
		accounts:    make(map[string]entity.ChartOfAccount),
	}}
}

// SetFaultHook instala una función que puede hacer fallar operaciones por nombre
// (ej. "invoices.create"). nil la desinstala.
func (s *Store) SetFaultHook(fn func(op string) error) {
	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()
	s.sh.fault = fn
}

// Iuran repositorio de definiciones.
func (s *Store) Iuran() *IuranRepository { return &IuranRepository{s: s} }

// Invoices repositorio de tagihan.
func (s *Store) Invoices() *InvoiceRepository { return &InvoiceRepository{s: s} }

// Ledger repositorio del libro mayor.
func (s *Store) Ledger() *LedgerRepository { return &LedgerRepository{s: s} }

// Accounts repositorio del plan de cuentas.
func (s *Store) Accounts() *ChartOfAccountsRepository { return &ChartOfAccountsRepository{s: s} }

// Profiles repositorio de residentes y clusters.
func (s *Store) Profiles() *ProfileRepository { return &ProfileRepository{s: s} }

// Permissions repositorio de user_permissions.
func (s *Store) Permissions() *PermissionRepository { return &PermissionRepository{s: s} }

// Reports consultas del compilador del libro mayor.
func (s *Store) Reports() *ReportRepository { return &ReportRepository{s: s} }

// RunBilling ejecuta fn con repos transaccionales.
func (s *Store) RunBilling(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	ledgerRepo repository.LedgerRepository,
	coaRepo repository.ChartOfAccountsRepository,
) error) error {
	if err := s.begin(ctx, "tx.begin"); err != nil {
		return err
	}
	s.sh.txMu.Lock()
	defer s.sh.txMu.Unlock()

	var undo []func()
	tx := &Store{sh: s.sh, undo: &undo}
	if err := fn(tx.Invoices(), tx.Ledger(), tx.Accounts()); err != nil {
		s.sh.mu.Lock()
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		s.sh.mu.Unlock()
		return err
	}
	return nil
}

// AddCluster registra un cluster.
func (s *Store) AddCluster(c entity.Cluster) {
	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()
	s.sh.clusters[c.ID] = c
}

// AddProfile registra un residente.
func (s *Store) AddProfile(p entity.Profile) {
	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()
	s.sh.profiles[p.ID] = p
}

// AddPermission registra un permiso.
func (s *Store) AddPermission(p entity.UserPermission) {
	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()
	s.sh.permissions = append(s.sh.permissions, p)
}

// begin comprueba contexto y fallos inyectados antes de una operación.
func (s *Store) begin(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w: %w", op, domain.ErrTransientStore, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.sh.mu.RLock()
	fault := s.sh.fault
	s.sh.mu.RUnlock()
	if fault != nil {
		if err := fault(op); err != nil {
			return err
		}
	}
	return nil
}

// record registra un deshacer si la escritura ocurre dentro de una transacción.
// Se llama con mu tomado.
func (s *Store) record(fn func()) {
	if s.undo != nil {
		*s.undo = append(*s.undo, fn)
	}
}

func copyIuran(i entity.Iuran) *entity.Iuran {
	i.Participants = append([]string(nil), i.Participants...)
	if i.DeactivatedAt != nil {
		t := *i.DeactivatedAt
		i.DeactivatedAt = &t
	}
	return &i
}

func copyInvoice(inv entity.Invoice) *entity.Invoice {
	if inv.PaidAt != nil {
		t := *inv.PaidAt
		inv.PaidAt = &t
	}
	if inv.CancelledAt != nil {
		t := *inv.CancelledAt
		inv.CancelledAt = &t
	}
	return &inv
}
