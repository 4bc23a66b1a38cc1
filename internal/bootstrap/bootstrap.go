// Package bootstrap arma el grafo de casos de uso sobre un backend de persistencia.
// Lo comparten el servidor HTTP y el CLI iuranctl.
package bootstrap

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/komplek-api/internal/application/access"
	"github.com/jhoicas/komplek-api/internal/application/accounting"
	"github.com/jhoicas/komplek-api/internal/application/auth"
	"github.com/jhoicas/komplek-api/internal/application/billing"
	"github.com/jhoicas/komplek-api/internal/application/iuran"
	"github.com/jhoicas/komplek-api/internal/application/reporting"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
	"github.com/jhoicas/komplek-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/komplek-api/internal/infrastructure/pdf"
	"github.com/jhoicas/komplek-api/internal/infrastructure/postgres"
	"github.com/jhoicas/komplek-api/pkg/config"
	"github.com/jhoicas/komplek-api/pkg/logger"
)

// Stores repositorios y runner transaccional de un backend.
type Stores struct {
	Iuran       repository.IuranRepository
	Invoices    repository.InvoiceRepository
	Ledger      repository.LedgerRepository
	Accounts    repository.ChartOfAccountsRepository
	Profiles    repository.ProfileRepository
	Permissions repository.PermissionRepository
	Reports     repository.ReportRepository
	Tx          billing.BillingTxRunner
}

// PostgresStores repositorios sobre el pool de PostgreSQL.
func PostgresStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Iuran:       postgres.NewIuranRepository(pool),
		Invoices:    postgres.NewInvoiceRepository(pool),
		Ledger:      postgres.NewLedgerRepository(pool),
		Accounts:    postgres.NewChartOfAccountsRepository(pool),
		Profiles:    postgres.NewProfileRepository(pool),
		Permissions: postgres.NewPermissionRepository(pool),
		Reports:     postgres.NewReportRepository(pool),
		Tx:          postgres.NewTxRunner(pool),
	}
}

// MemoryStores repositorios sobre el store en memoria (desarrollo y tests).
func MemoryStores(m *memory.Store) Stores {
	return Stores{
		Iuran:       m.Iuran(),
		Invoices:    m.Invoices(),
		Ledger:      m.Ledger(),
		Accounts:    m.Accounts(),
		Profiles:    m.Profiles(),
		Permissions: m.Permissions(),
		Reports:     m.Reports(),
		Tx:          m,
	}
}

// Services casos de uso listos para inyectar en handlers o comandos.
type Services struct {
	Auth        *auth.AuthUseCase
	Resolver    *access.Resolver
	Iuran       *iuran.UseCase
	Generator   *billing.Generator
	Invoices    *billing.InvoiceUseCase
	PDF         *billing.PDFUseCase
	Compiler    *reporting.LedgerCompiler
	Adjustments *accounting.AdjustmentUseCase
	Chart       *accounting.ChartUseCase
}

// NewServices construye los casos de uso con la configuración dada.
func NewServices(st Stores, cfg *config.Config, log *logger.Logger) *Services {
	poster := accounting.NewPoster(time.Now)
	books := accounting.Books{Ledger: st.Ledger, Accounts: st.Accounts}
	timeout := cfg.Billing.StoreTimeout

	return &Services{
		Auth: auth.NewAuthUseCase(st.Profiles, auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		}),
		Resolver: access.NewResolver(st.Profiles, st.Permissions).WithStoreTimeout(timeout),
		Iuran:    iuran.NewUseCase(st.Iuran, st.Invoices, st.Profiles, log).WithStoreTimeout(timeout),
		Generator: billing.NewGenerator(st.Iuran, st.Tx, poster, billing.GeneratorConfig{
			Concurrency:          cfg.Billing.GenerationConcurrency,
			MaxRetries:           cfg.Billing.MaxRetries,
			RetryInitialInterval: cfg.Billing.RetryInitialInterval,
			StoreTimeout:         timeout,
		}, log),
		Invoices:    billing.NewInvoiceUseCase(st.Invoices, st.Ledger, st.Tx, poster, log).WithStoreTimeout(timeout),
		PDF:         billing.NewPDFUseCase(st.Invoices, st.Iuran, st.Profiles, infrapdf.NewMarotoPDFGenerator(), cfg.Billing.Currency).
			WithStoreTimeout(timeout),
		Compiler:    reporting.NewLedgerCompiler(st.Reports, log).WithStoreTimeout(timeout),
		Adjustments: accounting.NewAdjustmentUseCase(books, poster).WithStoreTimeout(timeout),
		Chart:       accounting.NewChartUseCase(st.Accounts, st.Ledger, log).WithStoreTimeout(timeout),
	}
}
