package accounting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/komplek-api/internal/application/dto"
	"github.com/jhoicas/komplek-api/internal/application/storectx"
	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/permission"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
	"github.com/jhoicas/komplek-api/pkg/logger"
)

// ChartUseCase registro del plan de cuentas de cada cluster.
// Una cuenta referenciada por el libro mayor no se modifica ni se borra.
type ChartUseCase struct {
	repo    repository.ChartOfAccountsRepository
	ledger  repository.LedgerRepository
	log     *logger.Logger
	now     func() time.Time
	timeout storectx.Timeout
}

// NewChartUseCase construye el caso de uso.
func NewChartUseCase(repo repository.ChartOfAccountsRepository, ledger repository.LedgerRepository, log *logger.Logger) *ChartUseCase {
	return &ChartUseCase{repo: repo, ledger: ledger, log: log.Component("coa"), now: time.Now}
}

// WithStoreTimeout acota cada operación contra el store.
func (uc *ChartUseCase) WithStoreTimeout(d time.Duration) *ChartUseCase {
	uc.timeout = storectx.Timeout(d)
	return uc
}

// Create registra una cuenta. El código repetido en el cluster devuelve ErrConflict.
func (uc *ChartUseCase) Create(ctx context.Context, actor permission.Actor, clusterID string, in dto.AccountRequest) (*dto.AccountResponse, error) {
	ctx, cancel := uc.timeout.Bound(ctx)
	defer cancel()
	if err := permission.RequireAdmin(actor, clusterID); err != nil {
		return nil, err
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	now := uc.now()
	account := &entity.ChartOfAccount{
		ID:        uuid.New().String(),
		ClusterID: clusterID,
		Code:      in.Code,
		Name:      in.Name,
		Type:      entity.AccountType(in.Type),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("coa: crear %s: %w", in.Code, err)
	}
	uc.log.Info().Str("cluster_id", clusterID).Str("code", account.Code).Msg("cuenta creada")
	return toAccountResponse(account), nil
}

// Get devuelve una cuenta del cluster.
func (uc *ChartUseCase) Get(ctx context.Context, actor permission.Actor, clusterID, id string) (*dto.AccountResponse, error) {
	ctx, cancel := uc.timeout.Bound(ctx)
	defer cancel()
	if err := permission.RequireMember(actor, clusterID); err != nil {
		return nil, err
	}
	account, err := uc.load(ctx, clusterID, id)
	if err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

// List devuelve las cuentas del cluster ordenadas por código.
func (uc *ChartUseCase) List(ctx context.Context, actor permission.Actor, clusterID string) ([]dto.AccountResponse, error) {
	ctx, cancel := uc.timeout.Bound(ctx)
	defer cancel()
	if err := permission.RequireMember(actor, clusterID); err != nil {
		return nil, err
	}
	accounts, err := uc.repo.List(ctx, clusterID)
	if err != nil {
		return nil, fmt.Errorf("coa: listar: %w", err)
	}
	out := make([]dto.AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, *toAccountResponse(a))
	}
	return out, nil
}

// Update reemplaza código, nombre y tipo. ErrReferentialIntegrity si ya hay entradas que la usan;
// el store lo vuelve a comprobar en la misma escritura.
func (uc *ChartUseCase) Update(ctx context.Context, actor permission.Actor, clusterID, id string, in dto.AccountRequest) (*dto.AccountResponse, error) {
	ctx, cancel := uc.timeout.Bound(ctx)
	defer cancel()
	if err := permission.RequireAdmin(actor, clusterID); err != nil {
		return nil, err
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	account, err := uc.load(ctx, clusterID, id)
	if err != nil {
		return nil, err
	}
	if err := uc.ensureUnreferenced(ctx, clusterID, id); err != nil {
		return nil, err
	}
	account.Code = in.Code
	account.Name = in.Name
	account.Type = entity.AccountType(in.Type)
	account.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("coa: actualizar %s: %w", id, err)
	}
	return toAccountResponse(account), nil
}

// Delete borra una cuenta sin referencias. El store vuelve a comprobarlo al borrar.
func (uc *ChartUseCase) Delete(ctx context.Context, actor permission.Actor, clusterID, id string) error {
	ctx, cancel := uc.timeout.Bound(ctx)
	defer cancel()
	if err := permission.RequireAdmin(actor, clusterID); err != nil {
		return err
	}
	if _, err := uc.load(ctx, clusterID, id); err != nil {
		return err
	}
	if err := uc.ensureUnreferenced(ctx, clusterID, id); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, clusterID, id); err != nil {
		return fmt.Errorf("coa: borrar %s: %w", id, err)
	}
	uc.log.Info().Str("cluster_id", clusterID).Str("account_id", id).Msg("cuenta borrada")
	return nil
}

// EnsureDefaults crea las cuentas de sistema que falten. Idempotente.
func (uc *ChartUseCase) EnsureDefaults(ctx context.Context, clusterID string) error {
	ctx, cancel := uc.timeout.Bound(ctx)
	defer cancel()
	now := uc.now()
	for _, def := range entity.DefaultAccounts {
		if _, err := ResolveAccount(ctx, uc.repo, clusterID, def.Code, now); err != nil {
			return err
		}
	}
	return nil
}

func (uc *ChartUseCase) load(ctx context.Context, clusterID, id string) (*entity.ChartOfAccount, error) {
	account, err := uc.repo.GetByID(ctx, clusterID, id)
	if err != nil {
		return nil, fmt.Errorf("coa: obtener %s: %w", id, err)
	}
	if account == nil {
		return nil, domain.ErrNotFound
	}
	return account, nil
}

func (uc *ChartUseCase) ensureUnreferenced(ctx context.Context, clusterID, id string) error {
	used, err := uc.ledger.ExistsForAccount(ctx, clusterID, id)
	if err != nil {
		return fmt.Errorf("coa: verificar referencias: %w", err)
	}
	if used {
		return fmt.Errorf("%w: la cuenta %s tiene entradas en el libro mayor", domain.ErrReferentialIntegrity, id)
	}
	return nil
}

func toAccountResponse(a *entity.ChartOfAccount) *dto.AccountResponse {
	return &dto.AccountResponse{
		ID:        a.ID,
		ClusterID: a.ClusterID,
		Code:      a.Code,
		Name:      a.Name,
		Type:      string(a.Type),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
