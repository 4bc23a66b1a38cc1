// Package iuran administra las definiciones de cuotas recurrentes de cada cluster.
package iuran

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/komplek-api/internal/application/dto"
	"github.com/jhoicas/komplek-api/internal/application/storectx"
	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/permission"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
	"github.com/jhoicas/komplek-api/pkg/logger"
)

// UseCase alta, modificación y desactivación de iuran. Los iuran no se borran.
type UseCase struct {
	iuranRepo   repository.IuranRepository
	invoiceRepo repository.InvoiceRepository
	profileRepo repository.ProfileRepository
	log         *logger.Logger
	now         func() time.Time
	timeout     storectx.Timeout
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	iuranRepo repository.IuranRepository,
	invoiceRepo repository.InvoiceRepository,
	profileRepo repository.ProfileRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		iuranRepo:   iuranRepo,
		invoiceRepo: invoiceRepo,
		profileRepo: profileRepo,
		log:         log.Component("iuran"),
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// WithStoreTimeout acota cada operación contra el store.
func (uc *UseCase) WithStoreTimeout(d time.Duration) *UseCase {
	uc.timeout = storectx.Timeout(d)
	return uc
}

// Create valida y persiste una definición nueva.
func (uc *UseCase) Create(ctx context.Context, actor permission.Actor, clusterID string, in dto.CreateIuranRequest) (*dto.IuranResponse, error) {
	ctx, cancel := uc.timeout.Bound(ctx)
	defer cancel()
	if err := permission.RequireAdmin(actor, clusterID); err != nil {
		return nil, err
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	start, end, err := parseWindow(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	def := &entity.Iuran{
		ID:           uuid.New().String(),
		ClusterID:    clusterID,
		Name:         in.Name,
		Participants: append([]string(nil), in.Participants...),
		DueDate:      in.DueDate,
		StartDate:    start,
		EndDate:      end,
		Amount:       in.Amount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.validate(ctx, def); err != nil {
		return nil, err
	}
	if err := uc.iuranRepo.Create(ctx, def); err != nil {
		return nil, fmt.Errorf("iuran: crear: %w", err)
	}
	uc.log.Info().
		Str("cluster_id", clusterID).
		Str("iuran_id", def.ID).
		Int("participants", len(def.Participants)).
		Msg("iuran creado")
	return toIuranResponse(def), nil
}

// Update aplica un cambio parcial. Con tagihan ya generadas, amount y participants
// quedan congelados: cambiarlos devuelve *domain.ImmutableFieldError.
func (uc *UseCase) Update(ctx context.Context, actor permission.Actor, clusterID, id string, in dto.UpdateIuranRequest) (*dto.IuranResponse, error) {
	ctx, cancel := uc.timeout.Bound(ctx)
	defer cancel()
	if err := permission.RequireAdmin(actor, clusterID); err != nil {
		return nil, err
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	def, err := uc.load(ctx, clusterID, id)
	if err != nil {
		return nil, err
	}
	if def.IsDeactivated() {
		return nil, fmt.Errorf("%w: el iuran %s está desactivado", domain.ErrConflict, id)
	}

	amountChanged := in.Amount != nil && !in.Amount.Equal(def.Amount)
	participantsChanged := in.Participants != nil && !sameSet(*in.Participants, def.Participants)
	if amountChanged || participantsChanged {
		generated, err := uc.invoiceRepo.ExistsForIuran(ctx, clusterID, id)
		if err != nil {
			return nil, fmt.Errorf("iuran: verificar tagihan: %w", err)
		}
		if generated {
			field := "amount"
			if !amountChanged {
				field = "participants"
			}
			return nil, &domain.ImmutableFieldError{Field: field}
		}
	}

	if in.Name != nil {
		def.Name = *in.Name
	}
	if in.DueDate != nil {
		def.DueDate = *in.DueDate
	}
	if in.Amount != nil {
		def.Amount = *in.Amount
	}
	if in.Participants != nil {
		def.Participants = append([]string(nil), (*in.Participants)...)
	}
	startRaw, endRaw := def.StartDate.Format(dto.DateLayout), def.EndDate.Format(dto.DateLayout)
	if in.StartDate != nil {
		startRaw = *in.StartDate
	}
	if in.EndDate != nil {
		endRaw = *in.EndDate
	}
	if def.StartDate, def.EndDate, err = parseWindow(startRaw, endRaw); err != nil {
		return nil, err
	}
	if err := uc.validate(ctx, def); err != nil {
		return nil, err
	}
	def.UpdatedAt = uc.now()
	if err := uc.iuranRepo.Update(ctx, def); err != nil {
		return nil, fmt.Errorf("iuran: actualizar %s: %w", id, err)
	}
	return toIuranResponse(def), nil
}

// Deactivate cierra la vigencia en la fecha actual. Idempotente.
func (uc *UseCase) Deactivate(ctx context.Context, actor permission.Actor, clusterID, id string) (*dto.IuranResponse, error) {
	ctx, cancel := uc.timeout.Bound(ctx)
	defer cancel()
	if err := permission.RequireAdmin(actor, clusterID); err != nil {
		return nil, err
	}
	def, err := uc.load(ctx, clusterID, id)
	if err != nil {
		return nil, err
	}
	if def.IsDeactivated() {
		return toIuranResponse(def), nil
	}
	now := uc.now()
	today := entity.DateOnly(now)
	// end_date nunca se extiende ni queda antes de start_date
	if today.Before(def.EndDate) {
		def.EndDate = today
	}
	if def.EndDate.Before(def.StartDate) {
		def.EndDate = def.StartDate
	}
	def.DeactivatedAt = &now
	def.UpdatedAt = now
	if err := uc.iuranRepo.Update(ctx, def); err != nil {
		return nil, fmt.Errorf("iuran: desactivar %s: %w", id, err)
	}
	uc.log.Info().Str("cluster_id", clusterID).Str("iuran_id", id).Msg("iuran desactivado")
	return toIuranResponse(def), nil
}

// Get devuelve una definición del cluster.
func (uc *UseCase) Get(ctx context.Context, actor permission.Actor, clusterID, id string) (*dto.IuranResponse, error) {
	ctx, cancel := uc.timeout.Bound(ctx)
	defer cancel()
	if err := permission.RequireAdmin(actor, clusterID); err != nil {
		return nil, err
	}
	def, err := uc.load(ctx, clusterID, id)
	if err != nil {
		return nil, err
	}
	return toIuranResponse(def), nil
}

// List pagina las definiciones del cluster.
func (uc *UseCase) List(ctx context.Context, actor permission.Actor, clusterID string, page dto.PageRequest) (*dto.IuranListResponse, error) {
	ctx, cancel := uc.timeout.Bound(ctx)
	defer cancel()
	if err := permission.RequireAdmin(actor, clusterID); err != nil {
		return nil, err
	}
	page.DefaultPage()
	defs, err := uc.iuranRepo.ListByCluster(ctx, clusterID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("iuran: listar: %w", err)
	}
	total, err := uc.iuranRepo.CountByCluster(ctx, clusterID)
	if err != nil {
		return nil, fmt.Errorf("iuran: contar: %w", err)
	}
	out := &dto.IuranListResponse{
		Items: make([]dto.IuranResponse, 0, len(defs)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, d := range defs {
		out.Items = append(out.Items, *toIuranResponse(d))
	}
	return out, nil
}

func (uc *UseCase) load(ctx context.Context, clusterID, id string) (*entity.Iuran, error) {
	def, err := uc.iuranRepo.GetByID(ctx, clusterID, id)
	if err != nil {
		return nil, fmt.Errorf("iuran: obtener %s: %w", id, err)
	}
	if def == nil {
		return nil, domain.ErrNotFound
	}
	return def, nil
}

// validate reglas que el validador de structs no cubre: monto, ventana y participantes del cluster.
func (uc *UseCase) validate(ctx context.Context, def *entity.Iuran) error {
	if !def.Amount.GreaterThan(decimal.Zero) {
		return domain.NewValidationError("amount", "debe ser mayor que cero")
	}
	if def.DueDate < 1 || def.DueDate > 31 {
		return domain.NewValidationError("due_date", "debe estar entre 1 y 31")
	}
	if def.EndDate.Before(def.StartDate) {
		return domain.NewValidationError("end_date", "no puede ser anterior a start_date")
	}
	if len(def.Participants) == 0 {
		return domain.NewValidationError("participants", "requiere al menos un residente")
	}
	seen := make(map[string]struct{}, len(def.Participants))
	for _, p := range def.Participants {
		if _, dup := seen[p]; dup {
			return domain.NewValidationError("participants", fmt.Sprintf("residente %s repetido", p))
		}
		seen[p] = struct{}{}
	}
	members, err := uc.profileRepo.FilterInCluster(ctx, def.ClusterID, def.Participants)
	if err != nil {
		return fmt.Errorf("iuran: verificar participantes: %w", err)
	}
	if len(members) != len(def.Participants) {
		in := make(map[string]struct{}, len(members))
		for _, m := range members {
			in[m] = struct{}{}
		}
		for _, p := range def.Participants {
			if _, ok := in[p]; !ok {
				return domain.NewValidationError("participants", fmt.Sprintf("residente %s no pertenece al cluster", p))
			}
		}
	}
	return nil
}

func parseWindow(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := time.Parse(dto.DateLayout, startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewValidationError("start_date", "formato esperado YYYY-MM-DD")
	}
	end, err := time.Parse(dto.DateLayout, endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewValidationError("end_date", "formato esperado YYYY-MM-DD")
	}
	return start, end, nil
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]int, len(a))
	for _, x := range a {
		set[x]++
	}
	for _, x := range b {
		if set[x] == 0 {
			return false
		}
		set[x]--
	}
	return true
}

func toIuranResponse(i *entity.Iuran) *dto.IuranResponse {
	return &dto.IuranResponse{
		ID:            i.ID,
		ClusterID:     i.ClusterID,
		Name:          i.Name,
		Participants:  append([]string(nil), i.Participants...),
		DueDate:       i.DueDate,
		StartDate:     i.StartDate.Format(dto.DateLayout),
		EndDate:       i.EndDate.Format(dto.DateLayout),
		Amount:        i.Amount,
		Active:        !i.IsDeactivated(),
		DeactivatedAt: i.DeactivatedAt,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}
