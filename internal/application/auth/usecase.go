package auth

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/komplek-api/internal/application/dto"
	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/permission"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
	"github.com/jhoicas/komplek-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase login de residentes por email y password.
type AuthUseCase struct {
	profileRepo repository.ProfileRepository
	jwtCfg      JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(profileRepo repository.ProfileRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{profileRepo: profileRepo, jwtCfg: jwtCfg}
}

// Login verifica email/password, genera JWT y retorna token + perfil.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	profile, err := uc.profileRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("auth: buscar perfil: %w", err)
	}
	if profile == nil || profile.PasswordHash == "" {
		return nil, domain.ErrInvalidCreds
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrInvalidCreds
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, profile.ID, profile.ClusterID, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, Profile: toProfileResponse(profile)}, nil
}

// Me devuelve el perfil del actor resuelto y qué puede ver.
func (uc *AuthUseCase) Me(ctx context.Context, actor permission.Actor) (*dto.MeResponse, error) {
	profile, err := uc.profileRepo.GetByID(ctx, actor.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("auth: obtener perfil: %w", err)
	}
	if profile == nil {
		return nil, domain.ErrUnauthorized
	}
	out := &dto.MeResponse{
		Profile:      toProfileResponse(profile),
		ClusterAdmin: permission.IsClusterAdmin(actor, actor.ClusterID),
		Residents:    []string{},
	}
	for _, p := range actor.Permissions {
		if p.Scope == entity.ScopeSelf && p.ClusterID == actor.ClusterID && p.ResidentID != "" {
			out.Residents = append(out.Residents, p.ResidentID)
		}
	}
	sort.Strings(out.Residents)
	return out, nil
}

func toProfileResponse(p *entity.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:          p.ID,
		ClusterID:   p.ClusterID,
		Name:        p.Name,
		Email:       p.Email,
		Phone:       p.Phone,
		Block:       p.Block,
		HouseNumber: p.HouseNumber,
	}
}
