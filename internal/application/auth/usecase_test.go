package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/komplek-api/internal/application/auth"
	"github.com/jhoicas/komplek-api/internal/application/dto"
	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/permission"
	"github.com/jhoicas/komplek-api/internal/infrastructure/memory"
	"github.com/jhoicas/komplek-api/pkg/jwt"
)

const secret = "rahasia-uji"

func newAuth(t *testing.T) *auth.AuthUseCase {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	require.NoError(t, err)
	st := memory.New()
	st.AddCluster(entity.Cluster{ID: "c1", Name: "Griya Asri"})
	st.AddProfile(entity.Profile{
		ID: "A", ClusterID: "c1", Name: "Warga A", Email: "a@komplek.id",
		Block: "B2", HouseNumber: "7", PasswordHash: string(hash),
	})
	st.AddProfile(entity.Profile{ID: "B", ClusterID: "c1", Name: "Warga B", Email: "b@komplek.id"})
	return auth.NewAuthUseCase(st.Profiles(), auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "komplek-api"})
}

func TestLogin(t *testing.T) {
	uc := newAuth(t)

	out, err := uc.Login(context.Background(), dto.LoginRequest{Email: "A@Komplek.id", Password: "rahasia123"})
	require.NoError(t, err)
	assert.Equal(t, "A", out.Profile.ID)
	assert.Equal(t, "B2", out.Profile.Block)

	profileID, clusterID, err := jwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "A", profileID)
	assert.Equal(t, "c1", clusterID)
}

func TestLogin_Errores(t *testing.T) {
	uc := newAuth(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   dto.LoginRequest
		want error
	}{
		{"password incorrecto", dto.LoginRequest{Email: "a@komplek.id", Password: "salah"}, domain.ErrInvalidCreds},
		{"email desconocido", dto.LoginRequest{Email: "z@komplek.id", Password: "rahasia123"}, domain.ErrInvalidCreds},
		{"perfil sin password", dto.LoginRequest{Email: "b@komplek.id", Password: "rahasia123"}, domain.ErrInvalidCreds},
		{"email inválido", dto.LoginRequest{Email: "no-es-email", Password: "x"}, domain.ErrValidation},
		{"password vacío", dto.LoginRequest{Email: "a@komplek.id"}, domain.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Login(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestMe(t *testing.T) {
	uc := newAuth(t)
	actor := permission.Actor{ProfileID: "A", ClusterID: "c1", Permissions: []entity.UserPermission{
		{ProfileID: "A", ClusterID: "c1", ResidentID: "B", Scope: entity.ScopeSelf},
		{ProfileID: "A", ClusterID: "c1", ResidentID: "A", Scope: entity.ScopeSelf},
		{ProfileID: "A", ClusterID: "c2", ResidentID: "Z", Scope: entity.ScopeSelf},
	}}

	me, err := uc.Me(context.Background(), actor)
	require.NoError(t, err)
	assert.Equal(t, "Warga A", me.Profile.Name)
	assert.False(t, me.ClusterAdmin)
	assert.Equal(t, []string{"A", "B"}, me.Residents)

	_, err = uc.Me(context.Background(), permission.Actor{ProfileID: "nadie", ClusterID: "c1"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
