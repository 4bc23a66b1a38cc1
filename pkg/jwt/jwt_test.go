package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/komplek-api/pkg/jwt"
)

const secret = "rahasia"

func TestGenerateParse(t *testing.T) {
	tok, err := jwt.Generate(secret, "profile-1", "cluster-1", "komplek-api", 60)
	require.NoError(t, err)

	profileID, clusterID, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "profile-1", profileID)
	assert.Equal(t, "cluster-1", clusterID)
}

func TestGenerate_Errores(t *testing.T) {
	_, err := jwt.Generate("", "p", "c", "i", 60)
	assert.Error(t, err)
	_, err = jwt.Generate(secret, "p", "", "i", 60)
	assert.Error(t, err)
	_, err = jwt.Generate(secret, "p", "c", "i", 0)
	assert.Error(t, err)
}

func sign(t *testing.T, method gojwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	tok, err := gojwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func TestParse_Rechazos(t *testing.T) {
	now := time.Now()
	valid := jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "p",
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(time.Hour)),
		},
		ClusterID: "c",
	}

	expired := valid
	expired.IssuedAt = gojwt.NewNumericDate(now.Add(-2 * time.Hour))
	expired.ExpiresAt = gojwt.NewNumericDate(now.Add(-time.Hour))
	_, _, err := jwt.Parse(secret, sign(t, gojwt.SigningMethodHS256, []byte(secret), expired))
	assert.ErrorIs(t, err, jwt.ErrExpired)

	_, _, err = jwt.Parse(secret, sign(t, gojwt.SigningMethodHS256, []byte("otro"), valid))
	assert.ErrorIs(t, err, jwt.ErrInvalid)

	_, _, err = jwt.Parse(secret, sign(t, gojwt.SigningMethodHS512, []byte(secret), valid))
	assert.ErrorIs(t, err, jwt.ErrInvalid)

	noCluster := valid
	noCluster.ClusterID = ""
	_, _, err = jwt.Parse(secret, sign(t, gojwt.SigningMethodHS256, []byte(secret), noCluster))
	assert.ErrorIs(t, err, jwt.ErrInvalid)

	noExp := valid
	noExp.ExpiresAt = nil
	_, _, err = jwt.Parse(secret, sign(t, gojwt.SigningMethodHS256, []byte(secret), noExp))
	assert.ErrorIs(t, err, jwt.ErrInvalid)

	_, _, err = jwt.Parse(secret, "no.es.jwt")
	assert.ErrorIs(t, err, jwt.ErrInvalid)
}
