// Package jwt firma y verifica los bearer tokens de la API. El token identifica al perfil y
// su cluster; los permisos se resuelven contra user_permissions en cada request.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalid = errors.New("token inválido")
	ErrExpired = errors.New("token expirado")
)

// leeway tolerancia de reloj entre réplicas.
const leeway = 30 * time.Second

// Claims el perfil viaja en sub; el cluster en un claim propio.
type Claims struct {
	jwt.RegisteredClaims
	ClusterID string `json:"cluster_id"`
}

// Generate firma un token HS256 para profileID en clusterID válido expMinutes minutos.
func Generate(secret, profileID, clusterID, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", errors.New("jwt: secret vacío")
	}
	if profileID == "" || clusterID == "" {
		return "", errors.New("jwt: perfil y cluster son obligatorios")
	}
	if expMinutes <= 0 {
		return "", fmt.Errorf("jwt: expiración inválida: %d minutos", expMinutes)
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   profileID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		ClusterID: clusterID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse verifica firma y vigencia y devuelve perfil y cluster.
// Los errores envuelven ErrExpired o ErrInvalid.
func Parse(secret, tokenString string) (profileID, clusterID string, err error) {
	if secret == "" {
		return "", "", errors.New("jwt: secret vacío")
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(leeway),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	var claims Claims
	_, err = parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", "", fmt.Errorf("%w: %w", ErrExpired, err)
	case err != nil:
		return "", "", fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if claims.Subject == "" || claims.ClusterID == "" {
		return "", "", fmt.Errorf("%w: claims incompletos", ErrInvalid)
	}
	return claims.Subject, claims.ClusterID, nil
}
