package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/komplek-api/internal/application/dto"
	"github.com/jhoicas/komplek-api/pkg/jwt"
)

// Claves de c.Locals con la identidad del token.
const (
	LocalProfileID = "profile_id"
	LocalClusterID = "cluster_id"
)

// AuthMiddleware exige un Bearer JWT válido y deja perfil y cluster en c.Locals.
// Todas las rutas protegidas operan sobre el cluster del token, nunca sobre uno del path.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, code, msg := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return unauthorized(c, code, msg)
		}
		profileID, clusterID, err := jwt.Parse(jwtSecret, token)
		if errors.Is(err, jwt.ErrExpired) {
			return unauthorized(c, "TOKEN_EXPIRED", "el token expiró, vuelva a iniciar sesión")
		}
		if err != nil {
			return unauthorized(c, "INVALID_TOKEN", "token inválido")
		}
		c.Locals(LocalProfileID, profileID)
		c.Locals(LocalClusterID, clusterID)
		return c.Next()
	}
}

// bearerToken extrae el token; si falta devuelve el código y mensaje de error.
func bearerToken(header string) (token, code, msg string) {
	if header == "" {
		return "", "MISSING_TOKEN", "Authorization header requerido"
	}
	scheme, rest, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", "INVALID_TOKEN", "formato: Bearer <token>"
	}
	if token = strings.TrimSpace(rest); token == "" {
		return "", "MISSING_TOKEN", "token vacío"
	}
	return token, "", ""
}

func unauthorized(c *fiber.Ctx, code, msg string) error {
	c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="komplek-api"`)
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// GetProfileID perfil autenticado.
func GetProfileID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalProfileID).(string)
	return s
}

// GetClusterID cluster (komplek) del token; toda consulta se acota a él.
func GetClusterID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalClusterID).(string)
	return s
}
