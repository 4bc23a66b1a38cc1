package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/komplek-api/internal/application/dto"
	"github.com/jhoicas/komplek-api/internal/domain/permission"
)

// LocalActor key del actor resuelto en c.Locals.
const LocalActor = "actor"

// actorResolver es el contrato mínimo que necesita el middleware para cargar permisos.
// Lo implementa *access.Resolver.
type actorResolver interface {
	Resolve(ctx context.Context, profileID, clusterID string) (permission.Actor, error)
}

// ResolveActor carga los permisos del perfil del token en cada request.
// Debe usarse DESPUÉS de AuthMiddleware (necesita LocalProfileID y LocalClusterID).
//
// Comportamiento:
//   - 401 Unauthorized → perfil inexistente o token sin claims.
//   - 403 Forbidden    → el perfil no pertenece al cluster del token.
//   - 503              → fallo transitorio al consultar el store.
func ResolveActor(resolver actorResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profileID, clusterID := GetProfileID(c), GetClusterID(c)
		if profileID == "" || clusterID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "perfil o cluster no encontrado en el token",
			})
		}
		actor, err := resolver.Resolve(c.UserContext(), profileID, clusterID)
		if err != nil {
			return writeError(c, err)
		}
		c.Locals(LocalActor, actor)
		return c.Next()
	}
}

// GetActor devuelve el actor resuelto (después de ResolveActor).
func GetActor(c *fiber.Ctx) permission.Actor {
	a, _ := c.Locals(LocalActor).(permission.Actor)
	return a
}
