package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/rental-api/internal/application/dto"
	"github.com/jhoicas/rental-api/internal/domain"
)

// storeChecker contrato mínimo para verificar la tienda del token; lo implementa *usecase.StoreUseCase.
type storeChecker interface {
	GetByID(ctx context.Context, id string) (*dto.StoreResponse, error)
}

// RequireStore verifica que la tienda del token JWT exista. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 si el token no trae store_id.
//   - 404 si la tienda no existe.
//   - 503 si falla la consulta.
func RequireStore(checker storeChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		storeID := GetStoreID(c)
		if storeID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "store_id no encontrado en el token",
			})
		}
		if _, err := checker.GetByID(c.UserContext(), storeID); err != nil {
			if errors.Is(err, domain.ErrStoreNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
					Code:    "STORE_NOT_FOUND",
					Message: "la tienda del token no existe",
				})
			}
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "STORE_CHECK_FAILED",
				Message: "no se pudo verificar la tienda, intente más tarde",
			})
		}
		return c.Next()
	}
}
