package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/rental-api/internal/application/dto"
	"github.com/jhoicas/rental-api/internal/application/rental"
	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/pkg/logger"
)

// RentalHandler alquileres y devoluciones de la tienda del token.
type RentalHandler struct {
	create  *rental.CreateRentalUseCase
	returns *rental.ProcessReturnUseCase
	query   *rental.QueryUseCase
	log     *logger.Logger
}

// NewRentalHandler construye el handler.
func NewRentalHandler(create *rental.CreateRentalUseCase, returns *rental.ProcessReturnUseCase, query *rental.QueryUseCase, log *logger.Logger) *RentalHandler {
	return &RentalHandler{create: create, returns: returns, query: query, log: log}
}

// Create godoc
// @Summary      Crear alquiler
// @Description  Reserva el stock de todas las líneas en una transacción; si una falla no se guarda nada.
// @Tags         rentals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRentalRequest  true  "customer_name, due_date (YYYY-MM-DD, posterior a hoy), items"
// @Success      201   {object}  dto.RentalResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/rentals [post]
func (h *RentalHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRentalRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	due, err := time.Parse(time.DateOnly, in.DueDate)
	if err != nil {
		return writeError(c, h.log, domain.NewValidationError("due_date", "formato esperado YYYY-MM-DD"))
	}
	lines := make([]rental.LineInput, 0, len(in.Items))
	for _, l := range in.Items {
		lines = append(lines, rental.LineInput{ItemID: l.ItemID, Qty: l.Qty, PerDay: l.PerDay})
	}
	r, err := h.create.Execute(c.UserContext(), rental.CreateInput{
		StoreID:      GetStoreID(c),
		ActorID:      GetUserID(c),
		CustomerName: in.CustomerName,
		DueDate:      due,
		Lines:        lines,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.query.Render(c.UserContext(), r)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar alquileres
// @Tags         rentals
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máximo 100"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.RentalListResponse
// @Router       /api/rentals [get]
func (h *RentalHandler) List(c *fiber.Ctx) error {
	out, err := h.query.List(c.UserContext(), GetStoreID(c), pageOf(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener alquiler
// @Description  Incluye líneas, devoluciones y effective_status (overdue si venció sin devolverse).
// @Tags         rentals
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del alquiler"
// @Success      200  {object}  dto.RentalResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/rentals/{id} [get]
func (h *RentalHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.Get(c.UserContext(), GetStoreID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ProcessReturn godoc
// @Summary      Registrar devolución
// @Description  Parcial o total. No es idempotente: cada llamada es una devolución física distinta.
// @Tags         rentals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del alquiler"
// @Param        body  body  dto.ProcessReturnRequest  true  "líneas devueltas"
// @Success      200   {object}  dto.RentalResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/rentals/{id}/returns [post]
func (h *RentalHandler) ProcessReturn(c *fiber.Ctx) error {
	var in dto.ProcessReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	entries := make([]rental.ReturnLineInput, 0, len(in.Items))
	for _, e := range in.Items {
		entries = append(entries, rental.ReturnLineInput{
			LineItemID: e.LineItemID,
			Qty:        e.Qty,
			Condition:  e.Condition,
			DamageCost: e.DamageCost,
		})
	}
	r, err := h.returns.Execute(c.UserContext(), rental.ReturnInput{
		StoreID:    GetStoreID(c),
		RentalID:   c.Params("id"),
		ActorID:    actorOf(c),
		Returns:    entries,
		ReturnedAt: in.ReturnedAt,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.query.Render(c.UserContext(), r)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
