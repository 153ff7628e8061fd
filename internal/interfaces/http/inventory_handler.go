package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-salidas/internal/application/dto"
	"github.com/jhoicas/inventario-salidas/internal/application/inventory"
	"github.com/jhoicas/inventario-salidas/internal/domain"
)

// defaultMovementWindow rango por defecto de GET /api/movements.
const defaultMovementWindow = 30 * 24 * time.Hour

// InventoryHandler maneja las peticiones HTTP del ledger de stock (protegido).
type InventoryHandler struct {
	uc  *inventory.StockUseCase
	now func() time.Time
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.StockUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc, now: time.Now}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  entry (cantidad > 0) o adjustment (cantidad con signo). Las salidas solo se registran al aprobar una solicitud.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID del producto"
// @Param        body  body  dto.RegisterMovementRequest  true  "type, quantity, reason, notes"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, "cuerpo inválido")
	}
	m, err := h.uc.RegisterMovementFromRequest(c.UserContext(), actorFrom(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResponse(*m))
}

// History godoc
// @Summary      Historial de movimientos de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id    path   string  true   "ID del producto"
// @Param        from  query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        to    query  string  false  "RFC3339 o YYYY-MM-DD"
// @Success      200   {array}   dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	from, err := parseTimeQuery(c.Query("from"), false)
	if err != nil {
		return err
	}
	to, err := parseTimeQuery(c.Query("to"), true)
	if err != nil {
		return err
	}
	list, err := h.uc.History(c.UserContext(), c.Params("id"), from, to)
	if err != nil {
		return err
	}
	return c.JSON(dto.ToMovementResponses(list))
}

// VerifyLedger godoc
// @Summary      Verificar consistencia del ledger de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.LedgerVerification
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/ledger/verify [get]
func (h *InventoryHandler) VerifyLedger(c *fiber.Ctx) error {
	out, err := h.uc.VerifyLedger(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Movimientos por rango de fechas
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "RFC3339 o YYYY-MM-DD (por defecto hace 30 días)"
// @Param        to    query  string  false  "RFC3339 o YYYY-MM-DD (por defecto ahora)"
// @Param        type  query  string  false  "initial | entry | exit | adjustment"
// @Success      200   {array}   dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	now := h.now()
	from := now.Add(-defaultMovementWindow)
	to := now
	if f, err := parseTimeQuery(c.Query("from"), false); err != nil {
		return err
	} else if f != nil {
		from = *f
	}
	if t, err := parseTimeQuery(c.Query("to"), true); err != nil {
		return err
	} else if t != nil {
		to = *t
	}
	list, err := h.uc.ListMovements(c.UserContext(), from, to, c.Query("type"))
	if err != nil {
		return err
	}
	return c.JSON(dto.ToMovementResponses(list))
}

// parseTimeQuery acepta RFC3339 o una fecha; con endOfDay la fecha cubre el día completo.
func parseTimeQuery(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, domain.Invalid("fecha inválida %q: use RFC3339 o YYYY-MM-DD", raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
