package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-salidas/internal/application/dto"
	"github.com/jhoicas/inventario-salidas/internal/application/exitrequest"
	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
)

// ExitRequestHandler maneja las peticiones HTTP de solicitudes de salida (protegido).
type ExitRequestHandler struct {
	uc *exitrequest.UseCase
}

// NewExitRequestHandler construye el handler.
func NewExitRequestHandler(uc *exitrequest.UseCase) *ExitRequestHandler {
	return &ExitRequestHandler{uc: uc}
}

// Create godoc
// @Summary      Crear solicitud de salida
// @Tags         exit-requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateExitRequest  true  "productId, quantity, requestedBy, reason"
// @Success      201   {object}  dto.IDResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/exit-requests [post]
func (h *ExitRequestHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateExitRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, "cuerpo inválido")
	}
	req, err := h.uc.Create(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.IDResponse{ID: req.ID})
}

// List godoc
// @Summary      Listar solicitudes de salida
// @Tags         exit-requests
// @Security     Bearer
// @Produce      json
// @Param        status       query  string  false  "pending | approved | rejected"
// @Param        requestedBy  query  string  false  "Solicitante"
// @Success      200  {array}   dto.ExitRequestResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/exit-requests [get]
func (h *ExitRequestHandler) List(c *fiber.Ctx) error {
	filter := entity.ExitRequestFilter{
		Status:      entity.ExitRequestStatus(c.Query("status")),
		RequestedBy: c.Query("requestedBy"),
	}
	list, err := h.uc.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	out := make([]dto.ExitRequestResponse, 0, len(list))
	for _, r := range list {
		out = append(out, dto.ToExitRequestResponse(r))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener solicitud de salida
// @Tags         exit-requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.ExitRequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/exit-requests/{id} [get]
func (h *ExitRequestHandler) GetByID(c *fiber.Ctx) error {
	req, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.ToExitRequestResponse(req))
}

// Decide godoc
// @Summary      Aprobar o rechazar una solicitud pendiente
// @Tags         exit-requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la solicitud"
// @Param        body  body  dto.DecideExitRequest  true  "status (approved|rejected), approvedBy, notes"
// @Success      200   {object}  dto.ExitRequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/exit-requests/{id} [put]
func (h *ExitRequestHandler) Decide(c *fiber.Ctx) error {
	var in dto.DecideExitRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, "cuerpo inválido")
	}
	req, err := h.uc.Decide(c.UserContext(), actorFrom(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(dto.ToExitRequestResponse(req))
}

// Delete godoc
// @Summary      Eliminar solicitud de salida
// @Tags         exit-requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/exit-requests/{id} [delete]
func (h *ExitRequestHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "solicitud eliminada"})
}
