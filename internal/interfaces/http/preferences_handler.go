package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-salidas/internal/application/dto"
	"github.com/jhoicas/inventario-salidas/internal/application/usecase"
)

// PreferencesHandler preferencias de alerta del usuario autenticado.
type PreferencesHandler struct {
	uc *usecase.AlertPreferencesUseCase
}

// NewPreferencesHandler construye el handler.
func NewPreferencesHandler(uc *usecase.AlertPreferencesUseCase) *PreferencesHandler {
	return &PreferencesHandler{uc: uc}
}

// Get godoc
// @Summary      Mis preferencias de alerta
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AlertPreferencesDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/me/alert-preferences [get]
func (h *PreferencesHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar mis preferencias de alerta
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AlertPreferencesDTO  true  "notification_email, stock_alerts, consumption_alerts"
// @Success      200   {object}  dto.AlertPreferencesDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/users/me/alert-preferences [put]
func (h *PreferencesHandler) Update(c *fiber.Ctx) error {
	var in dto.AlertPreferencesDTO
	if err := decodeStrict(c, &in); err != nil {
		return invalidBody(c, err.Error())
	}
	out, err := h.uc.Update(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
