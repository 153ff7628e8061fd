package usecase

import (
	"context"
	"net/mail"
	"strings"

	"github.com/jhoicas/inventario-salidas/internal/application/dto"
	"github.com/jhoicas/inventario-salidas/internal/domain"
	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
	"github.com/jhoicas/inventario-salidas/internal/domain/repository"
)

// AlertPreferencesUseCase suscripción del usuario autenticado a las alertas.
type AlertPreferencesUseCase struct {
	users repository.UserRepository
}

// NewAlertPreferencesUseCase construye el caso de uso.
func NewAlertPreferencesUseCase(users repository.UserRepository) *AlertPreferencesUseCase {
	return &AlertPreferencesUseCase{users: users}
}

// Get devuelve las preferencias del usuario.
func (uc *AlertPreferencesUseCase) Get(ctx context.Context, userID string) (*dto.AlertPreferencesDTO, error) {
	u, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := dto.ToAlertPreferencesDTO(u)
	return &out, nil
}

// Update reemplaza las preferencias. Dirección vacía = deja de ser suscriptor.
func (uc *AlertPreferencesUseCase) Update(ctx context.Context, userID string, in dto.AlertPreferencesDTO) (*dto.AlertPreferencesDTO, error) {
	email := strings.TrimSpace(in.NotificationEmail)
	if email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			return nil, domain.Invalid("notification_email inválido")
		}
	}
	prefs := entity.AlertPreferences{
		NotificationEmail: email,
		StockAlerts:       in.StockAlerts,
		ConsumptionAlerts: in.ConsumptionAlerts,
	}
	if err := uc.users.UpdateAlertPreferences(ctx, userID, prefs); err != nil {
		return nil, err
	}
	return &dto.AlertPreferencesDTO{
		NotificationEmail: prefs.NotificationEmail,
		StockAlerts:       prefs.StockAlerts,
		ConsumptionAlerts: prefs.ConsumptionAlerts,
	}, nil
}
