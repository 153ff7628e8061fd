package dto

import "github.com/jhoicas/inventario-salidas/internal/domain/entity"

// AlertPreferencesDTO preferencias de alerta del usuario autenticado.
type AlertPreferencesDTO struct {
	NotificationEmail string `json:"notification_email"`
	StockAlerts       bool   `json:"stock_alerts"`
	ConsumptionAlerts bool   `json:"consumption_alerts"`
}

// ToAlertPreferencesDTO extrae las preferencias del usuario.
func ToAlertPreferencesDTO(u *entity.User) AlertPreferencesDTO {
	return AlertPreferencesDTO{
		NotificationEmail: u.NotificationEmail,
		StockAlerts:       u.StockAlerts,
		ConsumptionAlerts: u.ConsumptionAlerts,
	}
}
