package repository

import (
	"context"

	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
)

// UserRepository puerto de lectura del directorio de usuarios y de sus preferencias de alerta.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// ListSubscribers usuarios activos con dirección de notificación no vacía.
	ListSubscribers(ctx context.Context) ([]*entity.User, error)
	UpdateAlertPreferences(ctx context.Context, id string, prefs entity.AlertPreferences) error
}
