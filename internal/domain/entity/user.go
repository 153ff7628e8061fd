package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleGerente   = "gerente"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// IsPrivilegedRole roles que deciden solicitudes y controlan el monitor.
func IsPrivilegedRole(role string) bool {
	return role == RoleAdmin || role == RoleGerente
}

// User usuario del directorio. Los campos de notificación definen si es suscriptor de alertas.
type User struct {
	ID                string
	Name              string
	Email             string
	Role              string
	Status            string // active, inactive
	NotificationEmail string
	StockAlerts       bool
	ConsumptionAlerts bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsSubscriber indica si el usuario tiene una dirección de notificación.
func (u *User) IsSubscriber() bool { return u.NotificationEmail != "" }

// AlertPreferences preferencias de alerta editables por el propio usuario.
type AlertPreferences struct {
	NotificationEmail string
	StockAlerts       bool
	ConsumptionAlerts bool
}
