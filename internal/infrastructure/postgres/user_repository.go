package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-salidas/internal/domain"
	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
	"github.com/jhoicas/inventario-salidas/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, name, email, role, status, notification_email, stock_alerts, consumption_alerts,
	created_at, updated_at`

// UserRepo directorio de usuarios sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var u entity.User
	err := r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.NotificationEmail, &u.StockAlerts,
		&u.ConsumptionAlerts, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if notFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// ListSubscribers usuarios no inactivos con dirección de notificación.
func (r *UserRepo) ListSubscribers(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE notification_email <> '' AND status <> 'inactive'
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.NotificationEmail, &u.StockAlerts,
			&u.ConsumptionAlerts, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}

// UpdateAlertPreferences guarda la dirección y las dos marcas de suscripción.
func (r *UserRepo) UpdateAlertPreferences(ctx context.Context, id string, prefs entity.AlertPreferences) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE users SET notification_email = $2, stock_alerts = $3, consumption_alerts = $4, updated_at = now()
		WHERE id = $1`,
		id, prefs.NotificationEmail, prefs.StockAlerts, prefs.ConsumptionAlerts,
	)
	if err != nil {
		return fmt.Errorf("update alert preferences: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
