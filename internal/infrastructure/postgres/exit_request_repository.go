package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-salidas/internal/domain"
	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
	"github.com/jhoicas/inventario-salidas/internal/domain/repository"
)

var _ repository.ExitRequestRepository = (*ExitRequestRepo)(nil)

const exitRequestColumns = `id, product_id, product_reference, product_designation, quantity, requested_by,
	requested_at, status, approved_by, approved_at, reason, notes`

// ExitRequestRepo solicitudes de salida sobre PostgreSQL (usable con pool o tx).
type ExitRequestRepo struct {
	q Querier
}

// NewExitRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewExitRequestRepository(q Querier) *ExitRequestRepo {
	return &ExitRequestRepo{q: q}
}

func scanExitRequest(row pgx.Row) (*entity.ExitRequest, error) {
	var r entity.ExitRequest
	var status string
	err := row.Scan(&r.ID, &r.ProductID, &r.ProductReference, &r.ProductDesignation, &r.Quantity,
		&r.RequestedBy, &r.RequestedAt, &status, &r.ApprovedBy, &r.ApprovedAt, &r.Reason, &r.Notes)
	if err != nil {
		return nil, err
	}
	r.Status = entity.ExitRequestStatus(status)
	return &r, nil
}

// Create persiste una solicitud.
func (r *ExitRequestRepo) Create(ctx context.Context, req *entity.ExitRequest) error {
	query := `
		INSERT INTO exit_requests (` + exitRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		req.ID, req.ProductID, req.ProductReference, req.ProductDesignation, req.Quantity, req.RequestedBy,
		req.RequestedAt, string(req.Status), req.ApprovedBy, req.ApprovedAt, req.Reason, req.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert exit request: %w", err)
	}
	return nil
}

func (r *ExitRequestRepo) getOne(ctx context.Context, what, query, id string) (*entity.ExitRequest, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	req, err := scanExitRequest(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if notFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return req, nil
}

// GetByID obtiene una solicitud por ID.
func (r *ExitRequestRepo) GetByID(ctx context.Context, id string) (*entity.ExitRequest, error) {
	return r.getOne(ctx, "get exit request",
		`SELECT `+exitRequestColumns+` FROM exit_requests WHERE id = $1`, id)
}

// GetForUpdate obtiene la solicitud y bloquea la fila (SELECT FOR UPDATE).
func (r *ExitRequestRepo) GetForUpdate(ctx context.Context, id string) (*entity.ExitRequest, error) {
	return r.getOne(ctx, "get exit request for update",
		`SELECT `+exitRequestColumns+` FROM exit_requests WHERE id = $1 FOR UPDATE`, id)
}

// List filtra por estado y solicitante; orden requested_at descendente.
func (r *ExitRequestRepo) List(ctx context.Context, filter entity.ExitRequestFilter) ([]*entity.ExitRequest, error) {
	query := `
		SELECT ` + exitRequestColumns + ` FROM exit_requests
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR requested_by = $2)
		ORDER BY requested_at DESC, id`
	rows, err := r.q.Query(ctx, query, string(filter.Status), filter.RequestedBy)
	if err != nil {
		return nil, fmt.Errorf("list exit requests: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.ExitRequest, 0)
	for rows.Next() {
		req, err := scanExitRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exit request: %w", err)
		}
		list = append(list, req)
	}
	return list, rows.Err()
}

// UpdateDecision guarda la decisión tomada sobre la solicitud.
func (r *ExitRequestRepo) UpdateDecision(ctx context.Context, req *entity.ExitRequest) error {
	if !validID(req.ID) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE exit_requests SET status = $2, approved_by = $3, approved_at = $4, notes = $5 WHERE id = $1`,
		req.ID, string(req.Status), req.ApprovedBy, req.ApprovedAt, req.Notes,
	)
	if err != nil {
		return fmt.Errorf("update exit request: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la solicitud.
func (r *ExitRequestRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM exit_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete exit request: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
