// Package memory implementa los puertos de persistencia en memoria. Se usa con STORAGE_DRIVER=memory
// y como doble de prueba de los casos de uso y handlers.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-salidas/internal/application/inventory"
	"github.com/jhoicas/inventario-salidas/internal/domain"
	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
	"github.com/jhoicas/inventario-salidas/internal/domain/repository"
)

var (
	_ inventory.TxRunner                 = (*TxRunner)(nil)
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.ExitRequestRepository   = (*ExitRequestRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
	_ repository.UserRepository          = (*UserRepo)(nil)
)

// Store estado compartido. Una transacción toma el mutex completo, lo que equivale a bloquear
// todas las filas: las transacciones concurrentes quedan serializadas.
type Store struct {
	mu        sync.Mutex
	products  map[string]entity.Product
	requests  map[string]entity.ExitRequest
	order     []string // ids de solicitudes en orden de inserción
	movements []entity.StockMovement
	users     map[string]entity.User
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		products: make(map[string]entity.Product),
		requests: make(map[string]entity.ExitRequest),
		users:    make(map[string]entity.User),
	}
}

// SeedUser agrega o reemplaza un usuario del directorio.
func (s *Store) SeedUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

type snapshot struct {
	products  map[string]entity.Product
	requests  map[string]entity.ExitRequest
	order     []string
	movements int
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		products:  make(map[string]entity.Product, len(s.products)),
		requests:  make(map[string]entity.ExitRequest, len(s.requests)),
		order:     append([]string(nil), s.order...),
		movements: len(s.movements),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.requests {
		snap.requests[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.products = snap.products
	s.requests = snap.requests
	s.order = snap.order
	s.movements = s.movements[:snap.movements]
}

// TxRunner ejecuta fn con el store bloqueado y deshace los cambios si fn falla.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run implementa inventory.TxRunner.
func (r *TxRunner) Run(ctx context.Context, fn func(
	products repository.ProductRepository,
	requests repository.ExitRequestRepository,
	movements repository.StockMovementRepository,
) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := r.s.snapshot()
	err := fn(
		&ProductRepo{s: r.s, inTx: true},
		&ExitRequestRepo{s: r.s, inTx: true},
		&StockMovementRepo{s: r.s, inTx: true},
	)
	if err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// ProductRepo productos en memoria.
type ProductRepo struct {
	s    *Store
	inTx bool
}

// NewProductRepository repositorio fuera de transacción.
func NewProductRepository(s *Store) *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.s.lock(r.inTx)()
	for _, existing := range r.s.products {
		if existing.Reference == p.Reference {
			return domain.ErrDuplicate
		}
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) get(id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok || p.IsDeleted() {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.s.lock(r.inTx)()
	return r.get(id)
}

func (r *ProductRepo) GetForUpdate(_ context.Context, id string) (*entity.Product, error) {
	defer r.s.lock(r.inTx)()
	return r.get(id)
}

func (r *ProductRepo) GetByReference(_ context.Context, reference string) (*entity.Product, error) {
	defer r.s.lock(r.inTx)()
	for _, p := range r.s.products {
		if p.Reference == reference && !p.IsDeleted() {
			cp := p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	defer r.s.lock(r.inTx)()
	cur, err := r.get(p.ID)
	if err != nil {
		return err
	}
	entity.ProductUpdate{
		Designation: &p.Designation,
		Category:    &p.Category,
		Location:    &p.Location,
		Unit:        &p.Unit,
		MinStock:    &p.MinStock,
		MaxStock:    &p.MaxStock,
		PhotoRef:    &p.PhotoRef,
	}.Apply(cur)
	cur.UpdatedAt = p.UpdatedAt
	r.s.products[p.ID] = *cur
	return nil
}

func (r *ProductRepo) UpdateStock(_ context.Context, id string, stock decimal.Decimal, at time.Time) error {
	defer r.s.lock(r.inTx)()
	cur, err := r.get(id)
	if err != nil {
		return err
	}
	cur.CurrentStock = stock
	cur.UpdatedAt = at
	r.s.products[id] = *cur
	return nil
}

func (r *ProductRepo) ListActive(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	defer r.s.lock(r.inTx)()
	list := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if p.IsDeleted() {
			continue
		}
		cp := p
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Reference < list[j].Reference })
	if offset > len(list) {
		offset = len(list)
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (r *ProductRepo) SoftDelete(_ context.Context, id string, at time.Time) error {
	defer r.s.lock(r.inTx)()
	cur, err := r.get(id)
	if err != nil {
		return err
	}
	cur.DeletedAt = &at
	cur.UpdatedAt = at
	r.s.products[id] = *cur
	return nil
}

// ExitRequestRepo solicitudes en memoria.
type ExitRequestRepo struct {
	s    *Store
	inTx bool
}

// NewExitRequestRepository repositorio fuera de transacción.
func NewExitRequestRepository(s *Store) *ExitRequestRepo { return &ExitRequestRepo{s: s} }

func (r *ExitRequestRepo) Create(_ context.Context, req *entity.ExitRequest) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.requests[req.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.requests[req.ID] = *req
	r.s.order = append(r.s.order, req.ID)
	return nil
}

func (r *ExitRequestRepo) get(id string) (*entity.ExitRequest, error) {
	req, ok := r.s.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &req, nil
}

func (r *ExitRequestRepo) GetByID(_ context.Context, id string) (*entity.ExitRequest, error) {
	defer r.s.lock(r.inTx)()
	return r.get(id)
}

func (r *ExitRequestRepo) GetForUpdate(_ context.Context, id string) (*entity.ExitRequest, error) {
	defer r.s.lock(r.inTx)()
	return r.get(id)
}

func (r *ExitRequestRepo) List(_ context.Context, filter entity.ExitRequestFilter) ([]*entity.ExitRequest, error) {
	defer r.s.lock(r.inTx)()
	list := make([]*entity.ExitRequest, 0, len(r.s.order))
	for i := len(r.s.order) - 1; i >= 0; i-- {
		req, ok := r.s.requests[r.s.order[i]]
		if !ok {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.RequestedBy != "" && req.RequestedBy != filter.RequestedBy {
			continue
		}
		cp := req
		list = append(list, &cp)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].RequestedAt.After(list[j].RequestedAt) })
	return list, nil
}

func (r *ExitRequestRepo) UpdateDecision(_ context.Context, req *entity.ExitRequest) error {
	defer r.s.lock(r.inTx)()
	cur, err := r.get(req.ID)
	if err != nil {
		return err
	}
	cur.Status = req.Status
	cur.ApprovedBy = req.ApprovedBy
	cur.ApprovedAt = req.ApprovedAt
	cur.Notes = req.Notes
	r.s.requests[req.ID] = *cur
	return nil
}

func (r *ExitRequestRepo) Delete(_ context.Context, id string) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.requests[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.requests, id)
	for i, v := range r.s.order {
		if v == id {
			r.s.order = append(r.s.order[:i:i], r.s.order[i+1:]...)
			break
		}
	}
	return nil
}

// StockMovementRepo ledger en memoria: solo inserción.
type StockMovementRepo struct {
	s    *Store
	inTx bool
}

// NewStockMovementRepository repositorio fuera de transacción.
func NewStockMovementRepository(s *Store) *StockMovementRepo { return &StockMovementRepo{s: s} }

func (r *StockMovementRepo) Append(_ context.Context, m *entity.StockMovement) error {
	defer r.s.lock(r.inTx)()
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *StockMovementRepo) ListByProduct(_ context.Context, productID string, from, to *time.Time) ([]entity.StockMovement, error) {
	defer r.s.lock(r.inTx)()
	out := make([]entity.StockMovement, 0)
	for _, m := range r.s.movements {
		if m.ProductID != productID {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *StockMovementRepo) ListByRange(_ context.Context, from, to time.Time, movementType entity.MovementType) ([]entity.StockMovement, error) {
	defer r.s.lock(r.inTx)()
	out := make([]entity.StockMovement, 0)
	for _, m := range r.s.movements {
		if m.CreatedAt.Before(from) || m.CreatedAt.After(to) {
			continue
		}
		if movementType != "" && m.Type != movementType {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// UserRepo directorio de usuarios en memoria.
type UserRepo struct {
	s *Store
}

// NewUserRepository construye el repositorio.
func NewUserRepository(s *Store) *UserRepo { return &UserRepo{s: s} }

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) ListSubscribers(_ context.Context) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*entity.User, 0)
	for _, u := range r.s.users {
		if !u.IsSubscriber() || u.Status == "inactive" {
			continue
		}
		cp := u
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *UserRepo) UpdateAlertPreferences(_ context.Context, id string, prefs entity.AlertPreferences) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.NotificationEmail = prefs.NotificationEmail
	u.StockAlerts = prefs.StockAlerts
	u.ConsumptionAlerts = prefs.ConsumptionAlerts
	u.UpdatedAt = time.Now()
	r.s.users[id] = u
	return nil
}
