package alerts

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/inventario-salidas/internal/application/dto"
	"github.com/jhoicas/inventario-salidas/internal/domain"
	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
	"github.com/jhoicas/inventario-salidas/pkg/logger"
)

// ErrCycleInProgress otro ciclo (local o en otra instancia) está corriendo.
var ErrCycleInProgress = fmt.Errorf("%w: ya hay un ciclo de alertas en curso", domain.ErrConflict)

// CycleFunc un ciclo de detección + despacho.
type CycleFunc func(ctx context.Context) (CycleResult, error)

// MonitorSettings tiempos del monitor.
type MonitorSettings struct {
	WarmUp   time.Duration
	Interval time.Duration
	LockTTL  time.Duration // vigencia del lock distribuido; por defecto Interval
}

// Monitor ejecuta un ciclo tras el warm-up y luego cada Interval hasta Deactivate.
// Nunca corren dos ciclos a la vez: el flag local cubre el proceso y CycleLock, si existe, las instancias.
type Monitor struct {
	cycle    CycleFunc
	lock     CycleLock
	settings MonitorSettings
	log      *logger.Logger

	running atomic.Bool

	mu          sync.Mutex
	cancel      context.CancelFunc
	done        chan struct{}
	activatedBy string
	lastRunAt   time.Time
	nextRunAt   time.Time
	lastResult  CycleResult
}

// NewMonitor construye el monitor. lock puede ser nil.
func NewMonitor(cycle CycleFunc, lock CycleLock, settings MonitorSettings, log *logger.Logger) *Monitor {
	if settings.LockTTL <= 0 {
		settings.LockTTL = settings.Interval
	}
	return &Monitor{cycle: cycle, lock: lock, settings: settings, log: log}
}

// Activate solo para admin o gerente. Activar un monitor activo no hace nada.
func (m *Monitor) Activate(p Principal) error {
	if !entity.IsPrivilegedRole(p.Role) {
		return domain.ErrForbidden
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.activatedBy = p.Name
	m.nextRunAt = time.Now().Add(m.settings.WarmUp)
	go m.loop(ctx, m.done)
	m.log.Info().Str("activated_by", p.Name).Dur("warm_up", m.settings.WarmUp).
		Dur("interval", m.settings.Interval).Msg("monitor de alertas activado")
	return nil
}

// Deactivate cancela el temporizador pendiente. Un ciclo en curso termina por su cuenta.
func (m *Monitor) Deactivate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.cancel = nil
	m.nextRunAt = time.Time{}
	m.log.Info().Msg("monitor de alertas desactivado")
}

// Wait bloquea hasta que el bucle del monitor termine (tras Deactivate).
func (m *Monitor) Wait() {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Active indica si el monitor está programado.
func (m *Monitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// TriggerNow ejecuta un ciclo fuera de programa. Devuelve ErrCycleInProgress si ya hay uno.
func (m *Monitor) TriggerNow(ctx context.Context) (CycleResult, error) {
	return m.runCycle(ctx)
}

// Status foto del estado para la API.
func (m *Monitor) Status() dto.MonitorStatusDTO {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := dto.MonitorStatusDTO{
		Active:      m.cancel != nil,
		Running:     m.running.Load(),
		Interval:    m.settings.Interval.String(),
		LastSent:    m.lastResult.Sent,
		LastFailed:  m.lastResult.Failed,
		ActivatedBy: m.activatedBy,
	}
	if !m.lastRunAt.IsZero() {
		t := m.lastRunAt
		st.LastRunAt = &t
	}
	if st.Active && !m.nextRunAt.IsZero() {
		t := m.nextRunAt
		st.NextRunAt = &t
	}
	return st
}

func (m *Monitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	timer := time.NewTimer(m.settings.WarmUp)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			// select elige al azar si ctx.Done y el timer están listos a la vez
			if ctx.Err() != nil {
				return
			}
			// El ciclo no hereda la cancelación: Deactivate no corta un ciclo a medias
			if _, err := m.runCycle(context.WithoutCancel(ctx)); err != nil && err != ErrCycleInProgress {
				m.log.Error().Err(err).Msg("ciclo de alertas fallido")
			}
			m.mu.Lock()
			if ctx.Err() == nil {
				m.nextRunAt = time.Now().Add(m.settings.Interval)
			}
			m.mu.Unlock()
			timer.Reset(m.settings.Interval)
		}
	}
}

func (m *Monitor) runCycle(ctx context.Context) (CycleResult, error) {
	if !m.running.CompareAndSwap(false, true) {
		m.log.Warn().Msg("ciclo de alertas omitido: otro en curso")
		return CycleResult{}, ErrCycleInProgress
	}
	defer m.running.Store(false)

	if m.lock != nil {
		release, ok, err := m.lock.Acquire(ctx, m.settings.LockTTL)
		if err != nil {
			return CycleResult{}, fmt.Errorf("lock de ciclo: %w", err)
		}
		if !ok {
			m.log.Warn().Msg("ciclo de alertas omitido: otra instancia lo ejecuta")
			return CycleResult{}, ErrCycleInProgress
		}
		defer release()
	}

	started := time.Now()
	res, err := m.cycle(ctx)
	m.mu.Lock()
	m.lastRunAt = started
	if err == nil {
		m.lastResult = res
	}
	m.mu.Unlock()
	return res, err
}
