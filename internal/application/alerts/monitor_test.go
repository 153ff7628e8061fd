package alerts_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-salidas/internal/application/alerts"
	"github.com/jhoicas/inventario-salidas/internal/domain"
	"github.com/jhoicas/inventario-salidas/pkg/logger"
)

var gerente = alerts.Principal{UserID: "u-1", Name: "Gina", Role: "gerente"}

func countingCycle(n *atomic.Int32) alerts.CycleFunc {
	return func(context.Context) (alerts.CycleResult, error) {
		n.Add(1)
		return alerts.CycleResult{Findings: 1, DispatchResult: alerts.DispatchResult{Sent: 1}}, nil
	}
}

func TestMonitor_SoloRolesPrivilegiados(t *testing.T) {
	var n atomic.Int32
	m := alerts.NewMonitor(countingCycle(&n), nil, alerts.MonitorSettings{WarmUp: time.Hour, Interval: time.Hour}, logger.Nop())

	for _, role := range []string{"bodeguero", "vendedor", ""} {
		err := m.Activate(alerts.Principal{Name: "x", Role: role})
		assert.ErrorIs(t, err, domain.ErrForbidden, role)
	}
	assert.False(t, m.Active())

	require.NoError(t, m.Activate(alerts.Principal{Name: "root", Role: "admin"}))
	assert.True(t, m.Active())
	m.Deactivate()
	m.Wait()
	assert.Equal(t, int32(0), n.Load(), "no corre nada antes del warm-up")
}

func TestMonitor_WarmUpLuegoIntervaloYDesactivacion(t *testing.T) {
	var n atomic.Int32
	m := alerts.NewMonitor(countingCycle(&n), nil,
		alerts.MonitorSettings{WarmUp: 10 * time.Millisecond, Interval: 20 * time.Millisecond}, logger.Nop())

	require.NoError(t, m.Activate(gerente))
	require.NoError(t, m.Activate(gerente), "activar dos veces no duplica el bucle")
	require.Eventually(t, func() bool { return n.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	st := m.Status()
	assert.True(t, st.Active)
	assert.Equal(t, "Gina", st.ActivatedBy)
	assert.NotNil(t, st.LastRunAt)
	assert.Equal(t, 1, st.LastSent)

	m.Deactivate()
	m.Wait()
	after := n.Load()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, after, n.Load(), "después de desactivar no se programan ciclos")
	assert.False(t, m.Status().Active)
	assert.Nil(t, m.Status().NextRunAt)
}

func TestMonitor_NoSeSolapanCiclos(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var n atomic.Int32
	cycle := func(context.Context) (alerts.CycleResult, error) {
		n.Add(1)
		started <- struct{}{}
		<-release
		return alerts.CycleResult{}, nil
	}
	m := alerts.NewMonitor(cycle, nil, alerts.MonitorSettings{WarmUp: time.Hour, Interval: time.Hour}, logger.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := m.TriggerNow(context.Background())
		done <- err
	}()
	<-started

	_, err := m.TriggerNow(context.Background())
	assert.ErrorIs(t, err, alerts.ErrCycleInProgress)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, m.Status().Running)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), n.Load())
	assert.False(t, m.Status().Running)
}

type denyLock struct{}

func (denyLock) Acquire(context.Context, time.Duration) (func(), bool, error) {
	return nil, false, nil
}

type countingLock struct{ acquired, released int }

func (l *countingLock) Acquire(context.Context, time.Duration) (func(), bool, error) {
	l.acquired++
	return func() { l.released++ }, true, nil
}

func TestMonitor_LockDistribuido(t *testing.T) {
	var n atomic.Int32
	m := alerts.NewMonitor(countingCycle(&n), denyLock{}, alerts.MonitorSettings{Interval: time.Minute}, logger.Nop())
	_, err := m.TriggerNow(context.Background())
	assert.ErrorIs(t, err, alerts.ErrCycleInProgress)
	assert.Equal(t, int32(0), n.Load())

	lock := &countingLock{}
	m = alerts.NewMonitor(countingCycle(&n), lock, alerts.MonitorSettings{Interval: time.Minute}, logger.Nop())
	res, err := m.TriggerNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 1, lock.acquired)
	assert.Equal(t, 1, lock.released)
}
