package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/rental-api/internal/domain"
)

// lockManager bloqueos exclusivos por fila. Cada fila es un canal con capacidad 1:
// quien logra escribir el token es el dueño hasta que lo libera.
type lockManager struct {
	mu   sync.Mutex
	rows map[string]chan struct{}
}

func newLockManager() *lockManager {
	return &lockManager{rows: make(map[string]chan struct{})}
}

func (m *lockManager) slot(key string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.rows[key]
	if !ok {
		ch = make(chan struct{}, 1)
		m.rows[key] = ch
	}
	return ch
}

// acquire espera como máximo timeout; al vencer devuelve LockTimeoutError.
func (m *lockManager) acquire(ctx context.Context, key string, timeout time.Duration) error {
	ch := m.slot(key)
	select {
	case ch <- struct{}{}:
		return nil
	default:
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return nil
	case <-timer.C:
		return &domain.LockTimeoutError{Op: "lock " + key}
	case <-ctx.Done():
		return &domain.LockTimeoutError{Op: "lock " + key, Err: ctx.Err()}
	}
}

func (m *lockManager) release(key string) {
	<-m.slot(key)
}
