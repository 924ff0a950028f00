package lock

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/ports"
)

// LocalLocker is an in-process run lock for single instance deployments.
type LocalLocker struct {
	mu    sync.Mutex
	until map[string]time.Time
}

var _ ports.RunLocker = (*LocalLocker)(nil)

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{until: make(map[string]time.Time)}
}

// TryLock takes name unless another holder's ttl has not yet expired.
func (l *LocalLocker) TryLock(_ context.Context, name string, ttl time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if exp, held := l.until[name]; held && now.Before(exp) {
		return nil, false, nil
	}
	l.until[name] = now.Add(ttl)

	release := func(context.Context) error {
		l.mu.Lock()
		delete(l.until, name)
		l.mu.Unlock()
		return nil
	}
	return release, true, nil
}
