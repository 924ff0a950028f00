package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
)

// Sequences hands out references from per-prefix atomic counters. Values
// are never returned to the pool, so rolled back units leave gaps.
type Sequences struct {
	counters sync.Map // prefix -> *atomic.Int64
}

var _ portsrepo.SequenceGenerator = (*Sequences)(nil)

func NewSequences() *Sequences {
	return &Sequences{}
}

func (s *Sequences) NextReference(_ context.Context, prefix string) (string, error) {
	v, _ := s.counters.LoadOrStore(prefix, new(atomic.Int64))
	n := v.(*atomic.Int64).Add(1)
	return fmt.Sprintf("%s%06d", prefix, n), nil
}
