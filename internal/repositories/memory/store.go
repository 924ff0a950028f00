// Package memory is an in-process implementation of the repository ports.
// It backs the test suites and the memory store driver.
//
// A unit of work stages its writes and applies them to the committed data
// only when fn returns nil. Row locks taken by the *ForUpdate methods are
// per-entity channels held until the unit ends, so two units locking the same
// accounts serialise exactly like SELECT ... FOR UPDATE would.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
)

// Store holds committed data plus the lock table.
type Store struct {
	mu        sync.RWMutex
	committed *dataset
	locks     *lockTable
	seq       *Sequences
}

var (
	_ portsrepo.Store              = (*Store)(nil)
	_ portsrepo.TransactionManager = (*Store)(nil)
)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		committed: newDataset(),
		locks:     &lockTable{rows: make(map[string]chan struct{})},
		seq:       NewSequences(),
	}
}

// WithinTransaction runs fn as one unit of work.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos portsrepo.RepositoryProvider) error) (err error) {
	tx := &unitOfWork{store: s, staged: newDataset(), held: make(map[string]chan struct{})}
	defer tx.releaseLocks()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in unit of work: %v", p)
		}
	}()

	if err := fn(ctx, s.provider(tx)); err != nil {
		return err
	}
	return tx.commit()
}

// Repositories returns repositories whose writes commit immediately.
func (s *Store) Repositories() portsrepo.RepositoryProvider {
	return s.provider(nil)
}

func (s *Store) provider(tx *unitOfWork) portsrepo.RepositoryProvider {
	v := &view{store: s, tx: tx}
	return portsrepo.RepositoryProvider{
		AccountRepo:     &accountRepo{v},
		TransactionRepo: &transactionRepo{v},
		BatchRepo:       &batchRepo{v},
		InstructionRepo: &instructionRepo{v},
		ScheduledRepo:   &scheduledRepo{v},
		LoanRepo:        &loanRepo{v},
		DepositRepo:     &depositRepo{v},
		Sequences:       s.seq,
	}
}

// dataset is either the committed state or the writes staged by one unit.
type dataset struct {
	accounts     map[string]domain.Account
	transactions map[string]domain.Transaction
	batches      map[string]domain.Batch
	batchLines   map[string]domain.BatchLine
	instructions map[string]domain.RecurringInstruction
	scheduled    map[string]domain.ScheduledTransaction
	loans        map[string]domain.Loan
	loanPayments map[string]domain.LoanPayment
	deposits     map[string]domain.FixedDeposit
}

func newDataset() *dataset {
	return &dataset{
		accounts:     make(map[string]domain.Account),
		transactions: make(map[string]domain.Transaction),
		batches:      make(map[string]domain.Batch),
		batchLines:   make(map[string]domain.BatchLine),
		instructions: make(map[string]domain.RecurringInstruction),
		scheduled:    make(map[string]domain.ScheduledTransaction),
		loans:        make(map[string]domain.Loan),
		loanPayments: make(map[string]domain.LoanPayment),
		deposits:     make(map[string]domain.FixedDeposit),
	}
}

func paymentKey(loanID string, n int) string {
	return fmt.Sprintf("%s#%04d", loanID, n)
}

// unitOfWork is the state of one WithinTransaction call.
type unitOfWork struct {
	store  *Store
	staged *dataset
	held   map[string]chan struct{}
	order  []string
}

func (u *unitOfWork) lock(ctx context.Context, key string) error {
	if _, ok := u.held[key]; ok {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	ch := u.store.locks.row(key)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	u.held[key] = ch
	u.order = append(u.order, key)
	return nil
}

func (u *unitOfWork) releaseLocks() {
	for i := len(u.order) - 1; i >= 0; i-- {
		<-u.held[u.order[i]]
	}
	u.held = nil
	u.order = nil
}

// commit copies staged rows over the committed ones.
func (u *unitOfWork) commit() error {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkAccountNumbers(s.committed, u.staged); err != nil {
		return err
	}

	c, st := s.committed, u.staged
	for k, v := range st.accounts {
		c.accounts[k] = v
	}
	for k, v := range st.transactions {
		c.transactions[k] = v
	}
	for k, v := range st.batches {
		c.batches[k] = v
	}
	for k, v := range st.batchLines {
		c.batchLines[k] = v
	}
	for k, v := range st.instructions {
		c.instructions[k] = v
	}
	for k, v := range st.scheduled {
		c.scheduled[k] = v
	}
	for k, v := range st.loans {
		c.loans[k] = v
	}
	for k, v := range st.loanPayments {
		c.loanPayments[k] = v
	}
	for k, v := range st.deposits {
		c.deposits[k] = v
	}
	return nil
}

// lockTable hands out one single-slot channel per row key.
type lockTable struct {
	mu   sync.Mutex
	rows map[string]chan struct{}
}

func (l *lockTable) row(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.rows[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.rows[key] = ch
	}
	return ch
}

// noStaged stands in for the staged data of autocommit reads. It is never written.
var noStaged = newDataset()

// view is what every repository reads and writes through. tx is nil for
// autocommit repositories.
type view struct {
	store *Store
	tx    *unitOfWork
}

// read runs fn with the committed data read-locked and the staged data of
// the current unit, if any.
func (v *view) read(fn func(committed, staged *dataset)) {
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	staged := noStaged
	if v.tx != nil {
		staged = v.tx.staged
	}
	fn(v.store.committed, staged)
}

// write stages fn's changes in the current unit or commits them at once.
func (v *view) write(fn func(committed, staged *dataset) error) error {
	if v.tx != nil {
		var err error
		v.read(func(c, _ *dataset) { err = fn(c, v.tx.staged) })
		return err
	}
	u := &unitOfWork{store: v.store, staged: newDataset()}
	var err error
	v.read(func(c, _ *dataset) { err = fn(c, u.staged) })
	if err != nil {
		return err
	}
	return u.commit()
}

// lock takes a row lock when running inside a unit of work.
func (v *view) lock(ctx context.Context, kind, id string) error {
	if v.tx == nil {
		return nil
	}
	return v.tx.lock(ctx, kind+":"+id)
}

// lookup finds key in staged first, then committed.
func lookup[T any](committed, staged map[string]T, key string) (T, bool) {
	if v, ok := staged[key]; ok {
		return v, true
	}
	v, ok := committed[key]
	return v, ok
}

// merged returns committed rows overlaid with staged ones.
func merged[T any](committed, staged map[string]T) map[string]T {
	if len(staged) == 0 {
		return committed
	}
	out := make(map[string]T, len(committed)+len(staged))
	for k, v := range committed {
		out[k] = v
	}
	for k, v := range staged {
		out[k] = v
	}
	return out
}
