// Package memdb is the in-process storage backend used by the "memory"
// storage driver and by tests. Its Store doubles as a txn.Transactor: a failed
// unit of work restores every table to the snapshot taken when it began.
package memdb

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/tabletop-ledger/partie/app/shared/txn"
)

type snapshotter interface {
	snapshot() (restore func())
}

// Store groups tables that share one transactional scope.
type Store struct {
	txMu   sync.Mutex
	mu     sync.Mutex
	tables []snapshotter
}

func NewStore() *Store {
	return &Store{}
}

// RunInTx serialises units of work. Nested calls join the running one.
func (s *Store) RunInTx(ctx context.Context, fn txn.Func) error {
	if db, ok := txn.FromContext(ctx); ok {
		return fn(ctx, db)
	}

	scope, err := s.run(ctx, fn)
	if err != nil {
		return err
	}
	scope.Commit(ctx)
	return nil
}

func (s *Store) run(ctx context.Context, fn txn.Func) (_ *txn.Scope, err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	restores := make([]func(), 0, len(s.tables))
	for _, t := range s.tables {
		restores = append(restores, t.snapshot())
	}
	s.mu.Unlock()

	committed := false
	defer func() {
		if !committed {
			for _, restore := range restores {
				restore()
			}
		}
	}()

	scoped, scope := txn.Begin(ctx, nil)
	if err := fn(scoped, nil); err != nil {
		return nil, err
	}
	committed = true
	return scope, nil
}

func (s *Store) register(t snapshotter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = append(s.tables, t)
}

// Table is an insertion-ordered map of rows keyed by id.
type Table[V any] struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]V
	seq  map[uuid.UUID]uint64
	next uint64
}

// NewTable creates a table enrolled in s's transactions.
func NewTable[V any](s *Store) *Table[V] {
	t := &Table[V]{
		rows: make(map[uuid.UUID]V),
		seq:  make(map[uuid.UUID]uint64),
	}
	s.register(t)
	return t
}

func (t *Table[V]) snapshot() func() {
	t.mu.RLock()
	rows := make(map[uuid.UUID]V, len(t.rows))
	seq := make(map[uuid.UUID]uint64, len(t.seq))
	for k, v := range t.rows {
		rows[k] = v
		seq[k] = t.seq[k]
	}
	next := t.next
	t.mu.RUnlock()

	return func() {
		t.mu.Lock()
		t.rows, t.seq, t.next = rows, seq, next
		t.mu.Unlock()
	}
}

// Get returns the row stored under id.
func (t *Table[V]) Get(id uuid.UUID) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[id]
	return v, ok
}

// Put inserts or replaces a row. Replacing keeps the original position.
func (t *Table[V]) Put(id uuid.UUID, v V) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.seq[id]; !ok {
		t.next++
		t.seq[id] = t.next
	}
	t.rows[id] = v
}

// Delete removes a row and reports whether it existed.
func (t *Table[V]) Delete(id uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	delete(t.seq, id)
	return true
}

// Len returns the number of rows.
func (t *Table[V]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Filter returns the rows matching keep in insertion order. A nil keep
// returns every row.
func (t *Table[V]) Filter(keep func(V) bool) []V {
	t.mu.RLock()
	defer t.mu.RUnlock()

	keys := make([]uuid.UUID, 0, len(t.rows))
	for k, v := range t.rows {
		if keep == nil || keep(v) {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b uuid.UUID) int {
		return int(t.seq[a]) - int(t.seq[b])
	})

	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, t.rows[k])
	}
	return out
}
