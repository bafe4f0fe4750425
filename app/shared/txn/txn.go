// Package txn supplies the transactional scope services and the partie
// orchestrator run in. A scope opened further up the call chain travels in
// the context, and nested RunInTx calls join it instead of opening their own.
package txn

import (
	"context"
	"database/sql"
	"sync"

	"github.com/uptrace/bun"
)

// Func is a unit of work executed inside a transaction. db is the handle
// repositories must use; it may be nil for stores that ignore it.
type Func func(ctx context.Context, db bun.IDB) error

// Transactor runs work atomically: a non-nil error from fn discards every
// write fn made.
type Transactor interface {
	RunInTx(ctx context.Context, fn Func) error
}

type scopeKey struct{}

// Scope is one open unit of work.
type Scope struct {
	db bun.IDB

	mu    sync.Mutex
	hooks []func(context.Context)
}

// Begin opens a scope bound to db and returns a context carrying it. The
// owner of the scope calls Commit once the unit of work has succeeded.
func Begin(ctx context.Context, db bun.IDB) (context.Context, *Scope) {
	s := &Scope{db: db}
	return context.WithValue(ctx, scopeKey{}, s), s
}

// Commit runs the hooks registered with AfterCommit, in registration order.
func (s *Scope) Commit(ctx context.Context) {
	s.mu.Lock()
	hooks := s.hooks
	s.hooks = nil
	s.mu.Unlock()

	for _, h := range hooks {
		h(ctx)
	}
}

func (s *Scope) bind(db bun.IDB) { s.db = db }

// FromContext returns the transaction handle bound to ctx, if any.
func FromContext(ctx context.Context) (bun.IDB, bool) {
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	if !ok {
		return nil, false
	}
	return s.db, true
}

// AfterCommit defers fn until the scope on ctx commits; rolled back scopes
// drop it. Outside any scope fn runs immediately.
func AfterCommit(ctx context.Context, fn func(context.Context)) {
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	if !ok {
		fn(ctx)
		return
	}
	s.mu.Lock()
	s.hooks = append(s.hooks, fn)
	s.mu.Unlock()
}

// BunTransactor opens Postgres transactions through bun.
type BunTransactor struct {
	db *bun.DB
}

func NewBunTransactor(db *bun.DB) *BunTransactor {
	return &BunTransactor{db: db}
}

func (t *BunTransactor) RunInTx(ctx context.Context, fn Func) error {
	if db, ok := FromContext(ctx); ok {
		return fn(ctx, db)
	}
	scoped, scope := Begin(ctx, nil)
	err := t.db.RunInTx(scoped, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		scope.bind(tx)
		return fn(ctx, tx)
	})
	if err != nil {
		return err
	}
	scope.Commit(ctx)
	return nil
}

// Passthrough runs fn without any transaction. Only suitable for fakes.
type Passthrough struct{}

func (Passthrough) RunInTx(ctx context.Context, fn Func) error {
	if db, ok := FromContext(ctx); ok {
		return fn(ctx, db)
	}
	scoped, scope := Begin(ctx, nil)
	if err := fn(scoped, nil); err != nil {
		return err
	}
	scope.Commit(ctx)
	return nil
}
