package repo

import (
	"context"
	"reflect"
	"sync"

	"gorm.io/gorm"
)

type txKey struct{}

// UnitOfWork groups repository writes into one database transaction and hands out one
// repository per entity type.
type UnitOfWork struct {
	db *gorm.DB

	mu    sync.Mutex
	repos map[reflect.Type]any
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db, repos: make(map[reflect.Type]any)}
}

// Do runs fn inside a transaction carried by the returned context. A nested Do joins the
// outer transaction. The transaction commits when fn returns nil and rolls back otherwise.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// DB returns the transaction bound to ctx, or a plain session.
func (u *UnitOfWork) DB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return u.db.WithContext(ctx)
}

func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}

// Repo returns the cached repository for T, creating it on first use.
func Repo[T any](u *UnitOfWork) *Repository[T] {
	key := reflect.TypeOf((*T)(nil)).Elem()

	u.mu.Lock()
	defer u.mu.Unlock()

	if r, ok := u.repos[key]; ok {
		return r.(*Repository[T])
	}
	r := &Repository[T]{uow: u}
	u.repos[key] = r
	return r
}
