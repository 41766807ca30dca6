package application

import "context"

// UnitOfWork scopes a group of repository calls to one transaction.
// Begin returns a context that repositories use to find the transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) (context.Context, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWorkFunc is a function that executes within a unit of work.
type UnitOfWorkFunc func(ctx context.Context) error

// WithUnitOfWork runs fn inside a transaction. The transaction is committed
// when fn returns nil and rolled back on error or panic. Begin and commit
// failures are reported as StoreError.
func WithUnitOfWork(ctx context.Context, uow UnitOfWork, fn UnitOfWorkFunc) (err error) {
	txCtx, err := uow.Begin(ctx)
	if err != nil {
		return &StoreError{Op: "begin transaction", Err: err}
	}

	defer func() {
		if r := recover(); r != nil {
			_ = uow.Rollback(txCtx)
			panic(r)
		}
	}()

	if err := fn(txCtx); err != nil {
		_ = uow.Rollback(txCtx)
		return err
	}

	if err := uow.Commit(txCtx); err != nil {
		return &StoreError{Op: "commit transaction", Err: err}
	}
	return nil
}
