package database

import "context"

type txKey struct{}

// TxInfo is the transaction bound to a context. Owned is false when the
// transaction was started by an outer unit of work.
type TxInfo struct {
	Tx    Transaction
	Owned bool
}

// WithTx binds tx to ctx.
func WithTx(ctx context.Context, tx Transaction, owned bool) context.Context {
	return context.WithValue(ctx, txKey{}, TxInfo{Tx: tx, Owned: owned})
}

// TxInfoFromContext returns the bound transaction, if any.
func TxInfoFromContext(ctx context.Context) (TxInfo, bool) {
	info, ok := ctx.Value(txKey{}).(TxInfo)
	if !ok || info.Tx == nil {
		return TxInfo{}, false
	}
	return info, true
}

// ExecutorFromContext returns the bound transaction or falls back to conn.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if info, ok := TxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return conn
}
