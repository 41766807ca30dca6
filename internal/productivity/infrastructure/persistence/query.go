package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/quadra/internal/productivity/domain/task"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database/sqlite"
)

const taskColumns = `id, owner_id, title, description, is_important, deadline_at,
	quadrant, completed, completed_at, created_at, updated_at`

// dialect holds what differs between the two backends when building a
// scoped task query.
type dialect struct {
	placeholder   func(n int) string
	timeArg       func(t time.Time) any
	like          func(column, arg string) string // case-insensitive
	deadlineOrder string
}

var sqliteDialect = dialect{
	placeholder:   func(int) string { return "?" },
	timeArg:       func(t time.Time) any { return sqlite.FormatTime(t) },
	like:          func(column, arg string) string { return sqlite.LowerFunction + "(" + column + ") LIKE " + arg + ` ESCAPE '\'` },
	deadlineOrder: "deadline_at IS NULL, deadline_at ASC, created_at DESC",
}

var postgresDialect = dialect{
	placeholder:   func(n int) string { return fmt.Sprintf("$%d", n) },
	timeArg:       func(t time.Time) any { return t.UTC() },
	like:          func(column, arg string) string { return column + " ILIKE " + arg + ` ESCAPE '\'` },
	deadlineOrder: "deadline_at ASC NULLS LAST, created_at DESC",
}

// scopedQuery renders the SELECT for FindByScope. The owner predicate is
// always the first condition when the scope is restricted.
func (d dialect) scopedQuery(scope task.Scope, filter task.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return d.placeholder(len(args))
	}

	if ownerID, restricted := scope.OwnerID(); restricted {
		conds = append(conds, "owner_id = "+next(ownerID))
	}
	if filter.Quadrant != nil {
		conds = append(conds, "quadrant = "+next(filter.Quadrant.String()))
	}
	if filter.Completed != nil {
		conds = append(conds, "completed = "+next(*filter.Completed))
	}
	if filter.HasDeadline != nil {
		if *filter.HasDeadline {
			conds = append(conds, "deadline_at IS NOT NULL")
		} else {
			conds = append(conds, "deadline_at IS NULL")
		}
	}
	if filter.DeadlineFrom != nil {
		conds = append(conds, "deadline_at >= "+next(d.timeArg(*filter.DeadlineFrom)))
	}
	if filter.DeadlineTo != nil {
		conds = append(conds, "deadline_at <= "+next(d.timeArg(*filter.DeadlineTo)))
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		conds = append(conds, "("+d.like("title", next(pattern))+" OR "+d.like("description", next(pattern))+")")
	}

	query := "SELECT " + taskColumns + " FROM tasks"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if filter.Order == task.OrderDeadline {
		query += " ORDER BY " + d.deadlineOrder
	} else {
		query += " ORDER BY created_at DESC, id"
	}
	return query, args
}

// likePattern wraps term in wildcards, escaping the LIKE metacharacters.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(term)) + "%"
}

// inTransaction runs fn inside the transaction bound to ctx, or inside a new
// one that is committed when fn succeeds.
func inTransaction(ctx context.Context, conn database.Connection, fn func(ctx context.Context) error) error {
	uow := database.NewUnitOfWork(conn)
	txCtx, err := uow.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(txCtx); err != nil {
		_ = uow.Rollback(txCtx)
		return err
	}
	return uow.Commit(txCtx)
}
