package outbox

import (
	"context"
	"database/sql"
	"time"

	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database/sqlite"
)

// SQLiteRepository stores the outbox in SQLite.
type SQLiteRepository struct {
	conn database.Connection
	now  func() time.Time
}

// NewSQLiteRepository creates a SQLite outbox repository.
func NewSQLiteRepository(conn database.Connection) *SQLiteRepository {
	return &SQLiteRepository{conn: conn, now: time.Now}
}

func (r *SQLiteRepository) Save(ctx context.Context, msg *Message) error {
	return r.SaveBatch(ctx, []*Message{msg})
}

func (r *SQLiteRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	execer := database.ExecutorFromContext(ctx, r.conn)
	for _, msg := range msgs {
		err := execer.QueryRow(ctx, `
			INSERT INTO outbox (event_id, aggregate_type, aggregate_id, routing_key, payload, metadata, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			RETURNING id`,
			msg.EventID.String(), msg.AggregateType, msg.AggregateID.String(), msg.RoutingKey,
			string(msg.Payload), string(msg.Metadata), sqlite.FormatTime(msg.CreatedAt),
		).Scan(&msg.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, `
		SELECT id, event_id, aggregate_type, aggregate_id, routing_key, payload, metadata,
		       created_at, next_retry_at, retry_count, last_error
		FROM outbox
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY created_at
		LIMIT ?`, sqlite.FormatTime(r.now()), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var (
			msg                  Message
			payload, metadata    string
			createdAt            string
			nextRetryAt, lastErr sql.NullString
		)
		if err := rows.Scan(
			&msg.ID, &msg.EventID, &msg.AggregateType, &msg.AggregateID, &msg.RoutingKey,
			&payload, &metadata, &createdAt, &nextRetryAt, &msg.RetryCount, &lastErr,
		); err != nil {
			return nil, err
		}
		msg.Payload, msg.Metadata = []byte(payload), []byte(metadata)
		if msg.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
			return nil, err
		}
		if msg.NextRetryAt, err = sqlite.ParseNullTime(nextRetryAt); err != nil {
			return nil, err
		}
		if lastErr.Valid {
			msg.LastError = &lastErr.String
		}
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}

func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `UPDATE outbox SET published_at = ? WHERE id = ?`, sqlite.FormatTime(r.now()), id)
	return err
}

func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	_, err := r.conn.Exec(ctx, `
		UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
		WHERE id = ?`, errMsg, sqlite.FormatTime(nextRetryAt), id)
	return err
}

func (r *SQLiteRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	_, err := r.conn.Exec(ctx, `
		UPDATE outbox SET dead_lettered_at = ?, dead_letter_reason = ?, retry_count = retry_count + 1
		WHERE id = ?`, sqlite.FormatTime(r.now()), reason, id)
	return err
}

func (r *SQLiteRepository) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	result, err := r.conn.Exec(ctx,
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?`,
		sqlite.FormatTime(r.now().Add(-olderThan)))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
