package outbox

import (
	"context"
	"time"

	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database"
)

const pgMessageColumns = `id, event_id, aggregate_type, aggregate_id, routing_key,
	payload, metadata, created_at, published_at, next_retry_at, retry_count,
	last_error, dead_lettered_at, dead_letter_reason`

// PostgresRepository stores the outbox in PostgreSQL.
type PostgresRepository struct {
	conn database.Connection
}

// NewPostgresRepository creates a PostgreSQL outbox repository.
func NewPostgresRepository(conn database.Connection) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

func (r *PostgresRepository) Save(ctx context.Context, msg *Message) error {
	return r.SaveBatch(ctx, []*Message{msg})
}

func (r *PostgresRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	execer := database.ExecutorFromContext(ctx, r.conn)
	for _, msg := range msgs {
		err := execer.QueryRow(ctx, `
			INSERT INTO outbox (event_id, aggregate_type, aggregate_id, routing_key, payload, metadata, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			msg.EventID, msg.AggregateType, msg.AggregateID, msg.RoutingKey,
			[]byte(msg.Payload), []byte(msg.Metadata), msg.CreatedAt,
		).Scan(&msg.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT `+pgMessageColumns+`
		FROM outbox
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
		ORDER BY created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var msg Message
		var payload, metadata []byte
		if err := rows.Scan(
			&msg.ID, &msg.EventID, &msg.AggregateType, &msg.AggregateID, &msg.RoutingKey,
			&payload, &metadata, &msg.CreatedAt, &msg.PublishedAt, &msg.NextRetryAt, &msg.RetryCount,
			&msg.LastError, &msg.DeadLetteredAt, &msg.DeadLetterReason,
		); err != nil {
			return nil, err
		}
		msg.Payload, msg.Metadata = payload, metadata
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}

func (r *PostgresRepository) MarkPublished(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `UPDATE outbox SET published_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	_, err := r.conn.Exec(ctx, `
		UPDATE outbox
		SET retry_count = retry_count + 1, last_error = $2, next_retry_at = $3
		WHERE id = $1`, id, errMsg, nextRetryAt)
	return err
}

func (r *PostgresRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	_, err := r.conn.Exec(ctx, `
		UPDATE outbox
		SET dead_lettered_at = NOW(), dead_letter_reason = $2, retry_count = retry_count + 1
		WHERE id = $1`, id, reason)
	return err
}

func (r *PostgresRepository) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	result, err := r.conn.Exec(ctx,
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < $1`,
		time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
