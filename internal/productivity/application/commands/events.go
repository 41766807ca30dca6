package commands

import (
	"context"

	"github.com/felixgeelhaar/quadra/internal/shared/application"
	"github.com/felixgeelhaar/quadra/internal/shared/domain"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// saveEvents stamps request metadata on events and writes them to the
// outbox inside the caller's transaction.
func saveEvents(ctx context.Context, repo outbox.Repository, userID uuid.UUID, events []domain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	application.ApplyEventMetadata(events, application.NewEventMetadata(ctx, userID))
	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return application.Store("serialize events", err)
	}
	return application.Store("save outbox messages", repo.SaveBatch(ctx, msgs))
}
