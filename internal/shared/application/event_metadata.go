package application

import (
	"context"

	"github.com/felixgeelhaar/quadra/internal/shared/domain"
	"github.com/felixgeelhaar/quadra/pkg/observability"
	"github.com/google/uuid"
)

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

// NewEventMetadata builds metadata for events raised by one command. The
// correlation ID is taken from the request context when it parses as a UUID.
func NewEventMetadata(ctx context.Context, userID uuid.UUID) domain.EventMetadata {
	correlationID, err := uuid.Parse(observability.CorrelationIDFromContext(ctx))
	if err != nil {
		correlationID = uuid.New()
	}
	return domain.EventMetadata{
		CorrelationID: correlationID,
		CausationID:   uuid.New(),
		UserID:        userID,
	}
}

// ApplyEventMetadata stamps metadata on every event that accepts it.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
}
