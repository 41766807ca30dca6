package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleEvent struct {
	BaseEvent
	Name string `json:"name"`
}

func TestNewBaseEntity(t *testing.T) {
	local := time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600))

	e := NewBaseEntity(local)

	assert.NotEqual(t, uuid.Nil, e.ID())
	assert.Equal(t, time.UTC, e.CreatedAt().Location())
	assert.True(t, e.CreatedAt().Equal(local))
	assert.Equal(t, e.CreatedAt(), e.UpdatedAt())
}

func TestBaseEntity_TouchKeepsCreatedAt(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	e := NewBaseEntity(start)

	e.Touch(start.Add(time.Hour))

	assert.Equal(t, start, e.CreatedAt())
	assert.Equal(t, start.Add(time.Hour), e.UpdatedAt())
}

func TestBaseAggregateRoot_Events(t *testing.T) {
	now := time.Now()
	root := NewBaseAggregateRoot(now)
	assert.Empty(t, root.DomainEvents())

	root.AddDomainEvent(sampleEvent{
		BaseEvent: NewBaseEvent(root.ID(), "sample", "sample.created", now),
		Name:      "first",
	})
	require.Len(t, root.DomainEvents(), 1)

	evt := root.DomainEvents()[0]
	assert.Equal(t, root.ID(), evt.AggregateID())
	assert.Equal(t, "sample.created", evt.RoutingKey())

	root.ClearDomainEvents()
	assert.Empty(t, root.DomainEvents())
}

func TestBaseEvent_SetMetadata(t *testing.T) {
	evt := NewBaseEvent(uuid.New(), "sample", "sample.created", time.Now())
	meta := EventMetadata{CorrelationID: uuid.New(), UserID: uuid.New()}

	evt.SetMetadata(meta)

	assert.Equal(t, meta, evt.Metadata())
	assert.NotEqual(t, uuid.Nil, evt.EventID())
}
