package ports

import (
	"context"

	"bambu.printjobs/internal/core/domain"
)

// StateRegistry reads the host platform's entity states. Implementations must
// return entries in the registry's own iteration order.
type StateRegistry interface {
	States(ctx context.Context) (*domain.Registry, error)
}

// ServiceCaller performs a side-effecting action on the host platform.
type ServiceCaller interface {
	CallService(ctx context.Context, domain, service string, data map[string]any) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, event domain.Event) error
}

type EventSubscriber interface {
	SubscribeEvents(ctx context.Context) (<-chan domain.Event, error)
}

// SnapshotSink receives every job list produced by the watcher.
type SnapshotSink interface {
	PushSnapshot(ctx context.Context, jobs []domain.PrintJob)
}
