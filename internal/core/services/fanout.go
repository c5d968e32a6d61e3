package services

import (
	"context"
	"errors"

	"bambu.printjobs/internal/core/domain"
	"bambu.printjobs/internal/core/logger"
	"bambu.printjobs/internal/core/ports"
)

// EventFanout publishes every event to all of its publishers.
type EventFanout []ports.EventPublisher

func (f EventFanout) PublishEvent(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Relay feeds every event from sub into pub until sub closes or ctx is done.
// Snapshot events go to sink instead when it is non-nil.
func Relay(ctx context.Context, sub ports.EventSubscriber, pub ports.EventPublisher, sink ports.SnapshotSink) error {
	events, err := sub.SubscribeEvents(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if event.Type == domain.EventPrintJobs && sink != nil {
				sink.PushSnapshot(ctx, event.Jobs)
				continue
			}
			if err := pub.PublishEvent(ctx, event); err != nil {
				logger.WarnContext(ctx, "Failed to relay event", "type", event.Type, "error", err)
			}
		}
	}
}
