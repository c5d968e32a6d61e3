package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"bambu.printjobs/internal/core/domain"
	"bambu.printjobs/internal/core/logger"
	"bambu.printjobs/internal/core/metrics"
	"bambu.printjobs/internal/core/ports"
	"bambu.printjobs/internal/core/tracing"
)

// Invocation is a dispatched press. It cannot be cancelled and carries no
// result; Done is closed once the external call has settled, before the
// outcome event is published.
type Invocation struct {
	ID       string
	EntityID string
	done     chan struct{}
}

func (i *Invocation) Done() <-chan struct{} {
	return i.done
}

// Wait blocks until the external call settles.
func (i *Invocation) Wait() {
	<-i.done
}

// Invoker asks the host platform to press a job's backing entity. Every call
// issues exactly one external request; there is no retry, timeout or
// debouncing, and failures are logged rather than returned.
type Invoker struct {
	caller ports.ServiceCaller
	events ports.EventPublisher
}

// NewInvoker builds an Invoker. events may be nil.
func NewInvoker(caller ports.ServiceCaller, events ports.EventPublisher) *Invoker {
	return &Invoker{caller: caller, events: events}
}

// InvokePrint dispatches the press on its own goroutine and returns at once.
// Cancelling ctx after the call does not abort the dispatch.
func (inv *Invoker) InvokePrint(ctx context.Context, job domain.PrintJob) *Invocation {
	i := &Invocation{
		ID:       uuid.New().String(),
		EntityID: job.EntityID,
		done:     make(chan struct{}),
	}

	ctx = context.WithoutCancel(ctx)
	metrics.InvocationStarted()

	go func() {
		event := inv.dispatch(ctx, i)
		close(i.done)
		inv.publish(ctx, event)
	}()

	return i
}

// dispatch issues the single external call and reports its outcome as an
// event. A panicking caller counts as a failed press.
func (inv *Invoker) dispatch(ctx context.Context, i *Invocation) domain.Event {
	ctx, span := tracing.StartSpan(ctx, "Invoker.dispatch",
		attribute.String("entity_id", i.EntityID),
		attribute.String("invocation_id", i.ID),
	)

	err := inv.call(ctx, i.EntityID)

	event := domain.Event{
		ID:        i.ID,
		Type:      domain.EventPrintRequested,
		EntityID:  i.EntityID,
		Timestamp: time.Now(),
	}

	if err != nil {
		invErr := &domain.InvocationError{EntityID: i.EntityID, Err: err}
		tracing.EndSpan(span, invErr)
		metrics.InvocationSettled(metrics.ResultFailed)
		logger.ErrorContext(ctx, "Error starting print", "entity_id", i.EntityID, "invocation_id", i.ID, "error", invErr)

		event.Type = domain.EventPrintFailed
		event.Error = err.Error()
	} else {
		tracing.EndSpan(span, nil)
		metrics.InvocationSettled(metrics.ResultDispatched)
		logger.InfoContext(ctx, "Print dispatched", "entity_id", i.EntityID, "invocation_id", i.ID)
	}

	return event
}

func (inv *Invoker) call(ctx context.Context, entityID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("service call panicked: %v", r)
		}
	}()
	return inv.caller.CallService(ctx, domain.PressDomain, domain.PressService, map[string]any{
		"entity_id": entityID,
	})
}

// publish runs after Done is closed.
func (inv *Invoker) publish(ctx context.Context, event domain.Event) {
	if inv.events == nil {
		return
	}
	if err := inv.events.PublishEvent(ctx, event); err != nil {
		logger.WarnContext(ctx, "Failed to publish invocation event", "type", event.Type, "entity_id", event.EntityID, "error", err)
	}
}
