package services

import (
	"context"
	"sync"

	"bambu.printjobs/internal/core/domain"
)

type fakeRegistry struct {
	reg *domain.Registry
	err error
}

func (f *fakeRegistry) States(ctx context.Context) (*domain.Registry, error) {
	return f.reg, f.err
}

type serviceCall struct {
	Domain  string
	Service string
	Data    map[string]any
	CtxErr  error
}

type fakeCaller struct {
	mu    sync.Mutex
	calls []serviceCall
	err   error
	// release, when set, holds every call until it is closed.
	release chan struct{}
}

func (f *fakeCaller) CallService(ctx context.Context, d, s string, data map[string]any) error {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, serviceCall{Domain: d, Service: s, Data: data, CtxErr: ctx.Err()})
	return f.err
}

func (f *fakeCaller) Calls() []serviceCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]serviceCall(nil), f.calls...)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (f *fakePublisher) PublishEvent(ctx context.Context, event domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func (f *fakePublisher) Events() []domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Event(nil), f.events...)
}

type fakeSink struct {
	ch chan []domain.PrintJob
}

func (f *fakeSink) PushSnapshot(ctx context.Context, jobs []domain.PrintJob) {
	select {
	case f.ch <- jobs:
	default:
	}
}

type blockingPublisher struct {
	release chan struct{}
}

func (b *blockingPublisher) PublishEvent(ctx context.Context, event domain.Event) error {
	<-b.release
	return nil
}

type panicCaller struct{}

func (panicCaller) CallService(ctx context.Context, d, s string, data map[string]any) error {
	panic("nil printer session")
}
