package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bambu.printjobs/internal/core/domain"
	"bambu.printjobs/internal/core/logger"
)

var sharkJob = domain.PrintJob{
	Name:     "Shark Toy",
	Image:    "/local/bambu_lab/cache/Shark Toy/Metadata/plate_1.png",
	EntityID: "image.printer1_printjob_shark",
}

func waitInvocation(t *testing.T, inv *Invocation) {
	t.Helper()
	select {
	case <-inv.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("invocation did not settle")
	}
}

func TestInvoker_IssuesExactlyOneCall(t *testing.T) {
	caller := &fakeCaller{}
	inv := NewInvoker(caller, nil)

	waitInvocation(t, inv.InvokePrint(context.Background(), sharkJob))

	calls := caller.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "image", calls[0].Domain)
	require.Equal(t, "press", calls[0].Service)
	require.Equal(t, map[string]any{"entity_id": "image.printer1_printjob_shark"}, calls[0].Data)
}

func TestInvoker_FailureIsLoggedNotPropagated(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, slog.LevelInfo, "text")
	t.Cleanup(func() { logger.Init(slog.LevelInfo, "text") })

	caller := &fakeCaller{err: errors.New("entity not found")}
	events := &fakePublisher{}
	inv := NewInvoker(caller, events)

	invocation := inv.InvokePrint(context.Background(), sharkJob)
	waitInvocation(t, invocation)

	require.Len(t, caller.Calls(), 1)
	require.Contains(t, buf.String(), "Error starting print")
	require.Contains(t, buf.String(), "entity not found")

	require.Eventually(t, func() bool { return len(events.Events()) == 1 }, 2*time.Second, 10*time.Millisecond)
	got := events.Events()
	require.Equal(t, domain.EventPrintFailed, got[0].Type)
	require.Equal(t, invocation.ID, got[0].ID)
	require.Equal(t, "entity not found", got[0].Error)
}

func TestInvoker_PublishesRequestedEvent(t *testing.T) {
	events := &fakePublisher{err: errors.New("redis down")}
	inv := NewInvoker(&fakeCaller{}, events)

	waitInvocation(t, inv.InvokePrint(context.Background(), sharkJob))

	require.Eventually(t, func() bool { return len(events.Events()) == 1 }, 2*time.Second, 10*time.Millisecond)
	got := events.Events()
	require.Equal(t, domain.EventPrintRequested, got[0].Type)
	require.Equal(t, sharkJob.EntityID, got[0].EntityID)
}

func TestInvoker_ReturnsBeforeDispatchSettles(t *testing.T) {
	caller := &fakeCaller{release: make(chan struct{})}
	inv := NewInvoker(caller, nil)

	invocation := inv.InvokePrint(context.Background(), sharkJob)

	select {
	case <-invocation.Done():
		t.Fatal("invocation settled before the external call returned")
	default:
	}

	close(caller.release)
	waitInvocation(t, invocation)
	require.Len(t, caller.Calls(), 1)
}

func TestInvoker_CallerCancellationDoesNotAbort(t *testing.T) {
	caller := &fakeCaller{release: make(chan struct{})}
	inv := NewInvoker(caller, nil)

	ctx, cancel := context.WithCancel(context.Background())
	invocation := inv.InvokePrint(ctx, sharkJob)
	cancel()
	close(caller.release)

	waitInvocation(t, invocation)
	calls := caller.Calls()
	require.Len(t, calls, 1)
	require.NoError(t, calls[0].CtxErr)
}

func TestInvoker_NoDebounce(t *testing.T) {
	caller := &fakeCaller{release: make(chan struct{})}
	inv := NewInvoker(caller, nil)

	first := inv.InvokePrint(context.Background(), sharkJob)
	second := inv.InvokePrint(context.Background(), sharkJob)
	require.NotEqual(t, first.ID, second.ID)

	close(caller.release)
	waitInvocation(t, first)
	waitInvocation(t, second)
	require.Len(t, caller.Calls(), 2)
}

func TestInvoker_SlowPublisherDoesNotHoldDone(t *testing.T) {
	events := &blockingPublisher{release: make(chan struct{})}
	t.Cleanup(func() { close(events.release) })
	caller := &fakeCaller{}
	inv := NewInvoker(caller, events)

	waitInvocation(t, inv.InvokePrint(context.Background(), sharkJob))
	require.Len(t, caller.Calls(), 1)
}

func TestInvoker_PanickingCallerIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, slog.LevelInfo, "text")
	t.Cleanup(func() { logger.Init(slog.LevelInfo, "text") })

	events := &fakePublisher{}
	inv := NewInvoker(panicCaller{}, events)

	waitInvocation(t, inv.InvokePrint(context.Background(), sharkJob))

	require.Contains(t, buf.String(), "Error starting print")
	require.Contains(t, buf.String(), "service call panicked")

	require.Eventually(t, func() bool { return len(events.Events()) == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, domain.EventPrintFailed, events.Events()[0].Type)
}
