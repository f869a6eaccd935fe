package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/realtime"
	"github.com/spec-kit/complaint-service/internal/service"
)

type blockingRelay struct{ started chan struct{} }

func (r *blockingRelay) Run(ctx context.Context) error {
	close(r.started)
	<-ctx.Done()
	return ctx.Err()
}

type countingSink struct{ n int }

func (s *countingSink) Deliver(events.Event) { s.n++ }

func TestNotificationWorkerLifecycle(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(nil)
	sink := &countingSink{}
	relay := &blockingRelay{started: make(chan struct{})}
	w := NewNotificationWorker(service.NewNotificationService(dispatcher, sink, nil, nil), relay, nil)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	select {
	case <-relay.started:
	case <-time.After(time.Second):
		t.Fatal("relay not started")
	}

	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventNewComplaint, "c1", "u1", nil)))
	require.Equal(t, 1, sink.n)

	cancel()
	done := make(chan struct{})
	go func() { w.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestNotificationWorkerWithoutRelay(t *testing.T) {
	w := NewNotificationWorker(nil, nil, nil)
	w.Start(context.Background())
	w.Wait()
}

// flakyRelay fails its first runs, then stays subscribed until ctx ends.
type flakyRelay struct {
	failures int32
	calls    atomic.Int32
	up       chan struct{}
}

func (r *flakyRelay) Run(ctx context.Context) error {
	if r.calls.Add(1) <= r.failures {
		return errors.New("dial tcp: connection refused")
	}
	close(r.up)
	<-ctx.Done()
	return ctx.Err()
}

func waitDone(w *NotificationWorker) <-chan struct{} {
	done := make(chan struct{})
	go func() { w.Wait(); close(done) }()
	return done
}

func TestNotificationWorkerRetriesFailedRelay(t *testing.T) {
	relay := &flakyRelay{failures: 3, up: make(chan struct{})}
	w := NewNotificationWorker(nil, relay, nil)
	w.retryInitial = time.Millisecond
	w.retryMax = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	select {
	case <-relay.up:
	case <-time.After(2 * time.Second):
		t.Fatal("relay was not restarted after failures")
	}
	require.EqualValues(t, 4, relay.calls.Load())

	cancel()
	select {
	case <-waitDone(w):
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestNotificationWorkerSurvivesRedisDownAtBoot(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	relay := realtime.NewRedisRelay(client, "complaints:events", &countingSink{}, nil)

	w := NewNotificationWorker(nil, relay, nil)
	w.retryInitial = 5 * time.Millisecond
	w.retryMax = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	done := waitDone(w)
	select {
	case <-done:
		t.Fatal("relay loop exited while the context was live")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
