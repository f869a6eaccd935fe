package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/service"
)

// Relay receives events published by other instances until ctx ends.
type Relay interface {
	Run(ctx context.Context) error
}

const (
	relayRetryInitial = 500 * time.Millisecond
	relayRetryMax     = 30 * time.Second
)

// NotificationWorker wires event handlers and keeps the optional relay loop alive.
type NotificationWorker struct {
	notifications *service.NotificationService
	relay         Relay
	logger        *zap.Logger
	wg            sync.WaitGroup

	retryInitial time.Duration
	retryMax     time.Duration
}

// NewNotificationWorker creates the worker. relay may be nil for a single instance.
func NewNotificationWorker(notifications *service.NotificationService, relay Relay, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		notifications: notifications,
		relay:         relay,
		logger:        logger,
		retryInitial:  relayRetryInitial,
		retryMax:      relayRetryMax,
	}
}

// Start registers notification handlers and launches the relay subscriber.
func (w *NotificationWorker) Start(ctx context.Context) {
	if w.notifications != nil {
		w.notifications.RegisterHandlers()
	}
	if w.relay == nil {
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.runRelay(ctx)
		w.logger.Info("realtime relay stopped")
	}()
}

// runRelay restarts the relay with exponential backoff until ctx ends. A
// run that stayed up longer than the maximum delay resets the backoff.
func (w *NotificationWorker) runRelay(ctx context.Context) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = w.retryInitial
	policy.MaxInterval = w.retryMax
	policy.MaxElapsedTime = 0
	policy.Reset()

	for {
		started := time.Now()
		err := w.relay.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		if time.Since(started) > w.retryMax {
			policy.Reset()
		}
		delay := policy.NextBackOff()
		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Warn("realtime relay failed; retrying", zap.Duration("delay", delay), zap.Error(err))
		} else {
			w.logger.Warn("realtime relay subscription closed; retrying", zap.Duration("delay", delay))
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// Wait blocks until the relay loop has returned.
func (w *NotificationWorker) Wait() {
	w.wg.Wait()
}
