// Package email renders account notifications and delivers them in the
// background. Delivery is best effort: at most once, never retried.
package email

import (
	"context"
	"sync"
	"time"

	"github.com/redmonkez12/task-manager-api/internal/logging"
)

// Dispatcher queues notifications and sends them from a single worker.
// Failures are logged and never reach the caller.
type Dispatcher struct {
	transport   Transport
	logger      *logging.Logger
	sendTimeout time.Duration

	queue  chan Message
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(transport Transport, logger *logging.Logger, queueSize int, sendTimeout time.Duration) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		transport:   transport,
		logger:      logger,
		sendTimeout: sendTimeout,
		queue:       make(chan Message, queueSize),
	}
}

// Start launches the worker goroutine
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
}

// Close stops accepting messages and waits for queued ones to be sent
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

// NotifyWelcome queues the welcome email and returns immediately
func (d *Dispatcher) NotifyWelcome(to, name string) {
	msg, err := WelcomeMessage(to, name)
	if err != nil {
		d.logger.Error("failed to render welcome email", "error", err.Error())
		return
	}
	d.enqueue(msg)
}

// NotifyCancellation queues the cancellation email and returns immediately
func (d *Dispatcher) NotifyCancellation(to, name string) {
	msg, err := CancellationMessage(to, name)
	if err != nil {
		d.logger.Error("failed to render cancellation email", "error", err.Error())
		return
	}
	d.enqueue(msg)
}

func (d *Dispatcher) enqueue(msg Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("email dropped, dispatcher closed", "to", msg.To, "subject", msg.Subject)
		return
	}

	select {
	case d.queue <- msg:
	default:
		d.logger.Warn("email dropped, queue full", "to", msg.To, "subject", msg.Subject)
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for msg := range d.queue {
		d.send(msg)
	}
}

func (d *Dispatcher) send(msg Message) {
	ctx := context.Background()
	if d.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.sendTimeout)
		defer cancel()
	}

	if err := d.transport.Send(ctx, msg); err != nil {
		d.logger.Error("failed to send email", "to", msg.To, "subject", msg.Subject, "error", err.Error())
		return
	}

	d.logger.Info("email sent", "to", msg.To, "subject", msg.Subject)
}
