// Package notify delivers best-effort events about committed money movements.
// Nothing here can fail the operation that produced the event.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/tropicaldog17/keble/internal/errors"
)

// Event types
const (
	EventFundingCommitted  = "funding.committed"
	EventDividendDisbursed = "dividend.disbursed"
)

// Event describes something that already happened and was committed
type Event struct {
	Type         string          `json:"type"`
	RequestID    string          `json:"request_id,omitempty"`
	UserID       string          `json:"user_id"`
	UserName     string          `json:"user_name,omitempty"`
	InvestmentID string          `json:"investment_id"`
	ListingID    string          `json:"listing_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	TopUp        bool            `json:"top_up,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// Sender delivers one event
type Sender interface {
	Send(ctx context.Context, event Event) error
}

// Publisher accepts events without blocking
type Publisher interface {
	Publish(event Event)
}

// DefaultQueueSize bounds the number of undelivered events
const DefaultQueueSize = 256

// Dispatcher queues events and delivers them from a single background worker
type Dispatcher struct {
	sender  Sender
	logger  *zap.Logger
	timeout time.Duration
	queue   chan Event

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewDispatcher starts a dispatcher delivering through sender. Each delivery gets
// at most timeout.
func NewDispatcher(sender Sender, logger *zap.Logger, queueSize int, timeout time.Duration) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	d := &Dispatcher{
		sender:  sender,
		logger:  logger,
		timeout: timeout,
		queue:   make(chan Event, queueSize),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish enqueues event. A full queue drops the event and logs it.
func (d *Dispatcher) Publish(event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("notification dropped after shutdown", zap.String("event", event.Type))
		return
	}

	select {
	case d.queue <- event:
	default:
		d.logger.Warn("notification queue full, dropping event",
			zap.String("event", event.Type),
			zap.String("investment_id", event.InvestmentID))
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for event := range d.queue {
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.sender.Send(ctx, event); err != nil {
		failure := &apperrors.ErrNotification{Event: event.Type, Err: err}
		d.logger.Error("notification delivery failed",
			zap.String("investment_id", event.InvestmentID),
			zap.Error(failure))
	}
}

// Close stops accepting events and waits until queued ones are delivered or ctx
// expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogSender writes events to the log
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a sender that only logs
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, event Event) error {
	s.logger.Info("notification",
		zap.String("event", event.Type),
		zap.String("user_id", event.UserID),
		zap.String("user_name", event.UserName),
		zap.String("investment_id", event.InvestmentID),
		zap.String("amount", event.Amount.StringFixed(2)),
		zap.Bool("top_up", event.TopUp),
		zap.Time("occurred_at", event.OccurredAt))
	return nil
}

// MultiSender fans an event out to every sender and returns the first error
type MultiSender []Sender

func (m MultiSender) Send(ctx context.Context, event Event) error {
	var first error
	for _, s := range m {
		if err := s.Send(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
