package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sink delivers one event to a destination.
type Sink interface {
	Deliver(ctx context.Context, e Event) error
}

// Publisher fans events out to its sinks. By default Emit delivers inline;
// WithAsyncBuffer moves delivery onto a background worker so hot paths never
// block on a slow sink.
type Publisher struct {
	sinks  []Sink
	logger *slog.Logger

	queue chan Event
	done  chan struct{}
	once  sync.Once
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithAsyncBuffer buffers up to size events and delivers them from a
// background goroutine. When the buffer is full Emit drops the event and
// logs it rather than blocking the caller.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.queue = make(chan Event, size)
	}
}

func NewPublisher(sinks []Sink, opts ...Option) *Publisher {
	p := &Publisher{
		sinks:  sinks,
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.queue != nil {
		go p.drain()
	}
	return p
}

// Emit publishes the event. Failures are logged, never returned.
func (p *Publisher) Emit(ctx context.Context, e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	if p.queue == nil {
		p.deliver(ctx, e)
		return
	}
	select {
	case p.queue <- e:
	default:
		p.logger.WarnContext(ctx, "event dropped, notify buffer full", "event_type", e.Type)
	}
}

// Close stops the async worker after draining queued events. Inline
// publishers close immediately.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.queue != nil {
			close(p.queue)
			<-p.done
			return
		}
		close(p.done)
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for e := range p.queue {
		p.deliver(context.Background(), e)
	}
}

func (p *Publisher) deliver(ctx context.Context, e Event) {
	for _, sink := range p.sinks {
		if err := sink.Deliver(ctx, e); err != nil {
			p.logger.ErrorContext(ctx, "event delivery failed",
				"event_type", e.Type, "error", err)
		}
	}
}
