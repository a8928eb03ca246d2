package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Event struct {
	ProviderID uint
	UserID     *uint
	Action     string
	Entity     string
	EntityID   *uint
	Metadata   any
}

type Writer interface {
	Write(ctx context.Context, ev Event) error
}

// Dispatcher writes audit events off the request path. When the queue is
// full events are dropped: auditing never fails a request.
type Dispatcher struct {
	writer Writer
	queue  chan Event
	log    *zap.Logger

	closeOnce sync.Once
	done      chan struct{}
}

const (
	queueSize    = 100
	writeTimeout = 5 * time.Second
)

func NewDispatcher(writer Writer, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dispatcher{
		writer: writer,
		queue:  make(chan Event, queueSize),
		log:    log,
		done:   make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := d.writer.Write(ctx, ev); err != nil {
			d.log.Error("audit write failed",
				zap.String("action", ev.Action),
				zap.Uint("provider_id", ev.ProviderID),
				zap.Error(err),
			)
		}
		cancel()
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		d.log.Warn("audit queue full, dropping event", zap.String("action", ev.Action))
	}
}

// Close stops accepting events and waits until the queue is drained or ctx
// is done. Dispatch must not be called after Close.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.closeOnce.Do(func() { close(d.queue) })
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
