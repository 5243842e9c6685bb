package notify

import (
	"context"
	"sync"
	"time"

	"pet-medical-records/internal/platform/logger"
	"pet-medical-records/internal/ports/notify"
)

const (
	defaultQueueSize   = 256
	defaultSendTimeout = 15 * time.Second
)

// AsyncGateway desacopla el envío del caller: encola y un worker entrega
// en background contra el gateway real. Si la cola se llena, el aviso se
// descarta con un log (nunca bloquea un request ni el scanner).
type AsyncGateway struct {
	inner notify.Gateway
	queue chan func(ctx context.Context)

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

func NewAsyncGateway(inner notify.Gateway) *AsyncGateway {
	g := &AsyncGateway{
		inner: inner,
		queue: make(chan func(ctx context.Context), defaultQueueSize),
		done:  make(chan struct{}),
	}
	g.wg.Add(1)
	go g.worker()
	return g
}

func (g *AsyncGateway) SendExpiryNotice(ctx context.Context, n notify.ExpiryNotice) error {
	g.enqueue(func(ctx context.Context) {
		if err := g.inner.SendExpiryNotice(ctx, n); err != nil {
			logger.Get().Error().Err(err).
				Str("recipient", n.RecipientEmail).
				Str("kind", string(n.Kind)).
				Msg("async expiry notice delivery failed")
		}
	})
	return nil
}

func (g *AsyncGateway) SendRecordAddedNotice(ctx context.Context, n notify.RecordAddedNotice) error {
	g.enqueue(func(ctx context.Context) {
		if err := g.inner.SendRecordAddedNotice(ctx, n); err != nil {
			logger.Get().Error().Err(err).
				Str("recipient", n.RecipientEmail).
				Str("kind", string(n.Kind)).
				Msg("async record added notice delivery failed")
		}
	})
	return nil
}

func (g *AsyncGateway) enqueue(fn func(ctx context.Context)) {
	select {
	case <-g.done:
		logger.Get().Warn().Msg("async gateway closed, dropping notice")
	case g.queue <- fn:
	default:
		logger.Get().Warn().Msg("async gateway queue full, dropping notice")
	}
}

func (g *AsyncGateway) worker() {
	defer g.wg.Done()
	for {
		select {
		case fn := <-g.queue:
			g.deliver(fn)
		case <-g.done:
			// Drenar lo que quedó encolado antes de salir.
			for {
				select {
				case fn := <-g.queue:
					g.deliver(fn)
				default:
					return
				}
			}
		}
	}
}

func (g *AsyncGateway) deliver(fn func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultSendTimeout)
	defer cancel()
	fn(ctx)
}

// Close frena el worker y drena la cola pendiente.
func (g *AsyncGateway) Close() {
	g.closeOnce.Do(func() {
		close(g.done)
	})
	g.wg.Wait()
}
