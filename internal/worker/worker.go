package worker

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jmehdipour/email-dispatch/internal/model"
)

const (
	fetchBackoff = 200 * time.Millisecond
	ackTimeout   = 5 * time.Second
)

type Handler interface {
	Handle(ctx context.Context, ev model.EmailDeliveryEvent) error
}

// Worker:
// - fetches deliveries from a Source,
// - decodes them into events and hands them to the Handler,
// - acks handled and poison deliveries; handler errors are left for redelivery.
type Worker struct {
	Source  Source
	Handler Handler
	Log     *zap.Logger
	Threads int // number of goroutines processing deliveries
}

func New(src Source, h Handler, log *zap.Logger, threads int) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{Source: src, Handler: h, Log: log, Threads: threads}
}

// Run blocks until ctx is cancelled and all in-flight deliveries are done.
func (w *Worker) Run(ctx context.Context) error {
	if w.Threads <= 0 {
		w.Threads = 1
	}
	if oa, ok := w.Source.(orderedAcker); ok && oa.OrderedAck() && w.Threads > 1 {
		w.Log.Warn("source acks cumulative offsets, processing on a single thread",
			zap.Int("configured_threads", w.Threads))
		w.Threads = 1
	}

	in := make(chan Delivery, w.Threads*2)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(in)
		for {
			d, err := w.Source.Fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.Log.Warn("fetch failed", zap.Error(err))
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(fetchBackoff):
				}
				continue
			}

			select {
			case in <- d:
			case <-ctx.Done():
				return nil
			}
		}
	})

	for i := 0; i < w.Threads; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil // buffered deliveries stay unacked
				case d, ok := <-in:
					if !ok {
						return nil
					}
					w.processOne(ctx, d)
				}
			}
		})
	}

	return g.Wait()
}

func (w *Worker) processOne(ctx context.Context, d Delivery) {
	log := w.Log.With(zap.String("delivery_id", d.ID))

	var ev model.EmailDeliveryEvent
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		log.Warn("bad event json, skipping", zap.Error(err))
		w.ack(ctx, log, d) // poison → ack, skip
		return
	}

	if err := w.Handler.Handle(ctx, ev); err != nil {
		log.Error("handle event failed, leaving for redelivery", zap.Error(err))
		return
	}

	w.ack(ctx, log, d)
}

// ack outlives shutdown so a handled delivery is not redelivered.
func (w *Worker) ack(ctx context.Context, log *zap.Logger, d Delivery) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ackTimeout)
	defer cancel()

	if err := w.Source.Ack(ctx, d); err != nil {
		log.Warn("ack failed", zap.Error(err))
	}
}
