package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/akilawedasinghe/symetrix/internal/api/metrics"
	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes activities to a fixed set of workers using consistent
// hashing on the ticket id (or the user id for directory activities),
// guaranteeing per-ticket ordering.
type Dispatcher struct {
	workers []chan domain.Activity
	service ports.ActivityService
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.ActivityService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.Activity, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Activity, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue sends an activity to the worker responsible for its shard key.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(a domain.Activity) {
	idx := d.shardIndex(shardKey(a))
	d.workers[idx] <- a
	metrics.ActivitiesQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// EnqueueBatch enqueues multiple activities preserving per-ticket ordering.
func (d *Dispatcher) EnqueueBatch(activities []domain.Activity) {
	for _, a := range activities {
		d.Enqueue(a)
	}
}

func shardKey(a domain.Activity) string {
	if a.TicketID != "" {
		return a.TicketID
	}
	return a.UserID
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Activity) {
	defer d.wg.Done()
	depth := metrics.ActivitiesQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case a, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			if err := d.service.Process(ctx, a); err != nil {
				d.log.Error().Err(err).
					Str("activity_id", a.ID).
					Str("ticket_id", a.TicketID).
					Int("worker_id", id).
					Msg("activity processing failed")
			}
		}
	}
}
