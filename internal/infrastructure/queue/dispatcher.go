package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aquaflow/servicecrm/internal/api/metrics"
	"github.com/aquaflow/servicecrm/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes recompute signals to a fixed set of workers using
// consistent hashing on the customer id, so jobs for one customer never run
// concurrently. The empty customer id (global scan) has its own shard like
// any other key.
type Dispatcher struct {
	workers    []chan string
	recomputer ports.Recomputer
	log        zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, recomputer ports.Recomputer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:    make([]chan string, numWorkers),
		recomputer: recomputer,
		log:        log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands customerID to its worker without blocking the caller. A
// signal that finds the worker full is dropped; the next mutation or the
// periodic scan recomputes the same figures.
func (d *Dispatcher) Enqueue(customerID string) {
	idx := d.shardIndex(customerID)
	select {
	case d.workers[idx] <- customerID:
		metrics.RecomputeQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.RecomputeDroppedTotal.Inc()
		d.log.Warn().Str("customer_id", customerID).Int("worker_id", idx).Msg("recompute queue full, signal dropped")
	}
}

// ScanEvery enqueues a global recompute on every tick until ctx is done.
func (d *Dispatcher) ScanEvery(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Enqueue("")
		}
	}
}

// shardIndex maps a customer id deterministically to a worker index.
func (d *Dispatcher) shardIndex(customerID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(customerID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	depth := metrics.RecomputeQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case customerID, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			d.process(ctx, id, customerID)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, workerID int, customerID string) {
	scope := "customer"
	if customerID == "" {
		scope = "global"
	}

	start := time.Now()
	res, err := d.recomputer.Recompute(ctx, customerID)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		metrics.RecomputeDuration.WithLabelValues(scope, "error").Observe(elapsed)
		d.log.Error().Err(err).
			Str("customer_id", customerID).
			Int("worker_id", workerID).
			Msg("recompute failed")
		return
	}
	metrics.RecomputeDuration.WithLabelValues(scope, "ok").Observe(elapsed)
	metrics.ObserveAlerts(res.Alerts)
	metrics.ObserveSummary(res.Summary)

	ev := d.log.Info().
		Str("customer_id", customerID).
		Str("scope", scope).
		Int("alerts", res.Alerts.Count).
		Int("worker_id", workerID)
	if res.Summary != nil {
		ev = ev.Int("assets_needing_maintenance", res.Summary.AssetsNeedingMaintenance).
			Str("pending_payments", res.Summary.PendingPayments.StringFixed(2))
	}
	ev.Msg("recompute finished")
}
