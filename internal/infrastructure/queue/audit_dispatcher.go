// Package queue decouples audit writes from request handling. Audit
// records are fire-and-forget relative to the primary flow: a full queue
// drops the record rather than blocking or failing the request.
package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/authstack/identity-service/internal/api/metrics"
	"github.com/authstack/identity-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ErrQueueFull is returned when a shard's buffer is saturated and the
// record was dropped. Callers treat it like any other audit failure:
// log and continue.
var ErrQueueFull = errors.New("audit queue full, record dropped")

// AuditDispatcher implements ports.AuditRecorder by sharding entries
// over a fixed set of workers keyed on the user id, so one user's
// records are appended in order.
type AuditDispatcher struct {
	workers []chan ports.AuditEntry
	sink    ports.AuditRecorder
	log     zerolog.Logger
}

// NewAuditDispatcher creates a dispatcher writing through to sink.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, sink ports.AuditRecorder, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan ports.AuditEntry, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.AuditEntry, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues one entry without blocking. When the responsible
// shard is full the entry is dropped and ErrQueueFull returned.
func (d *AuditDispatcher) Record(_ context.Context, entry ports.AuditEntry) error {
	select {
	case d.workers[d.shardIndex(entry.UserID)] <- entry:
		return nil
	default:
		metrics.AuditRecordsTotal.WithLabelValues("dropped").Inc()
		return ErrQueueFull
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(userID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(userID, 10)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.AuditEntry) {
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-ch:
			if !ok {
				return
			}
			if err := d.sink.Record(ctx, entry); err != nil {
				metrics.AuditRecordsTotal.WithLabelValues("failed").Inc()
				d.log.Error().Err(err).
					Int64("user_id", entry.UserID).
					Str("action", string(entry.Action)).
					Int("worker_id", id).
					Msg("audit write failed")
				continue
			}
			metrics.AuditRecordsTotal.WithLabelValues("written").Inc()
		}
	}
}
