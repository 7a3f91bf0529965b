// internal/outbox/outbox.go
package outbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/abc-shortship/backend-go/internal/domain"
	"github.com/abc-shortship/backend-go/pkg/logger"
)

// Submitter delivers one correction to the downstream sheet endpoint.
type Submitter interface {
	Submit(ctx context.Context, entry domain.CorrectionEntry) error
}

// HTTPSubmitter posts corrections as JSON to a save endpoint.
type HTTPSubmitter struct {
	client *http.Client
	url    string
}

func NewHTTPSubmitter(url string, timeout time.Duration) *HTTPSubmitter {
	return &HTTPSubmitter{
		client: &http.Client{Timeout: timeout},
		url:    url,
	}
}

func (h *HTTPSubmitter) Submit(ctx context.Context, entry domain.CorrectionEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode correction: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build save request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("post correction: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("save endpoint returned %s", resp.Status)
	}
	return nil
}

// Options tunes the outbox drain behavior.
type Options struct {
	// DrainInterval is how often the background loop retries delivery.
	DrainInterval time.Duration
	// DeliveryDelay is the pause between consecutive successful
	// deliveries, keeping the downstream endpoint under its rate limits.
	DeliveryDelay time.Duration
}

// Outbox drains the durable store toward a Submitter: strictly oldest
// first, stopping at the first failure so later corrections never overtake
// a stuck one. Only one drain runs at a time; overlapping triggers collapse
// into the active pass.
type Outbox struct {
	store      *Store
	submitter  Submitter
	opts       Options
	kick       chan struct{}
	delivering atomic.Bool
}

func New(store *Store, submitter Submitter, opts Options) *Outbox {
	if opts.DrainInterval <= 0 {
		opts.DrainInterval = time.Minute
	}
	return &Outbox{
		store:     store,
		submitter: submitter,
		opts:      opts,
		kick:      make(chan struct{}, 1),
	}
}

// Enqueue durably persists the correction before returning. Delivery
// happens asynchronously; call Kick to start it immediately.
func (o *Outbox) Enqueue(entry domain.CorrectionEntry) error {
	_, err := o.store.Append(entry)
	return err
}

// Kick requests a drain pass without blocking. A pass already in flight
// absorbs the request.
func (o *Outbox) Kick() {
	select {
	case o.kick <- struct{}{}:
	default:
	}
}

// Depth returns the number of corrections awaiting delivery.
func (o *Outbox) Depth() int { return o.store.Depth() }

// Pending returns every queued correction, oldest first.
func (o *Outbox) Pending() []domain.CorrectionEntry { return o.store.Pending() }

// Delivering reports whether a drain pass is currently running.
func (o *Outbox) Delivering() bool { return o.delivering.Load() }

// Run drives the periodic drain until ctx is cancelled.
func (o *Outbox) Run(ctx context.Context) {
	ticker := time.NewTicker(o.opts.DrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.Drain(ctx)
		case <-o.kick:
			o.Drain(ctx)
		}
	}
}

// Drain delivers pending corrections oldest first until the queue empties,
// a delivery fails, or ctx is cancelled. Failed entries stay queued for the
// next pass.
func (o *Outbox) Drain(ctx context.Context) {
	if !o.delivering.CompareAndSwap(false, true) {
		return
	}
	defer o.delivering.Store(false)

	for {
		if ctx.Err() != nil {
			return
		}
		head, ok := o.store.Head()
		if !ok {
			return
		}

		if err := o.submitter.Submit(ctx, head.Entry); err != nil {
			logger.Log.Warn().
				Err(err).
				Uint64("seq", head.Seq).
				Str("document", head.Entry.DocumentNumber).
				Str("item", head.Entry.ItemCode).
				Int("depth", o.store.Depth()).
				Msg("correction delivery failed, will retry")
			return
		}
		if err := o.store.MarkDelivered(head.Seq); err != nil {
			logger.Log.Error().Err(err).Uint64("seq", head.Seq).Msg("failed to retire delivered correction")
			return
		}
		logger.Log.Info().
			Uint64("seq", head.Seq).
			Str("document", head.Entry.DocumentNumber).
			Str("item", head.Entry.ItemCode).
			Int("depth", o.store.Depth()).
			Msg("correction delivered")

		if o.opts.DeliveryDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(o.opts.DeliveryDelay):
			}
		}
	}
}
