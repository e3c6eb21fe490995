package events

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/tokendash/internal/log"
	"github.com/Mohsinsiddi/tokendash/internal/token"
)

// maxBlockSpan bounds one eth_getLogs range; public RPCs reject wider ones.
const maxBlockSpan = 2000

// Status reports the watcher's progress.
type Status struct {
	Block    uint64
	Fetching bool
	Err      error
}

// Watcher polls for new token events from the head at start time onwards.
// Blocks before the start are never replayed.
type Watcher struct {
	src      LogSource
	tokens   []token.Token
	interval time.Duration
}

// NewWatcher creates a watcher for tokens polling every interval.
func NewWatcher(src LogSource, tokens []token.Token, interval time.Duration) *Watcher {
	return &Watcher{src: src, tokens: tokens, interval: interval}
}

// Run polls until ctx is cancelled. onEvents receives each non-empty batch
// in chain order; onStatus may be nil. A failed poll is reported and
// retried from the same block on the next tick.
func (w *Watcher) Run(ctx context.Context, onEvents func([]Event), onStatus func(Status)) error {
	if onStatus == nil {
		onStatus = func(Status) {}
	}

	head, err := w.src.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("could not get starting block: %w", err)
	}
	next := head + 1
	onStatus(Status{Block: head})
	log.Debug("watching events", "from", next, "tokens", len(w.tokens), "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		next = w.poll(ctx, next, onEvents, onStatus)
	}
}

// poll fetches [next, latest] in bounded chunks and returns the next block
// still to fetch.
func (w *Watcher) poll(ctx context.Context, next uint64, onEvents func([]Event), onStatus func(Status)) uint64 {
	latest, err := w.src.BlockNumber(ctx)
	if err != nil {
		onStatus(Status{Block: next - 1, Err: err})
		return next
	}
	for from := next; from <= latest; from += maxBlockSpan {
		to := min(from+maxBlockSpan-1, latest)
		onStatus(Status{Block: to, Fetching: true})

		evs, err := History(ctx, w.src, w.tokens, from, to)
		if err != nil {
			log.Warn("event poll failed", "from", from, "to", to, "err", err)
			onStatus(Status{Block: from - 1, Err: err})
			return from
		}
		if len(evs) > 0 {
			log.Debug("events received", "count", len(evs), "to", to)
			onEvents(evs)
		}
		next = to + 1
	}
	onStatus(Status{Block: next - 1})
	return next
}
