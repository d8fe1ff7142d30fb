// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/tickwatch/internal/cache"
	"github.com/tomtom215/tickwatch/internal/config"
	"github.com/tomtom215/tickwatch/internal/database"
	"github.com/tomtom215/tickwatch/internal/logging"
	"github.com/tomtom215/tickwatch/internal/metrics"
	"github.com/tomtom215/tickwatch/internal/models"
)

// BatchExecutor is the datastore surface the ingester writes through.
// *database.DB satisfies it; tests substitute a fake.
type BatchExecutor interface {
	ExecBatch(ctx context.Context, stmts []database.Statement) error
	PurgeJournal(ctx context.Context, cutoff time.Time) (int64, error)
}

// TickProvider reports the tick id journal rows should be stamped with.
type TickProvider interface {
	Current() string
}

// Detector receives the candidates of each committed batch for immediate
// conflict detection. Optional; nil disables the immediate path.
type Detector interface {
	ObserveEvents(ctx context.Context, candidates []models.CandidateEvent)
}

// Ingester owns the long-lived feed subscription: receive, decode,
// batch, commit, and the periodic journal retention sweep. A failed
// batch commit drops the batch; a broken subscription reconnects after
// the retry delay. Nothing here is ever fatal to the process.
type Ingester struct {
	cfg      *config.FeedConfig
	source   Source
	store    BatchExecutor
	ticks    TickProvider
	detector Detector
	dedupe   *cache.DedupeCache

	batch      []database.Statement
	candidates []models.CandidateEvent
	batched    int
	lastSweep  time.Time
}

// NewIngester wires an ingester. detector may be nil.
func NewIngester(cfg *config.FeedConfig, source Source, store BatchExecutor,
	ticks TickProvider, detector Detector) *Ingester {
	ing := &Ingester{
		cfg:      cfg,
		source:   source,
		store:    store,
		ticks:    ticks,
		detector: detector,
	}
	if cfg.DedupeEnabled {
		ing.dedupe = cache.NewDedupeCache(cfg.DedupeMaxEntries, cfg.DedupeWindow)
	}
	return ing
}

// Run consumes the feed until ctx is cancelled. Always returns nil on
// cancellation; connection errors are retried internally.
func (ing *Ingester) Run(ctx context.Context) error {
	ing.lastSweep = time.Now()

	for {
		if err := ing.source.Connect(); err != nil {
			logging.Warn().Err(err).
				Dur("retry_delay", ing.cfg.RetryDelay).
				Msg("feed connect failed, retrying")
			metrics.RecordFeedReconnect()
			if !sleepCtx(ctx, ing.cfg.RetryDelay) {
				return nil
			}
			continue
		}
		logging.Info().Str("url", ing.cfg.URL).Msg("feed connected")

		err := ing.consume(ctx)
		ing.closeSource()
		if ctx.Err() != nil {
			return nil
		}

		logging.Warn().Err(err).
			Dur("retry_delay", ing.cfg.RetryDelay).
			Msg("feed subscription lost, reconnecting")
		metrics.RecordFeedReconnect()
		if !sleepCtx(ctx, ing.cfg.RetryDelay) {
			return nil
		}
	}
}

// consume runs the receive loop until the subscription breaks or ctx is
// cancelled.
func (ing *Ingester) consume(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			ing.flush(context.WithoutCancel(ctx))
			return ctx.Err()
		}

		raw, err := ing.source.Receive()
		switch {
		case err == nil:
		case errors.Is(err, ErrRecvTimeout):
			// Idle feed: commit what we have rather than let a partial
			// batch go stale, then check the sweep clock.
			ing.flush(ctx)
			ing.maybeSweep(ctx)
			continue
		default:
			ing.flush(context.WithoutCancel(ctx))
			return fmt.Errorf("feed receive: %w", err)
		}

		ing.handle(ctx, raw)
		ing.maybeSweep(ctx)
	}
}

// handle decodes one raw message into the pending batch and commits the
// batch once it reaches the size threshold.
func (ing *Ingester) handle(ctx context.Context, raw []byte) {
	metrics.RecordFeedMessage()

	decoded, err := Decode(raw, ing.ticks.Current(), time.Now().UTC())
	if err != nil {
		logging.Debug().Err(err).Msg("skipping undecodable feed message")
		metrics.RecordFeedDecodeFailure()
		return
	}
	if decoded == nil {
		return
	}

	if ing.dedupe != nil && ing.dedupe.IsDuplicate(dedupeKey(&decoded.Candidate)) {
		metrics.RecordFeedDuplicate()
		return
	}

	metrics.RecordFeedDecoded()
	ing.batch = append(ing.batch, decoded.Statements...)
	ing.candidates = append(ing.candidates, decoded.Candidate)
	ing.batched++

	if ing.batched >= ing.cfg.BatchSize {
		ing.flush(ctx)
	}
}

// flush commits the pending batch. A failed commit drops the batch with
// a warning; ingestion never blocks on a bad write.
func (ing *Ingester) flush(ctx context.Context) {
	if ing.batched == 0 {
		return
	}

	batch, candidates, count := ing.batch, ing.candidates, ing.batched
	ing.batch = nil
	ing.candidates = nil
	ing.batched = 0

	if err := ing.store.ExecBatch(ctx, batch); err != nil {
		logging.Warn().Err(err).
			Int("messages", count).
			Int("statements", len(batch)).
			Msg("dropping feed batch after failed commit")
		return
	}

	logging.Debug().
		Int("messages", count).
		Int("statements", len(batch)).
		Msg("committed feed batch")

	if ing.detector != nil {
		ing.detector.ObserveEvents(ctx, candidates)
	}
}

// maybeSweep purges journal rows older than the retention window once
// per sweep interval.
func (ing *Ingester) maybeSweep(ctx context.Context) {
	if time.Since(ing.lastSweep) < ing.cfg.SweepInterval {
		return
	}
	ing.lastSweep = time.Now()

	cutoff := time.Now().UTC().Add(-ing.cfg.RetentionWindow)
	purged, err := ing.store.PurgeJournal(ctx, cutoff)
	if err != nil {
		logging.Warn().Err(err).Msg("journal retention sweep failed")
		return
	}
	logging.Info().
		Int64("rows", purged).
		Time("cutoff", cutoff).
		Msg("journal retention sweep completed")
}

func (ing *Ingester) closeSource() {
	if err := ing.source.Close(); err != nil {
		logging.Debug().Err(err).Msg("feed source close failed")
	}
}

// dedupeKey identifies a message by what it claims to describe. Relays
// re-deliver identical payloads; two uploads for the same system at the
// same event time are interchangeable.
func dedupeKey(c *models.CandidateEvent) string {
	return c.EventKind + "|" + c.StarSystem + "|" + c.Timestamp.UTC().Format(time.RFC3339)
}

// sleepCtx sleeps for d, returning false if ctx was cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
