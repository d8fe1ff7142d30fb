// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package conflict

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/tickwatch/internal/config"
	"github.com/tomtom215/tickwatch/internal/logging"
	"github.com/tomtom215/tickwatch/internal/metrics"
	"github.com/tomtom215/tickwatch/internal/models"
	"github.com/tomtom215/tickwatch/internal/notify"
)

// Store is the conflict-state table surface. The engine is the table's
// only writer.
type Store interface {
	UpsertConflict(ctx context.Context, entry *models.ConflictEntry) error
	DeleteConflict(ctx context.Context, starSystem string) error
	ActiveConflicts(ctx context.Context) (map[string]*models.ConflictEntry, error)
}

// Journal supplies the tick-scoped audit rows for the full-scan path.
type Journal interface {
	JournalEventsForTick(ctx context.Context, tickID string) ([]models.JournalEvent, error)
}

// TickProvider reports the current tick for the immediate-detection
// path, which observes events without a tick announcement.
type TickProvider interface {
	Current() string
}

// CleanupScope controls what happens to prior entries absent from the
// current snapshot.
type CleanupScope int

const (
	// CleanupAll removes every absent prior entry; used by the
	// periodic full scan, which sees the whole journal for the tick.
	CleanupAll CleanupScope = iota

	// CleanupVisited removes an absent prior entry only when its
	// system was actually revisited in this batch with no tracked
	// conflict found. Systems simply not re-observed are left alone.
	CleanupVisited
)

// Engine diffs extracted conflict snapshots against persisted state and
// drives the conflict lifecycle: new, day scored, resolved, removed.
// One tick is processed to completion before the next is accepted.
type Engine struct {
	tracked  []string
	store    Store
	journal  Journal
	ticks    TickProvider
	notifier notify.Notifier
	cfg      *config.NotifyConfig
}

// NewEngine wires a diff engine.
func NewEngine(tracked []string, store Store, journal Journal, ticks TickProvider,
	notifier notify.Notifier, cfg *config.NotifyConfig) *Engine {
	return &Engine{
		tracked:  tracked,
		store:    store,
		journal:  journal,
		ticks:    ticks,
		notifier: notifier,
		cfg:      cfg,
	}
}

// ProcessTick runs the full-scan path: load the tick's journal rows,
// extract, diff with cleanup scope "all". Idempotent for unchanged
// input: re-running refreshes rows without re-firing new/day-scored
// notices.
func (e *Engine) ProcessTick(ctx context.Context, tickID string) error {
	start := time.Now()

	rows, err := e.journal.JournalEventsForTick(ctx, tickID)
	if err != nil {
		return fmt.Errorf("load journal for tick %s: %w", tickID, err)
	}

	snap := Extract(CandidatesFromJournal(rows), e.tracked)
	err = e.diff(ctx, tickID, snap, CleanupAll)

	metrics.RecordTickProcessed(time.Since(start))
	logging.Info().
		Str("tick_id", tickID).
		Int("journal_rows", len(rows)).
		Int("current_conflicts", len(snap.Entries)).
		Dur("elapsed", time.Since(start)).
		Msg("tick processed")
	return err
}

// ProcessEvents runs the immediate-detection path on freshly observed
// events with cleanup scope "visited-only".
func (e *Engine) ProcessEvents(ctx context.Context, tickID string, candidates []models.CandidateEvent) error {
	snap := Extract(candidates, e.tracked)
	if len(snap.Entries) == 0 && len(snap.Visited) == 0 {
		return nil
	}
	return e.diff(ctx, tickID, snap, CleanupVisited)
}

// ObserveEvents adapts ProcessEvents to the ingester's detector hook.
// Errors are logged; immediate detection is advisory, the next full
// scan reconciles.
func (e *Engine) ObserveEvents(ctx context.Context, candidates []models.CandidateEvent) {
	if err := e.ProcessEvents(ctx, e.ticks.Current(), candidates); err != nil {
		logging.Warn().Err(err).Msg("immediate conflict detection failed")
	}
}

// diff applies the four-state lifecycle per system, then cleans up
// absent prior entries per scope. Individual statement or notification
// failures affect only their own system.
func (e *Engine) diff(ctx context.Context, tickID string, snap *Snapshot, scope CleanupScope) error {
	prior, err := e.store.ActiveConflicts(ctx)
	if err != nil {
		return fmt.Errorf("load prior conflict state: %w", err)
	}
	active := len(prior)

	now := time.Now().UTC()
	var firstErr error
	saveErr := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	for system, entry := range snap.Entries {
		entry.LastTickID = tickID
		entry.UpdatedAt = now
		p := prior[system]

		switch {
		case entry.Decided():
			// Resolution wins over every other transition, prior or not.
			if err := e.store.DeleteConflict(ctx, system); err != nil {
				saveErr(fmt.Errorf("delete resolved conflict %s: %w", system, err))
				continue
			}
			if p != nil {
				active--
			}
			metrics.RecordConflictTransition("resolved")
			e.notify(ctx, e.cfg.ResolvedURL, e.resolvedText(entry))

		case p == nil:
			if err := e.store.UpsertConflict(ctx, entry); err != nil {
				saveErr(fmt.Errorf("persist new conflict %s: %w", system, err))
				continue
			}
			active++
			metrics.RecordConflictTransition("new")
			e.notify(ctx, e.cfg.NewConflictURL, e.newConflictText(entry))

		case entry.ScoreChangedFrom(p):
			if err := e.store.UpsertConflict(ctx, entry); err != nil {
				saveErr(fmt.Errorf("persist scored conflict %s: %w", system, err))
				continue
			}
			metrics.RecordConflictTransition("day_scored")
			e.notify(ctx, e.cfg.DayScoredURL, e.dayScoredText(entry, p))

		default:
			if err := e.store.UpsertConflict(ctx, entry); err != nil {
				saveErr(fmt.Errorf("refresh conflict %s: %w", system, err))
				continue
			}
			metrics.RecordConflictTransition("refreshed")
		}
	}

	for system, p := range prior {
		if _, present := snap.Entries[system]; present {
			continue
		}
		if scope == CleanupVisited {
			if _, visited := snap.Visited[system]; !visited {
				continue
			}
		}

		if err := e.store.DeleteConflict(ctx, system); err != nil {
			saveErr(fmt.Errorf("remove stale conflict %s: %w", system, err))
			continue
		}
		active--
		metrics.RecordConflictTransition("removed")
		e.notify(ctx, e.cfg.DiagnosticURL, e.removedText(p, tickID))
	}

	metrics.SetConflictsActive(active)
	return firstErr
}

func (e *Engine) notify(ctx context.Context, endpoint, text string) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(ctx, endpoint, text)
}
