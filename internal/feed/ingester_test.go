// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/tickwatch/internal/config"
	"github.com/tomtom215/tickwatch/internal/database"
	"github.com/tomtom215/tickwatch/internal/models"
)

// fakeSource replays a scripted sequence of frames and errors.
type fakeSource struct {
	mu     sync.Mutex
	frames [][]byte
	final  error

	connects int
	closed   int
}

func (s *fakeSource) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connects++
	return nil
}

func (s *fakeSource) Receive() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		if s.final != nil {
			return nil, s.final
		}
		return nil, ErrRecvTimeout
	}
	frame := s.frames[0]
	s.frames = s.frames[1:]
	return frame, nil
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

// fakeStore records committed batches and purge calls.
type fakeStore struct {
	mu       sync.Mutex
	batches  [][]database.Statement
	execErr  error
	purges   []time.Time
	purgeErr error
}

func (s *fakeStore) ExecBatch(_ context.Context, stmts []database.Statement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.execErr != nil {
		return s.execErr
	}
	s.batches = append(s.batches, stmts)
	return nil
}

func (s *fakeStore) PurgeJournal(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.purgeErr != nil {
		return 0, s.purgeErr
	}
	s.purges = append(s.purges, cutoff)
	return 3, nil
}

func (s *fakeStore) batchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

type fakeTicks struct{ id string }

func (t *fakeTicks) Current() string { return t.id }

type fakeDetector struct {
	mu      sync.Mutex
	batches [][]models.CandidateEvent
}

func (d *fakeDetector) ObserveEvents(_ context.Context, candidates []models.CandidateEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.batches = append(d.batches, candidates)
}

func testFeedConfig() *config.FeedConfig {
	return &config.FeedConfig{
		Transport:        "zmq",
		URL:              "tcp://test:9500",
		RecvTimeout:      time.Second,
		BatchSize:        2,
		RetryDelay:       time.Millisecond,
		RetentionWindow:  24 * time.Hour,
		SweepInterval:    time.Hour,
		DedupeEnabled:    false,
		DedupeMaxEntries: 100,
		DedupeWindow:     time.Minute,
	}
}

func TestIngesterBatching(t *testing.T) {
	cfg := testFeedConfig()
	store := &fakeStore{}
	detector := &fakeDetector{}
	ing := NewIngester(cfg, &fakeSource{}, store, &fakeTicks{id: "tick-1"}, detector)

	ctx := context.Background()

	// One message below the threshold: nothing committed yet.
	ing.handle(ctx, compress(t, jumpMessage))
	if got := store.batchCount(); got != 0 {
		t.Fatalf("batches after 1 message = %d, want 0", got)
	}

	// Second message reaches BatchSize=2 and commits.
	ing.handle(ctx, compress(t, jumpMessage))
	if got := store.batchCount(); got != 1 {
		t.Fatalf("batches after 2 messages = %d, want 1", got)
	}

	// 9 statements per decoded message.
	if got := len(store.batches[0]); got != 18 {
		t.Errorf("statements in batch = %d, want 18", got)
	}

	// Detector saw both candidates.
	detector.mu.Lock()
	defer detector.mu.Unlock()
	if len(detector.batches) != 1 || len(detector.batches[0]) != 2 {
		t.Errorf("detector batches = %+v, want one batch of 2 candidates", detector.batches)
	}
}

func TestIngesterSkipsBadMessages(t *testing.T) {
	cfg := testFeedConfig()
	cfg.BatchSize = 1
	store := &fakeStore{}
	ing := NewIngester(cfg, &fakeSource{}, store, &fakeTicks{id: "tick-1"}, nil)

	ctx := context.Background()

	ing.handle(ctx, []byte("garbage"))
	ing.handle(ctx, compress(t, `{"header":{},"message":{"event":"Docked","StarSystem":"Sol"}}`))
	if got := store.batchCount(); got != 0 {
		t.Fatalf("batches after bad messages = %d, want 0", got)
	}

	ing.handle(ctx, compress(t, jumpMessage))
	if got := store.batchCount(); got != 1 {
		t.Fatalf("batches after good message = %d, want 1", got)
	}
}

func TestIngesterDropsFailedBatch(t *testing.T) {
	cfg := testFeedConfig()
	cfg.BatchSize = 1
	store := &fakeStore{execErr: errors.New("disk on fire")}
	detector := &fakeDetector{}
	ing := NewIngester(cfg, &fakeSource{}, store, &fakeTicks{id: "tick-1"}, detector)

	ctx := context.Background()
	ing.handle(ctx, compress(t, jumpMessage))

	// Batch dropped: pending state is empty and the detector saw nothing.
	if ing.batched != 0 || len(ing.batch) != 0 {
		t.Errorf("pending batch not cleared after failed commit")
	}
	detector.mu.Lock()
	if len(detector.batches) != 0 {
		t.Errorf("detector notified despite failed commit")
	}
	detector.mu.Unlock()

	// Next commit succeeds independently.
	store.mu.Lock()
	store.execErr = nil
	store.mu.Unlock()
	ing.handle(ctx, compress(t, jumpMessage))
	if got := store.batchCount(); got != 1 {
		t.Errorf("batches after recovery = %d, want 1", got)
	}
}

func TestIngesterDedupe(t *testing.T) {
	cfg := testFeedConfig()
	cfg.BatchSize = 1
	cfg.DedupeEnabled = true
	store := &fakeStore{}
	ing := NewIngester(cfg, &fakeSource{}, store, &fakeTicks{id: "tick-1"}, nil)

	ctx := context.Background()
	ing.handle(ctx, compress(t, jumpMessage))
	ing.handle(ctx, compress(t, jumpMessage)) // same system, same event time
	if got := store.batchCount(); got != 1 {
		t.Errorf("batches with dedupe = %d, want 1", got)
	}
}

func TestIngesterRetentionSweep(t *testing.T) {
	cfg := testFeedConfig()
	cfg.SweepInterval = time.Millisecond
	store := &fakeStore{}
	ing := NewIngester(cfg, &fakeSource{}, store, &fakeTicks{id: "tick-1"}, nil)

	ing.lastSweep = time.Now().Add(-time.Second)
	ing.maybeSweep(context.Background())

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.purges) != 1 {
		t.Fatalf("purges = %d, want 1", len(store.purges))
	}
	wantCutoff := time.Now().UTC().Add(-cfg.RetentionWindow)
	if diff := store.purges[0].Sub(wantCutoff); diff < -time.Minute || diff > time.Minute {
		t.Errorf("purge cutoff = %v, want about %v", store.purges[0], wantCutoff)
	}
}

func TestIngesterRunStopsOnCancel(t *testing.T) {
	cfg := testFeedConfig()
	source := &fakeSource{frames: [][]byte{compress(t, jumpMessage)}}
	store := &fakeStore{}
	ing := NewIngester(cfg, source, store, &fakeTicks{id: "tick-1"}, nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- ing.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v on cancel, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	// The partial batch was flushed on shutdown.
	if got := store.batchCount(); got != 1 {
		t.Errorf("batches after shutdown = %d, want 1", got)
	}
}

func TestIngesterReconnects(t *testing.T) {
	cfg := testFeedConfig()
	source := &fakeSource{final: errors.New("socket closed")}
	store := &fakeStore{}
	ing := NewIngester(cfg, source, store, &fakeTicks{id: "tick-1"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ing.Run(ctx) }()

	// Wait for at least two connect attempts.
	deadline := time.Now().Add(5 * time.Second)
	for {
		source.mu.Lock()
		connects := source.connects
		source.mu.Unlock()
		if connects >= 2 {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("ingester never reconnected")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
