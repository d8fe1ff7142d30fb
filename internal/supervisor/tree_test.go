// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package supervisor

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type countingService struct {
	serves atomic.Int64
}

func (s *countingService) Serve(ctx context.Context) error {
	s.serves.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func TestTreeServesAllLayers(t *testing.T) {
	tree := NewTree(slog.Default(), DefaultTreeConfig())

	ingest := &countingService{}
	conflict := &countingService{}
	api := &countingService{}
	tree.AddIngestService(ingest)
	tree.AddConflictService(conflict)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(5 * time.Second)
	for ingest.serves.Load() == 0 || conflict.serves.Load() == 0 || api.serves.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("services not started: ingest=%d conflict=%d api=%d",
				ingest.serves.Load(), conflict.serves.Load(), api.serves.Load())
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop after cancel")
	}
}

func TestTreeConfigDefaults(t *testing.T) {
	tree := NewTree(slog.Default(), TreeConfig{})
	if tree.config.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %v, want 5.0", tree.config.FailureThreshold)
	}
	if tree.config.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", tree.config.ShutdownTimeout)
	}
}
