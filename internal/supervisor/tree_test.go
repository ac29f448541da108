// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

package supervisor

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type startedService struct {
	started int32
}

func (s *startedService) Serve(ctx context.Context) error {
	atomic.StoreInt32(&s.started, 1)
	<-ctx.Done()
	return ctx.Err()
}

func (s *startedService) String() string { return "started-service" }

func nopSlog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultTreeConfig(t *testing.T) {
	cfg := DefaultTreeConfig()
	if cfg.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %v", cfg.FailureThreshold)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
}

func TestTreeRunsServicesInAllLayers(t *testing.T) {
	tree := NewTree(nopSlog(), DefaultTreeConfig())

	pipeline := &startedService{}
	publish := &startedService{}
	api := &startedService{}
	tree.AddPipelineService(pipeline)
	tree.AddPublishService(publish)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&pipeline.started) == 0 ||
		atomic.LoadInt32(&publish.started) == 0 ||
		atomic.LoadInt32(&api.started) == 0 {
		select {
		case <-deadline:
			t.Fatal("services did not start")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop after cancellation")
	}
}

func TestTreeZeroConfigGetsDefaults(t *testing.T) {
	tree := NewTree(nopSlog(), TreeConfig{})
	if tree.config.FailureThreshold != 5.0 {
		t.Errorf("zero config should default threshold, got %v", tree.config.FailureThreshold)
	}
	if tree.config.ShutdownTimeout != 10*time.Second {
		t.Errorf("zero config should default timeout, got %v", tree.config.ShutdownTimeout)
	}
}
