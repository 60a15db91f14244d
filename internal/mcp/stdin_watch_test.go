package mcp

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatchParent_CancelsWhenParentChanges(t *testing.T) {
	var ppid atomic.Int32
	ppid.Store(100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchParent(ctx, 5*time.Millisecond, cancel, func() int { return int(ppid.Load()) })
	ppid.Store(1)

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("watchdog did not cancel after parent change")
	}
}

func TestWatchParent_StopsWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	fired := false

	watchParent(ctx, 5*time.Millisecond, func() { fired = true }, func() int {
		calls.Add(1)
		return 42
	})
	cancel()
	time.Sleep(30 * time.Millisecond)
	n := calls.Load()
	time.Sleep(30 * time.Millisecond)

	if calls.Load() != n {
		t.Error("watchdog kept polling after context cancel")
	}
	if fired {
		t.Error("watchdog should not cancel while parent is alive")
	}
}
