package mcp

import (
	"context"
	"os"
	"time"

	"parallax/internal/logging"
)

// WatchParent cancels the server when the parent process goes away
// (the MCP client exited without closing stdin).
//
// It must not read stdin: the SDK's StdioTransport owns it.
func WatchParent(ctx context.Context, interval time.Duration, cancel context.CancelFunc) {
	watchParent(ctx, interval, cancel, os.Getppid)
}

func watchParent(ctx context.Context, interval time.Duration, cancel context.CancelFunc, getppid func() int) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ppid := getppid()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if getppid() != ppid {
					logging.New("mcp").Warn("parent process died, shutting down", "ppid", ppid)
					cancel()
					return
				}
			}
		}
	}()
}
