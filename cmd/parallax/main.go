// parallax runs the sectioning and voting parallelization patterns against a
// local Ollama server.
//
// Usage:
//
//	parallax newsletter "Large Language Models" [--raw]
//	parallax sentiment "I love this release" [--tie-break=priority]
//	parallax check
//	parallax serve
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
