// Command dt is the DishTip command line: look up recommendations without
// the TUI, query autocomplete, run the mock backend and read the event log.
//
// Usage:
//
//	dt lookup <place-id>      Recommendations for one place
//	dt places <query>         Autocomplete suggestions
//	dt serve-mock             Fixture backend for local development
//	dt events                 JSONL event log viewer
//	dt version                Build information
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "dt: %v\n", err)
		os.Exit(1)
	}
}
