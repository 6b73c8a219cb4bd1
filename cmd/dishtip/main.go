// Command dishtip is the DishTip terminal UI: search a restaurant, pick it,
// and browse the dishes its reviews recommend.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/dishtip/internal/app"
	"github.com/abelbrown/dishtip/internal/config"
	"github.com/abelbrown/dishtip/internal/logging"
	"github.com/abelbrown/dishtip/internal/otel"
	"github.com/abelbrown/dishtip/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.dishtip/config.yaml)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "dishtip: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Trace {
		otel.SetTraceEnabled(true)
	}

	logDir, err := cfg.LogDir()
	if err != nil {
		return err
	}
	logPath, err := logging.Init(logDir, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logging.Close()

	// Event log: JSONL on disk plus the in-memory ring for the debug overlay.
	events := otel.NewNullLogger()
	if cfg.Log.EventLog {
		path, err := cfg.EventLogPath()
		if err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open event log: %w", err)
		}
		defer f.Close()
		events = otel.NewLogger(f)
	}
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	events.SetRingBuffer(ring)
	defer events.Close()

	deps, err := app.Build(cfg, events)
	if err != nil {
		return err
	}

	logging.Info("starting",
		"backend", deps.Backend.BaseURL(),
		"autocomplete", deps.Places.Enabled(),
		"log", logPath,
	)
	events.Emit(otel.Event{
		Level: otel.LevelInfo, Kind: otel.KindStartup, Comp: "main",
		Msg: deps.Backend.BaseURL(),
	})

	program := tea.NewProgram(ui.NewApp(deps.UIConfig(ring)), tea.WithAltScreen())
	_, runErr := program.Run()

	events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindShutdown, Comp: "main"})
	if runErr != nil {
		logging.Error("program exited", "err", runErr)
		return runErr
	}
	logging.Info("stopped", "breaker", deps.Backend.BreakerState())
	return nil
}
