package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/abelbrown/dishtip/internal/mockbackend"
)

func newServeMockCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-mock",
		Short: "Serve the backend API from fixtures",
		Long: `Run a local stand-in for the recommendation backend. Built-in fixtures
cover a one-dish place (abc123), an empty place (empty001) and a place with
twelve dishes (twelve12). Point the TUI at it with DISHTIP_BACKEND_URL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			fixturesPath, _ := cmd.Flags().GetString("fixtures")
			return serveMock(cmd.Context(), cmd, addr, fixturesPath)
		},
	}
	cmd.Flags().String("addr", "127.0.0.1:8000", "listen address")
	cmd.Flags().String("fixtures", "", "fixture JSON file (default built-in)")
	return cmd
}

func serveMock(ctx context.Context, cmd *cobra.Command, addr, fixturesPath string) error {
	fixtures := mockbackend.DefaultFixtures()
	if fixturesPath != "" {
		f, err := os.Open(fixturesPath)
		if err != nil {
			return err
		}
		fixtures, err = mockbackend.LoadFixtures(f)
		f.Close()
		if err != nil {
			return err
		}
	}

	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Prefix:          "mock",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	handler := mockbackend.New(fixtures, logger)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	logger.Info("serving", "addr", "http://"+ln.Addr().String(), "places", handler.PlaceIDs())

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
