package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// eventRecord mirrors otel.Event for decoding. Decoding into a local type
// keeps old logs readable when the event schema changes.
type eventRecord struct {
	Time    time.Time      `json:"t"`
	Level   string         `json:"level"`
	Kind    string         `json:"kind"`
	Comp    string         `json:"comp"`
	RunID   string         `json:"run"`
	SID     string         `json:"sid"`
	PlaceID string         `json:"place_id"`
	DurMs   float64        `json:"dur_ms"`
	Count   int            `json:"count"`
	Query   string         `json:"query"`
	Status  int            `json:"status"`
	Err     string         `json:"err"`
	Msg     string         `json:"msg"`
	Extra   map[string]any `json:"extra"`
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level string) int {
	switch level {
	case "info":
		return 1
	case "warn":
		return 2
	case "error":
		return 3
	default:
		return 0
	}
}

type eventFilter struct {
	kind  string
	level string
	comp  string
	sid   string
}

func (f eventFilter) match(ev eventRecord) bool {
	if f.kind != "" && !strings.HasPrefix(ev.Kind, f.kind) {
		return false
	}
	if f.level != "" && levelRank(ev.Level) < levelRank(f.level) {
		return false
	}
	if f.comp != "" && ev.Comp != f.comp {
		return false
	}
	if f.sid != "" && !strings.HasPrefix(ev.SID, f.sid) {
		return false
	}
	return true
}

func newEventsCmd(c *cli) *cobra.Command {
	var (
		filter  eventFilter
		tail    int
		follow  bool
		rawJSON bool
		path    string
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the JSONL event log",
		Long: `Print recent events from the TUI's event log, optionally filtered.

Examples:
  dt events --tail 20
  dt events --kind session --sid 3f2a
  dt events --level warn -f`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				p, err := c.cfg.EventLogPath()
				if err != nil {
					return err
				}
				path = p
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("event log not found at %s (run dishtip first): %w", path, err)
			}
			defer f.Close()

			w := cmd.OutOrStdout()
			for _, l := range readTailLines(f, tail, filter.match) {
				fmt.Fprintln(w, formatEvent(l.ev, l.raw, rawJSON))
			}
			if !follow {
				return nil
			}

			reader := bufio.NewReader(f)
			ctx := cmd.Context()
			for {
				line, err := reader.ReadBytes('\n')
				if err == io.EOF {
					select {
					case <-ctx.Done():
						return nil
					case <-time.After(100 * time.Millisecond):
					}
					continue
				}
				if err != nil {
					return err
				}
				line = trimLine(line)
				var ev eventRecord
				if len(line) == 0 || json.Unmarshal(line, &ev) != nil {
					continue
				}
				if filter.match(ev) {
					fmt.Fprintln(w, formatEvent(ev, line, rawJSON))
				}
			}
		},
	}
	cmd.Flags().IntVar(&tail, "tail", 50, "number of recent matching events to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep reading new events")
	cmd.Flags().StringVar(&filter.kind, "kind", "", "event kind prefix (e.g. 'session')")
	cmd.Flags().StringVar(&filter.level, "level", "", "minimum level: debug, info, warn, error")
	cmd.Flags().StringVar(&filter.comp, "comp", "", "component name")
	cmd.Flags().StringVar(&filter.sid, "sid", "", "session token prefix")
	cmd.Flags().BoolVar(&rawJSON, "json", false, "print raw JSON lines")
	cmd.Flags().StringVar(&path, "file", "", "event log path (default from config)")
	return cmd
}

func formatEvent(ev eventRecord, raw []byte, rawJSON bool) string {
	if rawJSON {
		return string(raw)
	}
	lvl := strings.ToUpper(ev.Level)
	if lvl == "" {
		lvl = "?"
	}

	parts := []string{fmt.Sprintf("%s %-5s [%-9s] %-20s", ev.Time.Format("15:04:05.000"), lvl, ev.Comp, ev.Kind)}
	if ev.Msg != "" {
		parts = append(parts, "- "+ev.Msg)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.PlaceID != "" {
		parts = append(parts, "place="+ev.PlaceID)
	}
	if ev.Query != "" {
		parts = append(parts, fmt.Sprintf("q=%q", ev.Query))
	}
	if ev.SID != "" {
		sid := ev.SID
		if len(sid) > 8 {
			sid = sid[:8]
		}
		parts = append(parts, "sid="+sid)
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}
	return strings.Join(parts, " ")
}

type parsedLine struct {
	ev  eventRecord
	raw []byte
}

// readTailLines returns the last n lines of r that decode and match.
func readTailLines(r io.Reader, n int, match func(eventRecord) bool) []parsedLine {
	if n <= 0 {
		return nil
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	ring := make([]parsedLine, 0, n)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(raw, &ev) != nil || !match(ev) {
			continue
		}
		// scanner reuses its buffer
		line := parsedLine{ev: ev, raw: append([]byte(nil), raw...)}
		if len(ring) < n {
			ring = append(ring, line)
		} else {
			copy(ring, ring[1:])
			ring[n-1] = line
		}
	}
	return ring
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}
