package main

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/abelbrown/dishtip/internal/app"
	"github.com/abelbrown/dishtip/internal/logging"
	"github.com/abelbrown/dishtip/internal/model"
	"github.com/abelbrown/dishtip/internal/session"
)

type lookupOutput struct {
	PlaceID string       `json:"place_id"`
	Name    string       `json:"name"`
	Address string       `json:"address,omitempty"`
	Website string       `json:"website,omitempty"`
	Maps    string       `json:"maps,omitempty"`
	Total   int          `json:"total"`
	Dishes  []dishOutput `json:"dishes"`
}

type dishOutput struct {
	Rank       int      `json:"rank"`
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	Author     string   `json:"author"`
	Source     string   `json:"source"`
	When       string   `json:"when,omitempty"`
	ReviewLink string   `json:"review_link,omitempty"`
	Timestamp  *float64 `json:"timestamp,omitempty"`
}

func newLookupCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <place-id>",
		Short: "Show recommended dishes for a place",
		Long: `Fetch restaurant info and recommendations for one Google place id and
print them the way the TUI shows them: five at a time, each with a label.

Examples:
  dt lookup abc123             # first five dishes
  dt lookup abc123 --all       # every dish
  dt lookup abc123 --json      # machine-readable`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			jsonOutput, _ := cmd.Flags().GetBool("json")
			seed, _ := cmd.Flags().GetInt64("seed")
			return c.runLookup(cmd, strings.TrimSpace(args[0]), all, jsonOutput, seed)
		},
	}
	cmd.Flags().Bool("all", false, "show every dish instead of the first page")
	cmd.Flags().Bool("json", false, "output as JSON")
	cmd.Flags().Int64("seed", 0, "label seed for reproducible output (0 = random)")
	return cmd
}

func (c *cli) runLookup(cmd *cobra.Command, placeID string, all, jsonOutput bool, seed int64) error {
	if placeID == "" {
		return errors.New("place id is empty")
	}

	deps, err := app.Build(c.cfg, nil)
	if err != nil {
		return err
	}

	var rng *rand.Rand
	if seed != 0 {
		rng = rand.New(rand.NewSource(seed))
	}
	s := deps.NewSession(rng)
	tok, _ := s.SelectPlace(model.Place{ID: placeID, DisplayName: placeID})

	res := deps.Orchestrator.Retrieve(cmd.Context(), string(tok), placeID)
	if res.InfoErr != nil {
		logging.Debug("restaurant info unavailable", "err", res.InfoErr)
	}
	if res.Info != nil {
		s.InfoReceived(tok, res.Info)
	}
	if !res.OK() {
		s.RetrievalFailed(tok, res.Err)
		return fmt.Errorf("could not load recommendations: %w", res.Err)
	}
	s.RetrievalSucceeded(tok, res.Dishes)
	if all {
		for s.RevealMore() {
		}
	}

	out := toLookupOutput(placeID, s.Snapshot())
	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return printLookup(cmd.OutOrStdout(), out, all)
}

func toLookupOutput(placeID string, snap session.Snapshot) lookupOutput {
	out := lookupOutput{
		PlaceID: placeID,
		Name:    snap.Title(),
		Address: snap.Address(),
		Total:   snap.Total,
		Dishes:  make([]dishOutput, 0, len(snap.Visible)),
	}
	if snap.Info != nil {
		out.Website = snap.Info.WebsiteURL
		out.Maps = snap.Info.MapsURL
	}
	for _, d := range snap.Visible {
		out.Dishes = append(out.Dishes, dishOutput{
			Rank:       d.Rank,
			Name:       d.Name,
			Label:      d.Label,
			Author:     d.Author,
			Source:     d.Source,
			When:       d.RelativeTime,
			ReviewLink: d.Dish.ReviewLink,
			Timestamp:  d.Dish.Timestamp,
		})
	}
	return out
}

func printLookup(w io.Writer, out lookupOutput, all bool) error {
	fmt.Fprintf(w, "Top Dishes at %s\n", out.Name)
	if out.Address != "" {
		fmt.Fprintln(w, out.Address)
	}
	for _, link := range []string{out.Website, out.Maps} {
		if link != "" {
			fmt.Fprintln(w, link)
		}
	}
	fmt.Fprintln(w)

	if out.Total == 0 {
		fmt.Fprintln(w, "No dish mentions found in recent reviews.")
		return nil
	}

	rows := make([][]string, 0, len(out.Dishes))
	for _, d := range out.Dishes {
		rows = append(rows, []string{
			humanize.Ordinal(d.Rank),
			d.Name,
			d.Label,
			d.Author,
			d.Source,
			d.When,
		})
	}
	if err := renderTable(w, []string{"Rank", "Dish", "Label", "Recommended by", "Via", "When"}, rows); err != nil {
		return err
	}

	fmt.Fprintln(w)
	footer := fmt.Sprintf("Showing %d of %d", len(out.Dishes), out.Total)
	if !all && len(out.Dishes) < out.Total {
		footer += " (--all for more)"
	}
	fmt.Fprintln(w, footer)
	return nil
}
