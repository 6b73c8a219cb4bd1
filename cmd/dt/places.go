package main

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/abelbrown/dishtip/internal/places"
)

func newPlacesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "places <query>",
		Short: "List autocomplete suggestions",
		Long: `Query Google Places autocomplete for restaurants, cafés, bakeries and
bars. Requires GOOGLE_API_KEY (or places.api_key in the config file).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput, _ := cmd.Flags().GetBool("json")

			pc := places.New(places.Options{
				APIKey:   c.cfg.Places.APIKey,
				Region:   c.cfg.Places.Region,
				Endpoint: c.cfg.Places.Endpoint,
			})
			if !pc.Enabled() {
				return errors.New("autocomplete needs GOOGLE_API_KEY")
			}

			query := strings.Join(args, " ")
			found, err := pc.Autocomplete(cmd.Context(), query)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(found)
			}
			if len(found) == 0 {
				fmt.Fprintln(w, "No places found.")
				return nil
			}
			rows := make([][]string, 0, len(found))
			for _, p := range found {
				rows = append(rows, []string{p.ID, p.DisplayName, p.FormattedAddress})
			}
			return renderTable(w, []string{"Place ID", "Name", "Address"}, rows)
		},
	}
	cmd.Flags().Bool("json", false, "output as JSON")
	return cmd
}
