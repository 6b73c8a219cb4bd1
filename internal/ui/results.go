package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/abelbrown/dishtip/internal/model"
	"github.com/abelbrown/dishtip/internal/session"
)

// maxSuggestions caps the autocomplete list height.
const maxSuggestions = 6

// RenderSuggestions renders the autocomplete list with the cursor entry
// highlighted. Returns "" when there is nothing to show.
func RenderSuggestions(places []model.Place, cursor, width int) string {
	if len(places) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range places {
		if i >= maxSuggestions {
			break
		}
		name := truncateRunes(p.DisplayName, max(10, width-6))
		if i == cursor {
			b.WriteString(SelectedSuggestion.Render(name))
		} else {
			b.WriteString(NormalSuggestion.Render(name))
		}
		if p.FormattedAddress != "" {
			b.WriteString(" ")
			b.WriteString(SuggestionAddress.Render(truncateRunes(p.FormattedAddress, max(10, width-len([]rune(name))-8))))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderResults renders the presentation for one snapshot. spin is the
// spinner frame shown while fetching.
func RenderResults(snap session.Snapshot, spin string, width int) string {
	switch snap.Phase {
	case session.Idle:
		return HelpStyle.Render("Type at least two characters, pick a place, and see what people order there.")

	case session.Fetching:
		header := CardHeader.Render(snap.Title())
		return header + "\n" + CardSubtle.Render(spin+" Analyzing reviews...")

	case session.Failed:
		var b strings.Builder
		b.WriteString(CardHeader.Render(snap.Title()))
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render("Could not load recommendations"))
		b.WriteString("\n")
		if snap.Failure != nil {
			b.WriteString(CardSubtle.Render(truncateRunes(snap.Failure.Error(), max(20, width-4))))
			b.WriteString("\n")
		}
		b.WriteString(CardSubtle.Render("ctrl+r to retry, esc to start over"))
		return b.String()
	}

	var b strings.Builder
	b.WriteString(CardHeader.Render("Top Dishes at " + snap.Title()))
	b.WriteString("\n")
	if addr := snap.Address(); addr != "" {
		b.WriteString(CardSubtle.Render(addr))
		b.WriteString("\n")
	}
	if links := placeLinks(snap.Info); links != "" {
		b.WriteString(CardSubtle.Render(links))
		b.WriteString("\n")
	}

	if snap.Empty() {
		b.WriteString("\n")
		b.WriteString(CardSubtle.Render("No dish mentions found in recent reviews."))
		return b.String()
	}

	b.WriteString("\n")
	for _, d := range snap.Visible {
		b.WriteString(renderDish(d, width))
	}

	footer := fmt.Sprintf("Showing %d of %d", len(snap.Visible), snap.Total)
	if snap.CanRevealMore {
		footer += "  ·  m for more"
	}
	b.WriteString(CardSubtle.Render(footer))
	return b.String()
}

func renderDish(d session.DishView, width int) string {
	var b strings.Builder
	b.WriteString(" ")
	b.WriteString(RankStyle.Render(humanize.Ordinal(d.Rank)))
	b.WriteString(DishName.Render(truncateRunes(d.Name, max(10, width-24))))
	if d.Label != "" {
		b.WriteString(LabelBadge.Render(d.Label))
	}
	b.WriteString("\n")

	by := fmt.Sprintf("recommended by %s via %s", d.Author, d.Source)
	if d.RelativeTime != "" {
		by += ", " + d.RelativeTime
	}
	b.WriteString("      ")
	b.WriteString(CardSubtle.Render(by))
	b.WriteString("\n")
	if d.Dish.ReviewLink != "" {
		b.WriteString("      ")
		b.WriteString(CardSubtle.Render(truncateRunes(d.Dish.ReviewLink, max(20, width-8))))
		b.WriteString("\n")
	}
	return b.String()
}

func placeLinks(info *model.RestaurantInfo) string {
	if info == nil {
		return ""
	}
	var parts []string
	if info.WebsiteURL != "" {
		parts = append(parts, info.WebsiteURL)
	}
	if info.MapsURL != "" {
		parts = append(parts, info.MapsURL)
	}
	return strings.Join(parts, "  ")
}

// RenderStatusBar renders the key hints for the current focus and phase.
func RenderStatusBar(snap session.Snapshot, searching bool, width int) string {
	hint := func(k, desc string) string {
		return StatusBarKey.Render(k) + StatusBarText.Render(":"+desc)
	}

	var parts []string
	if searching {
		parts = append(parts, hint("↑↓", "move"), hint("enter", "select"))
		if snap.Phase != session.Idle {
			parts = append(parts, hint("tab", "results"))
		}
		parts = append(parts, hint("ctrl+c", "quit"))
	} else {
		if snap.CanRevealMore {
			parts = append(parts, hint("m", "more"))
		}
		if snap.Phase == session.Failed || snap.Phase == session.Ready {
			parts = append(parts, hint("ctrl+r", "retry"))
		}
		parts = append(parts, hint("/", "search"), hint("esc", "reset"), hint("?", "debug"), hint("q", "quit"))
	}

	status := ""
	if snap.Phase != session.Idle {
		status = StatusBarText.Render(strings.ToLower(snap.Phase.String())) + "  "
	}
	return StatusBar.Width(width).Render(status + strings.Join(parts, "  "))
}

// truncateRunes shortens s to at most n runes, marking the cut with "…".
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
