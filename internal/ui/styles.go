package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("208") // Orange
	colorSecondary = lipgloss.Color("245") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("214") // Amber
	colorSuccess   = lipgloss.Color("78")  // Green
	colorError     = lipgloss.Color("196") // Red
)

// TitleStyle for the app name in the header.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// SearchBar frames the search input.
var SearchBar = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(0, 1)

// SearchBarBlurred frames the search input when results have focus.
var SearchBarBlurred = SearchBar.
	BorderForeground(colorMuted)

// SelectedSuggestion style for the highlighted autocomplete entry.
var SelectedSuggestion = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// NormalSuggestion style for the other autocomplete entries.
var NormalSuggestion = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// SuggestionAddress style for the secondary line of a suggestion.
var SuggestionAddress = lipgloss.NewStyle().
	Foreground(colorSecondary)

// CardHeader style for "Top Dishes at ...".
var CardHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	MarginTop(1).
	Padding(0, 1)

// CardSubtle style for addresses, links and provenance lines.
var CardSubtle = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// DishName style for dish titles.
var DishName = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255"))

// RankStyle style for the ordinal rank column.
var RankStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Width(5)

// LabelBadge style for the per-dish label.
var LabelBadge = lipgloss.NewStyle().
	Foreground(colorSuccess).
	Background(lipgloss.Color("236")).
	Padding(0, 1).
	MarginLeft(1)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorError).
	Bold(true).
	Padding(0, 1)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// SpinnerStyle colors the loading spinner.
var SpinnerStyle = lipgloss.NewStyle().
	Foreground(colorPrimary)

// DebugPanel frames the debug overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(1, 2)

// DebugHeaderStyle for section headers in the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
