package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/dishtip/internal/model"
	"github.com/abelbrown/dishtip/internal/otel"
	"github.com/abelbrown/dishtip/internal/places"
	"github.com/abelbrown/dishtip/internal/session"
)

// MinQueryLen is the shortest input that triggers autocomplete.
const MinQueryLen = places.MinQueryLen

// DefaultDebounce is the pause after the last keystroke before
// autocomplete runs.
const DefaultDebounce = 300 * time.Millisecond

// AppConfig wires the App to its collaborators. The command funcs run their
// work inside the returned tea.Cmd and report back with a message; ctx is
// cancelled when the request is superseded.
type AppConfig struct {
	SearchPlaces         func(ctx context.Context, query string, seq int) tea.Cmd
	FetchInfo            func(ctx context.Context, tok session.Token, placeID string) tea.Cmd
	FetchRecommendations func(ctx context.Context, tok session.Token, placeID string) tea.Cmd

	Session  *session.Session // nil creates a default session
	Events   *otel.Logger     // nil discards events
	Ring     *otel.RingBuffer // nil disables the debug overlay
	Debounce time.Duration    // 0 uses DefaultDebounce

	// RawPlaceIDs lets enter look up the typed text as a place id when no
	// suggestion is available. Used when autocomplete has no API key.
	RawPlaceIDs bool
}

type focus int

const (
	focusSearch focus = iota
	focusResults
)

// App is the root Bubble Tea model.
// App does not call the network itself; it issues commands from AppConfig
// and applies the messages they return through the session.
type App struct {
	cfg     AppConfig
	session *session.Session
	events  *otel.Logger

	input       textinput.Model
	spinner     spinner.Model
	focus       focus
	suggestions []model.Place
	cursor      int
	seq         int    // input revision
	lastQuery   string // query of the current suggestions
	placesErr   error

	cancelPlaces   context.CancelFunc
	cancelRetrieve context.CancelFunc

	width     int
	height    int
	ready     bool
	showDebug bool
}

// NewApp creates an App from cfg.
func NewApp(cfg AppConfig) App {
	if cfg.Session == nil {
		cfg.Session = session.New(session.Options{})
	}
	if cfg.Events == nil {
		cfg.Events = otel.NewNullLogger()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	ti := textinput.New()
	ti.Placeholder = "Search a restaurant, café, bakery or bar"
	ti.Prompt = "⌕ "
	ti.CharLimit = 120
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(SpinnerStyle))

	return App{
		cfg:     cfg,
		session: cfg.Session,
		events:  cfg.Events,
		input:   ti,
		spinner: sp,
	}
}

// Init starts the cursor blink.
func (a App) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMsgReceived, Comp: "ui", Msg: fmt.Sprintf("%T", msg)})
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.input.Width = max(10, msg.Width-8)
		return a, nil

	case DebounceTick:
		return a.handleDebounce(msg)

	case PlacesLoaded:
		if msg.Seq != a.seq {
			return a, nil
		}
		if msg.Err != nil {
			if !errors.Is(msg.Err, context.Canceled) {
				a.placesErr = msg.Err
			}
			return a, nil
		}
		a.lastQuery = msg.Query
		a.placesErr = nil
		a.suggestions = msg.Places
		a.cursor = 0
		return a, nil

	case InfoLoaded:
		if msg.Err != nil {
			// Enrichment is optional; the failure is already in the event log.
			return a, nil
		}
		a.apply(msg.Token, "info", a.session.InfoReceived(msg.Token, msg.Info))
		return a, nil

	case RecommendationsLoaded:
		var applied bool
		if msg.Err != nil {
			applied = a.session.RetrievalFailed(msg.Token, msg.Err)
		} else {
			applied = a.session.RetrievalSucceeded(msg.Token, msg.Dishes)
		}
		a.apply(msg.Token, "recommendations", applied)
		return a, nil

	case spinner.TickMsg:
		if a.session.Phase() != session.Fetching {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// apply records whether an async result for tok was applied or discarded.
func (a App) apply(tok session.Token, what string, applied bool) {
	kind := otel.KindSessionApply
	level := otel.LevelInfo
	if !applied {
		kind = otel.KindSessionStale
		level = otel.LevelDebug
	}
	a.events.Emit(otel.Event{
		Level: level, Kind: kind, Comp: "session", SID: string(tok),
		Msg: what + " " + a.session.Phase().String(),
	})
}

func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return a.quit()
	}
	if a.focus == focusResults {
		return a.handleResultsKey(msg)
	}
	return a.handleSearchKey(msg)
}

func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case key.Matches(msg, keys.Down):
		if a.cursor < len(a.suggestions)-1 {
			a.cursor++
		}
		return a, nil

	case key.Matches(msg, keys.Select):
		if len(a.suggestions) > 0 && a.cursor < len(a.suggestions) {
			return a.selectPlace(a.suggestions[a.cursor])
		}
		if a.cfg.RawPlaceIDs {
			if id := strings.TrimSpace(a.input.Value()); id != "" {
				return a.selectPlace(model.Place{ID: id, DisplayName: id})
			}
		}
		return a, nil

	case key.Matches(msg, keys.Reset):
		if a.input.Value() != "" {
			a.clearSearch()
			return a, nil
		}
		if a.session.Phase() != session.Idle {
			a.focusResults()
		}
		return a, nil

	case key.Matches(msg, keys.Focus):
		if a.session.Phase() != session.Idle {
			a.focusResults()
		}
		return a, nil
	}

	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if a.input.Value() == before {
		return a, cmd
	}
	tick := a.inputChanged()
	return a, tea.Batch(cmd, tick)
}

func (a App) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.QuitResult):
		return a.quit()

	case key.Matches(msg, keys.RevealMore):
		if a.session.RevealMore() {
			snap := a.session.Snapshot()
			a.events.Emit(otel.Event{
				Level: otel.LevelInfo, Kind: otel.KindReveal, Comp: "ui",
				SID: string(snap.Token), Count: len(snap.Visible),
			})
		}
		return a, nil

	case key.Matches(msg, keys.Retry):
		if p := a.session.Place(); p != nil && a.session.Phase() != session.Fetching {
			return a.selectPlace(*p)
		}
		return a, nil

	case key.Matches(msg, keys.Reset):
		a.reset()
		return a, nil

	case key.Matches(msg, keys.Search), key.Matches(msg, keys.Focus):
		a.focusSearch()
		return a, nil

	case key.Matches(msg, keys.Debug):
		a.showDebug = !a.showDebug
		return a, nil
	}
	return a, nil
}

// inputChanged bumps the input revision and schedules a debounce tick.
func (a *App) inputChanged() tea.Cmd {
	a.seq++
	a.placesErr = nil
	if a.cancelPlaces != nil {
		a.cancelPlaces()
		a.cancelPlaces = nil
	}
	if len([]rune(strings.TrimSpace(a.input.Value()))) < MinQueryLen {
		a.suggestions = nil
		a.cursor = 0
		return nil
	}
	seq := a.seq
	return tea.Tick(a.cfg.Debounce, func(time.Time) tea.Msg {
		return DebounceTick{Seq: seq}
	})
}

func (a App) handleDebounce(msg DebounceTick) (tea.Model, tea.Cmd) {
	if msg.Seq != a.seq || a.cfg.SearchPlaces == nil {
		return a, nil
	}
	query := strings.TrimSpace(a.input.Value())
	if len([]rune(query)) < MinQueryLen || query == a.lastQuery {
		return a, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelPlaces = cancel
	a.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindPlacesQuery, Comp: "ui", Query: query})
	return a, a.cfg.SearchPlaces(ctx, query, a.seq)
}

// selectPlace starts a new search session for p. The previous session's
// requests are cancelled and their late results will be stale.
func (a App) selectPlace(p model.Place) (tea.Model, tea.Cmd) {
	tok, ok := a.session.SelectPlace(p)
	if !ok {
		return a, nil
	}
	if a.cancelRetrieve != nil {
		a.cancelRetrieve()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelRetrieve = cancel

	a.events.Emit(otel.Event{
		Level: otel.LevelInfo, Kind: otel.KindSessionSelect, Comp: "session",
		SID: string(tok), PlaceID: p.ID, Msg: p.DisplayName,
	})

	a.focusResults()
	a.suggestions = nil
	a.cursor = 0

	cmds := []tea.Cmd{a.spinner.Tick}
	if a.cfg.FetchInfo != nil {
		cmds = append(cmds, a.cfg.FetchInfo(ctx, tok, p.ID))
	}
	if a.cfg.FetchRecommendations != nil {
		cmds = append(cmds, a.cfg.FetchRecommendations(ctx, tok, p.ID))
	}
	return a, tea.Batch(cmds...)
}

// reset discards the session and returns to an empty search.
func (a *App) reset() {
	tok := a.session.Token()
	if a.cancelRetrieve != nil {
		a.cancelRetrieve()
		a.cancelRetrieve = nil
	}
	a.session.Reset()
	a.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSessionReset, Comp: "session", SID: string(tok)})
	a.clearSearch()
	a.focusSearch()
}

func (a *App) clearSearch() {
	a.input.SetValue("")
	a.suggestions = nil
	a.cursor = 0
	a.lastQuery = ""
	a.placesErr = nil
	a.seq++
	if a.cancelPlaces != nil {
		a.cancelPlaces()
		a.cancelPlaces = nil
	}
}

func (a *App) focusResults() {
	a.focus = focusResults
	a.input.Blur()
}

func (a *App) focusSearch() {
	a.focus = focusSearch
	a.input.Focus()
}

func (a App) quit() (tea.Model, tea.Cmd) {
	if a.cancelRetrieve != nil {
		a.cancelRetrieve()
	}
	if a.cancelPlaces != nil {
		a.cancelPlaces()
	}
	return a, tea.Quit
}

// Snapshot returns the session snapshot (for testing).
func (a App) Snapshot() session.Snapshot {
	return a.session.Snapshot()
}

// Suggestions returns the current autocomplete suggestions (for testing).
func (a App) Suggestions() []model.Place {
	return a.suggestions
}

// Cursor returns the suggestion cursor (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Query returns the search input value (for testing).
func (a App) Query() string {
	return a.input.Value()
}

// SearchFocused reports whether the search input has focus (for testing).
func (a App) SearchFocused() bool {
	return a.focus == focusSearch
}

// View renders the current state of the application.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.showDebug && a.cfg.Ring != nil {
		overlay := debugOverlay(a.cfg.Ring, a.width, a.height-1)
		return overlay + "\n" + debugStatusBar(a.width)
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("DishTip"))
	b.WriteString("\n")

	bar := SearchBar
	if a.focus != focusSearch {
		bar = SearchBarBlurred
	}
	b.WriteString(bar.Width(max(20, a.width-4)).Render(a.input.View()))
	b.WriteString("\n")

	if a.focus == focusSearch {
		b.WriteString(RenderSuggestions(a.suggestions, a.cursor, a.width))
		if a.placesErr != nil {
			b.WriteString(ErrorStyle.Render("Autocomplete unavailable: " + a.placesErr.Error()))
			b.WriteString("\n")
		}
		if a.cfg.RawPlaceIDs && len(a.suggestions) == 0 {
			b.WriteString(CardSubtle.Render("Autocomplete is off. Enter a place id to look it up."))
			b.WriteString("\n")
		}
	}

	b.WriteString(RenderResults(a.session.Snapshot(), a.spinner.View(), a.width))
	b.WriteString("\n")
	b.WriteString(RenderStatusBar(a.session.Snapshot(), a.focus == focusSearch, a.width))
	return b.String()
}
