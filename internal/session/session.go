// Package session holds the search session state machine: which place is
// selected, where its retrieval stands, and how much of the result is shown.
//
//	Idle ──SelectPlace──▶ Fetching ──RetrievalSucceeded──▶ Ready
//	                         │                              │ RevealMore
//	                         └──RetrievalFailed──▶ Failed   ▼
//	any ──SelectPlace──▶ Fetching (new token)              Ready
//	any ──Reset──▶ Idle
//
// Every selection issues a fresh Token. Asynchronous results carry the token
// they were requested under and are applied only while it is still current.
//
// A Session is not safe for concurrent use. It is owned by the UI event loop.
package session

import (
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/abelbrown/dishtip/internal/label"
	"github.com/abelbrown/dishtip/internal/model"
	"github.com/abelbrown/dishtip/internal/reltime"
)

// PageSize is both the initial number of visible dishes and the RevealMore
// step.
const PageSize = 5

// ErrRetrievalFailed is the failure recorded when a retrieval fails without
// a cause.
var ErrRetrievalFailed = errors.New("retrieval failed")

// Phase is the loading state of a session.
type Phase int

const (
	Idle Phase = iota
	Fetching
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Token identifies one selection. The zero Token is never issued.
type Token string

// Options configures a Session. Zero values select production defaults.
type Options struct {
	Vocabulary []string         // default label.DefaultVocabulary
	Rand       *rand.Rand       // label randomness
	Now        func() time.Time // relative-time clock
	NewToken   func() Token     // default random UUID
}

// Session is the search session aggregate.
type Session struct {
	place   *model.Place
	info    *model.RestaurantInfo
	dishes  []model.Dish
	labels  []string
	phase   Phase
	visible int
	token   Token
	failure error

	rotator  *label.Rotator
	times    reltime.Formatter
	newToken func() Token
}

// New creates an Idle session.
func New(opts Options) *Session {
	vocab := opts.Vocabulary
	if len(vocab) == 0 {
		vocab = label.DefaultVocabulary
	}
	times := reltime.New()
	if opts.Now != nil {
		times.Now = opts.Now
	}
	newToken := opts.NewToken
	if newToken == nil {
		newToken = func() Token { return Token(uuid.NewString()) }
	}
	return &Session{
		rotator:  label.NewRotator(vocab, opts.Rand),
		times:    times,
		newToken: newToken,
	}
}

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Token returns the current token, or "" when Idle.
func (s *Session) Token() Token { return s.token }

// Place returns the selected place, or nil when Idle.
func (s *Session) Place() *model.Place { return s.place }

// Current reports whether tok belongs to the live selection.
func (s *Session) Current(tok Token) bool {
	return tok != "" && tok == s.token
}

// SelectPlace starts a new session for place from any phase. Everything
// derived from the previous selection is discarded and a new token is
// returned for the requests the caller is about to issue. A place without
// an id is ignored and ok is false.
func (s *Session) SelectPlace(place model.Place) (tok Token, ok bool) {
	if !place.Valid() {
		return "", false
	}
	s.clear()
	p := place
	p.Types = append([]string(nil), place.Types...)
	s.place = &p
	s.phase = Fetching
	s.token = s.newToken()
	return s.token, true
}

// RetrievalSucceeded applies a recommendation list. Labels are assigned here,
// once per dish, and never recomputed for this session. Results for a stale
// token or outside Fetching are ignored and false is returned.
func (s *Session) RetrievalSucceeded(tok Token, dishes []model.Dish) bool {
	if !s.Current(tok) || s.phase != Fetching {
		return false
	}
	s.dishes = append(make([]model.Dish, 0, len(dishes)), dishes...)
	s.labels = s.rotator.Assign(len(s.dishes))
	s.visible = min(PageSize, len(s.dishes))
	s.phase = Ready
	return true
}

// RetrievalFailed moves a Fetching session to Failed. Stale tokens are
// ignored.
func (s *Session) RetrievalFailed(tok Token, cause error) bool {
	if !s.Current(tok) || s.phase != Fetching {
		return false
	}
	if cause == nil {
		cause = ErrRetrievalFailed
	}
	s.failure = cause
	s.phase = Failed
	return true
}

// InfoReceived attaches restaurant enrichment. It may arrive before or after
// the recommendations and never changes the phase. Stale tokens are ignored.
func (s *Session) InfoReceived(tok Token, info *model.RestaurantInfo) bool {
	if !s.Current(tok) || s.phase == Idle {
		return false
	}
	if info != nil {
		cp := *info
		info = &cp
	}
	s.info = info
	return true
}

// RevealMore shows up to PageSize further dishes. Only valid in Ready;
// returns false when nothing changed.
func (s *Session) RevealMore() bool {
	if s.phase != Ready || s.visible >= len(s.dishes) {
		return false
	}
	s.visible = min(s.visible+PageSize, len(s.dishes))
	return true
}

// Reset returns to Idle. Results still in flight become stale.
func (s *Session) Reset() {
	s.clear()
	s.place = nil
	s.phase = Idle
	s.token = ""
}

func (s *Session) clear() {
	s.info = nil
	s.dishes = nil
	s.labels = nil
	s.visible = 0
	s.failure = nil
	s.rotator.Reset()
}
