// Package mockbackend serves the DishTip backend contract from fixtures.
//
// It stands in for the real recommendation service during development
// (dt serve-mock) and in tests. Faults can be injected per place id.
package mockbackend

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"

	"github.com/abelbrown/dishtip/internal/model"
)

//go:embed fixtures.json
var defaultFixtures []byte

// Fixture is the canned backend state for one place.
type Fixture struct {
	Info            *model.RestaurantInfoDTO  `json:"restaurant_info"`
	Recommendations []model.RecommendationDTO `json:"recommendations"`
}

// Fault makes requests for a place misbehave.
type Fault struct {
	Status    int           // respond with this status instead of data
	Delay     time.Duration // wait before responding
	Malformed bool          // respond 200 with a body that is not JSON
	InfoOnly  bool          // apply only to restaurant_info
}

// Server is an http.Handler implementing the backend endpoints.
type Server struct {
	mu       sync.RWMutex
	fixtures map[string]Fixture
	faults   map[string]Fault
	hits     map[string]int
	router   chi.Router
	logger   *log.Logger
}

// LoadFixtures decodes a place-id keyed fixture document.
func LoadFixtures(r io.Reader) (map[string]Fixture, error) {
	var fx map[string]Fixture
	if err := json.NewDecoder(r).Decode(&fx); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return fx, nil
}

// DefaultFixtures returns the built-in fixtures: "abc123" (one dish),
// "empty001" (no dishes) and "twelve12" (twelve dishes).
func DefaultFixtures() map[string]Fixture {
	fx, err := LoadFixtures(bytes.NewReader(defaultFixtures))
	if err != nil {
		panic(err)
	}
	return fx
}

// New creates a Server over fixtures. A nil logger disables request logs.
func New(fixtures map[string]Fixture, logger *log.Logger) *Server {
	s := &Server{
		fixtures: make(map[string]Fixture, len(fixtures)),
		faults:   map[string]Fault{},
		hits:     map[string]int{},
		logger:   logger,
	}
	for id, fx := range fixtures {
		s.fixtures[id] = fx
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/restaurant_info/{placeID}", s.handleInfo)
	r.Get("/recommendations/{placeID}", s.handleRecommendations)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetFixture adds or replaces the fixture for placeID.
func (s *Server) SetFixture(placeID string, fx Fixture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixtures[placeID] = fx
}

// SetFault injects a fault for placeID. A zero Fault clears it.
func (s *Server) SetFault(placeID string, f Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f == (Fault{}) {
		delete(s.faults, placeID)
		return
	}
	s.faults[placeID] = f
}

// Hits returns how many requests were made for "resource/placeID".
func (s *Server) Hits(resource, placeID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hits[resource+"/"+placeID]
}

// PlaceIDs returns the fixture ids, sorted.
func (s *Server) PlaceIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.fixtures))
	for id := range s.fixtures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	fx, ok := s.lookup(w, r, "restaurant_info", false)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, model.RestaurantInfoResponse{RestaurantInfo: fx.Info})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	fx, ok := s.lookup(w, r, "recommendations", true)
	if !ok {
		return
	}
	recs := SortByRanking(fx.Recommendations)
	writeJSON(w, http.StatusOK, struct {
		Recommendations []model.RecommendationDTO `json:"recommendations"`
	}{recs})
}

// lookup resolves the place id, records the hit and applies any fault.
// Unknown places yield an empty fixture, as the real backend does for
// places without reviews. Returns false when a response was already written.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request, resource string, isRecs bool) (Fixture, bool) {
	id, err := url.PathUnescape(chi.URLParam(r, "placeID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid place id"})
		return Fixture{}, false
	}

	s.mu.Lock()
	s.hits[resource+"/"+id]++
	fx := s.fixtures[id]
	fault, faulty := s.faults[id]
	s.mu.Unlock()

	if faulty && !(fault.InfoOnly && isRecs) {
		if fault.Delay > 0 {
			select {
			case <-time.After(fault.Delay):
			case <-r.Context().Done():
				return Fixture{}, false
			}
		}
		if fault.Status != 0 {
			writeJSON(w, fault.Status, map[string]string{"detail": http.StatusText(fault.Status)})
			return Fixture{}, false
		}
		if fault.Malformed {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"recommendations": [`))
			return Fixture{}, false
		}
	}
	return fx, true
}

// SortByRanking orders recommendations by ranking, highest first. Missing
// or unparseable rankings sort last; ties keep their input order.
func SortByRanking(recs []model.RecommendationDTO) []model.RecommendationDTO {
	out := append([]model.RecommendationDTO{}, recs...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := model.ParseNumber(out[i].Ranking), model.ParseNumber(out[j].Ranking)
		switch {
		case ri == nil:
			return false
		case rj == nil:
			return true
		default:
			return *ri > *rj
		}
	})
	return out
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.logger == nil {
			next.ServeHTTP(w, r)
			return
		}
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "dur", time.Since(start).Round(time.Microsecond))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
