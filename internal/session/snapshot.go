package session

import "github.com/abelbrown/dishtip/internal/model"

// DishView is one visible dish with its derived presentation data.
type DishView struct {
	Dish         model.Dish
	Rank         int    // 1-based position in backend order
	Name         string // title-cased for display
	Label        string
	RelativeTime string // "" when the timestamp is absent or unusable
	Author       string // falls back to model.AnonymousAuthor
	Source       string // falls back to model.UnknownSource
}

// Snapshot is a read-only copy of a session for rendering.
type Snapshot struct {
	Phase         Phase
	Token         Token
	Place         *model.Place
	Info          *model.RestaurantInfo
	Visible       []DishView
	Total         int
	CanRevealMore bool
	Failure       error
}

// Empty reports a successful retrieval with no dishes.
func (s Snapshot) Empty() bool {
	return s.Phase == Ready && s.Total == 0
}

// Title is the name to show for the selected place: the backend's name
// when enrichment arrived, otherwise the autocomplete name.
func (s Snapshot) Title() string {
	if s.Info != nil && s.Info.Name != "" {
		return s.Info.Name
	}
	if s.Place != nil {
		return s.Place.DisplayName
	}
	return ""
}

// Address prefers the enrichment address over the autocomplete one.
func (s Snapshot) Address() string {
	if s.Info != nil && s.Info.Address != "" {
		return s.Info.Address
	}
	if s.Place != nil {
		return s.Place.FormattedAddress
	}
	return ""
}

// Snapshot renders the current state. Relative times are computed against
// the session clock at call time.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:         s.phase,
		Token:         s.token,
		Total:         len(s.dishes),
		CanRevealMore: s.phase == Ready && s.visible < len(s.dishes),
		Failure:       s.failure,
	}
	if s.place != nil {
		p := *s.place
		snap.Place = &p
	}
	if s.info != nil {
		info := *s.info
		snap.Info = &info
	}

	snap.Visible = make([]DishView, s.visible)
	for i := 0; i < s.visible; i++ {
		d := s.dishes[i]
		snap.Visible[i] = DishView{
			Dish:         d,
			Rank:         i + 1,
			Name:         model.DisplayDishName(d.Name),
			Label:        s.labels[i],
			RelativeTime: s.times.Format(d.Timestamp),
			Author:       d.AuthorOrDefault(),
			Source:       d.SourceOrDefault(),
		}
	}
	return snap
}

// Labels returns the labels assigned to every dish, visible or not.
func (s *Session) Labels() []string {
	return append([]string(nil), s.labels...)
}

// Dishes returns every dish of the current result in backend order.
func (s *Session) Dishes() []model.Dish {
	return append([]model.Dish(nil), s.dishes...)
}
