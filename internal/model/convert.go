package model

import (
	"bytes"
	"html"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// strictPolicy strips all markup. Review text is scraped from blogs and
// occasionally carries tags or entities into author and dish fields.
var strictPolicy = bluemonday.StrictPolicy()

// CleanText removes markup, decodes entities and collapses whitespace.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// DisplayDishName title-cases a dish name without lowering existing
// capitals ("bbq ribs" -> "Bbq Ribs", "BBQ ribs" -> "BBQ Ribs").
// cases.Caser is not safe for concurrent use, so one is built per call.
func DisplayDishName(name string) string {
	return cases.Title(language.Und, cases.NoLower).String(name)
}

// DecodeDishes converts the raw recommendations value into dishes, in
// backend order. A missing, null or non-array value yields an empty slice.
// Elements that are not objects or have no dish name are skipped.
func DecodeDishes(raw json.RawMessage) []Dish {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []Dish{}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return []Dish{}
	}

	dishes := make([]Dish, 0, len(elems))
	for _, elem := range elems {
		var dto RecommendationDTO
		if err := json.Unmarshal(elem, &dto); err != nil {
			continue
		}
		dish, ok := DishFromDTO(dto)
		if !ok {
			continue
		}
		dishes = append(dishes, dish)
	}
	return dishes
}

// DishFromDTO converts one wire recommendation. Returns false when the
// recommendation has no usable dish name.
func DishFromDTO(dto RecommendationDTO) (Dish, bool) {
	name := CleanText(dto.DishName)
	if name == "" {
		return Dish{}, false
	}
	return Dish{
		Name:       name,
		Author:     CleanText(deref(dto.Author)),
		Source:     CleanText(deref(dto.Source)),
		ReviewLink: strings.TrimSpace(deref(dto.ReviewLink)),
		Timestamp:  ParseNumber(dto.Timestamp),
		Ranking:    ParseNumber(dto.Ranking),
	}, true
}

// InfoFromDTO converts restaurant enrichment. A nil DTO (JSON null) is no
// enrichment.
func InfoFromDTO(dto *RestaurantInfoDTO) *RestaurantInfo {
	if dto == nil {
		return nil
	}
	info := &RestaurantInfo{
		Name:       CleanText(dto.Name),
		Address:    CleanText(dto.Address),
		WebsiteURL: firstNonEmpty(dto.WebsiteURL, dto.HomepageURL),
		MapsURL:    firstNonEmpty(dto.MapsURL, dto.GoogleURL),
	}
	if *info == (RestaurantInfo{}) {
		return nil
	}
	return info
}

// ParseNumber reads a JSON number or numeric string. Anything else,
// including null, NaN and infinities, yields nil.
func ParseNumber(raw json.RawMessage) *float64 {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var v float64
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		v = f
	} else if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
