package model

import json "github.com/goccy/go-json"

// RecommendationsResponse is the body of GET /recommendations/{placeId}.
// Recommendations is kept raw: a missing or non-array value is an empty
// result, not a decode failure.
type RecommendationsResponse struct {
	Recommendations json.RawMessage `json:"recommendations"`
}

// RecommendationDTO is one element of the recommendations array.
// Timestamp and Ranking are raw because the backend emits numbers,
// numeric strings or null depending on the review source.
type RecommendationDTO struct {
	DishName   string          `json:"dish_name"`
	Author     *string         `json:"author"`
	Source     *string         `json:"source"`
	Timestamp  json.RawMessage `json:"timestamp"`
	ReviewLink *string         `json:"review_link"`
	Ranking    json.RawMessage `json:"ranking"`
}

// RestaurantInfoResponse is the body of GET /restaurant_info/{placeId}.
type RestaurantInfoResponse struct {
	RestaurantInfo *RestaurantInfoDTO `json:"restaurant_info"`
}

// RestaurantInfoDTO accepts both the documented field names and the ones
// the Python backend serializes from its Restaurant object.
type RestaurantInfoDTO struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	WebsiteURL  string `json:"website_url,omitempty"`
	MapsURL     string `json:"maps_url,omitempty"`
	HomepageURL string `json:"homepage_url,omitempty"`
	GoogleURL   string `json:"google_url,omitempty"`
}
