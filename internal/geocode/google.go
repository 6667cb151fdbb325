package geocode

import (
	"context"
	"net/url"

	"github.com/tbourn/telemacher/internal/domain"
	"github.com/tbourn/telemacher/internal/upstream"
)

// DefaultPlacesURL is the Google Places text search endpoint.
const DefaultPlacesURL = "https://maps.googleapis.com/maps/api/place/textsearch/json"

const serviceName = "geocode"

// GoogleClient resolves free text to a coordinate with the Google Places
// text search API.
type GoogleClient struct {
	base     *upstream.BaseClient
	apiKey   string
	endpoint string
}

// NewGoogleClient builds a client for endpoint (DefaultPlacesURL when empty).
func NewGoogleClient(apiKey, endpoint string, opts ...upstream.Option) *GoogleClient {
	if endpoint == "" {
		endpoint = DefaultPlacesURL
	}
	return &GoogleClient{
		base:     upstream.NewBaseClient(serviceName, opts...),
		apiKey:   apiKey,
		endpoint: endpoint,
	}
}

// placesResponse keeps only the path we read. Pointers distinguish absent
// coordinates from a literal zero; a non-numeric value fails decoding.
type placesResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat *float64 `json:"lat"`
				Lng *float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Lookup returns the location of the first text search result for query.
func (g *GoogleClient) Lookup(ctx context.Context, query string) (domain.Coordinate, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", g.apiKey)

	var resp placesResponse
	if err := g.base.GetJSON(ctx, g.endpoint+"?"+params.Encode(), &resp); err != nil {
		return domain.Coordinate{}, err
	}
	if len(resp.Results) == 0 {
		return domain.Coordinate{}, upstream.Malformed(serviceName, "no results (status "+resp.Status+")")
	}
	loc := resp.Results[0].Geometry.Location
	if loc.Lat == nil || loc.Lng == nil {
		return domain.Coordinate{}, upstream.Malformed(serviceName, "results[0].geometry.location lacks lat/lng")
	}
	return domain.Coordinate{Lat: *loc.Lat, Lng: *loc.Lng}, nil
}
