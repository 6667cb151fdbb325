package forecast

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/tbourn/telemacher/internal/upstream"
)

// DefaultDarkSkyURL is the Dark Sky forecast API root.
const DefaultDarkSkyURL = "https://api.darksky.net/forecast"

const serviceName = "forecast"

// DarkSkyClient fetches raw forecast payloads.
type DarkSkyClient struct {
	base     *upstream.BaseClient
	apiKey   string
	endpoint string
}

// NewDarkSkyClient builds a client for endpoint (DefaultDarkSkyURL when empty).
func NewDarkSkyClient(apiKey, endpoint string, opts ...upstream.Option) *DarkSkyClient {
	if endpoint == "" {
		endpoint = DefaultDarkSkyURL
	}
	return &DarkSkyClient{
		base:     upstream.NewBaseClient(serviceName, opts...),
		apiKey:   apiKey,
		endpoint: endpoint,
	}
}

// Payload requests the forecast at lat,lng, for time at when non-nil
// (a "time machine" request).
func (d *DarkSkyClient) Payload(ctx context.Context, lat, lng float64, at *time.Time) (Payload, error) {
	var out Payload
	err := d.base.GetJSON(ctx, d.url(lat, lng, at), &out)
	return out, err
}

func (d *DarkSkyClient) url(lat, lng float64, at *time.Time) string {
	loc := strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
	if at != nil {
		loc += "," + strconv.FormatInt(at.Unix(), 10)
	}
	q := url.Values{}
	q.Set("exclude", "alerts,flags")
	q.Set("units", "us")
	return fmt.Sprintf("%s/%s/%s?%s", d.endpoint, url.PathEscape(d.apiKey), loc, q.Encode())
}
