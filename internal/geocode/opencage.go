// Package geocode resolves free-text addresses to coordinates through the
// OpenCage API.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	geo "github.com/codingsince1985/geo-golang"
	"github.com/codingsince1985/geo-golang/opencage"

	"github.com/iliyamo/ecomm-delivery-backend/internal/config"
	"github.com/iliyamo/ecomm-delivery-backend/internal/metrics"
)

var (
	// ErrNoMatch means the provider answered but found nothing.
	ErrNoMatch = errors.New("no coordinates found")
	// ErrProvider wraps transport, quota and authentication failures.
	ErrProvider = errors.New("geocoding provider error")
)

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Resolver calls a geo.Geocoder with a bounded wait.
type Resolver struct {
	geocoder geo.Geocoder
	timeout  time.Duration
}

// openCageEndpoint is the forward geocoding URL prefix; the client appends
// the escaped query.  The key rides in the query string, so only HTTPS.
const openCageEndpoint = "https://api.opencagedata.com/geocode/v1/json"

// NewOpenCage returns a Resolver backed by OpenCage.
func NewOpenCage(cfg config.GeocodeConfig) *Resolver {
	return New(opencage.Geocoder(cfg.APIKey, openCageBaseURL(cfg.APIKey)), cfg.Timeout)
}

func openCageBaseURL(key string) string {
	return openCageEndpoint + "?key=" + url.QueryEscape(key) + "&q="
}

// New wraps any geo.Geocoder.  A non-positive timeout means 10s.
func New(g geo.Geocoder, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{geocoder: g, timeout: timeout}
}

type result struct {
	loc *geo.Location
	err error
}

// Resolve returns the first candidate the provider reports for query.  The
// geocoder client has no context support, so the call runs in its own
// goroutine and is abandoned when ctx ends or the timeout elapses.
func (r *Resolver) Resolve(ctx context.Context, query string) (Coordinates, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ch := make(chan result, 1)
	go func() {
		loc, err := r.geocoder.Geocode(query)
		ch <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return Coordinates{}, fmt.Errorf("%w: %w", ErrProvider, ctx.Err())
	case res := <-ch:
		if res.err != nil {
			metrics.GeocodeRequests.WithLabelValues("error").Inc()
			return Coordinates{}, fmt.Errorf("%w: %w", ErrProvider, res.err)
		}
		if res.loc == nil {
			metrics.GeocodeRequests.WithLabelValues("no_match").Inc()
			return Coordinates{}, ErrNoMatch
		}
		metrics.GeocodeRequests.WithLabelValues("ok").Inc()
		return Coordinates{Latitude: res.loc.Lat, Longitude: res.loc.Lng}, nil
	}
}

// ComposeQuery joins the locality parts in the fixed order city, state,
// country, pincode.  Blank parts are kept so the order never shifts.
func ComposeQuery(city, state, country, pincode string) string {
	parts := []string{city, state, country, pincode}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
