package nominatim

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/muesli/gominatim"

	"github.com/samirrijal/seascope/internal/core/domain"
)

// Nominatim's usage policy allows one request per second.
const minInterval = time.Second

var serverOnce sync.Once

type searchFunc func(q string) ([]gominatim.SearchResult, error)

// Geocoder implements ports.Geocoder with a Nominatim server.
type Geocoder struct {
	search  searchFunc
	retries int

	mu   sync.Mutex
	last time.Time
}

// New points the gominatim client at server. The server is process-wide in
// gominatim, so only the first call's server takes effect.
func New(server string) *Geocoder {
	serverOnce.Do(func() { gominatim.SetServer(strings.TrimRight(server, "/")) })
	return &Geocoder{
		retries: 1,
		search: func(q string) ([]gominatim.SearchResult, error) {
			sq := gominatim.SearchQuery{Q: q, Limit: 1}
			return sq.Get()
		},
	}
}

// Geocode returns the best match for query and its display name. No match
// is a nil point with a nil error.
func (g *Geocoder) Geocode(ctx context.Context, query string) (*domain.GeoPoint, string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, "", nil
	}

	type result struct {
		res []gominatim.SearchResult
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := g.searchWithRetry(q)
		done <- result{res, err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return nil, "", ctx.Err()
	case r = <-done:
	}
	if r.err != nil {
		return nil, "", fmt.Errorf("nominatim search: %w", r.err)
	}
	return firstPoint(r.res)
}

func (g *Geocoder) searchWithRetry(q string) ([]gominatim.SearchResult, error) {
	var (
		res []gominatim.SearchResult
		err error
	)
	for attempt := 0; attempt <= g.retries; attempt++ {
		g.throttle()
		res, err = g.search(q)
		if err == nil || !transient(err) {
			return res, err
		}
		slog.Warn("transient nominatim error", "query", q, "attempt", attempt+1, "error", err)
	}
	return nil, err
}

func (g *Geocoder) throttle() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if wait := minInterval - time.Since(g.last); wait > 0 {
		time.Sleep(wait)
	}
	g.last = time.Now()
}

func transient(err error) bool {
	s := err.Error()
	return strings.Contains(s, "unexpected end of JSON") || strings.Contains(s, "EOF")
}

func firstPoint(res []gominatim.SearchResult) (*domain.GeoPoint, string, error) {
	for _, r := range res {
		lat, errLat := strconv.ParseFloat(r.Lat, 64)
		lon, errLon := strconv.ParseFloat(r.Lon, 64)
		if errLat != nil || errLon != nil {
			continue
		}
		p := &domain.GeoPoint{Lat: lat, Lon: lon}
		if p.Validate() != nil {
			continue
		}
		return p, r.DisplayName, nil
	}
	return nil, "", nil
}
