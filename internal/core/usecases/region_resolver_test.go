package usecases_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/seascope/internal/core/domain"
	"github.com/samirrijal/seascope/internal/core/usecases"
)

func TestRegionResolver_FromViewport(t *testing.T) {
	r := usecases.NewRegionResolver(nil)
	got := r.FromViewport(domain.Viewport{North: 10, South: -5, East: 20, West: 15})
	want := domain.QueryRegion{North: 10, South: -5, East: 20, West: 15}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestRegionResolver_FromPoint_SymmetricAtOrigin(t *testing.T) {
	r := usecases.NewRegionResolver(nil)
	region, err := r.FromPoint(domain.GeoPoint{Lat: 0, Lon: 0}, 300, 64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(region.North+region.South) > 1e-6 {
		t.Errorf("north/south not symmetric: %f %f", region.North, region.South)
	}
	if math.Abs(region.East+region.West) > 1e-6 {
		t.Errorf("east/west not symmetric: %f %f", region.East, region.West)
	}
	// 300 km is roughly 2.7 degrees of latitude.
	if region.North < 2.6 || region.North > 2.8 {
		t.Errorf("expected north near 2.7, got %f", region.North)
	}
}

func TestRegionResolver_FromPoint_InvalidInput(t *testing.T) {
	r := usecases.NewRegionResolver(nil)
	cases := []struct {
		name   string
		point  domain.GeoPoint
		radius float64
		steps  int
	}{
		{"lat out of range", domain.GeoPoint{Lat: 91, Lon: 0}, 300, 64},
		{"lon out of range", domain.GeoPoint{Lat: 0, Lon: -181}, 300, 64},
		{"zero radius", domain.GeoPoint{Lat: 0, Lon: 0}, 0, 64},
		{"too few steps", domain.GeoPoint{Lat: 0, Lon: 0}, 300, 2},
		{"NaN lat", domain.GeoPoint{Lat: math.NaN(), Lon: 0}, 300, 64},
		{"NaN lon", domain.GeoPoint{Lat: 0, Lon: math.NaN()}, 300, 64},
		{"NaN radius", domain.GeoPoint{Lat: 0, Lon: 0}, math.NaN(), 64},
		{"infinite radius", domain.GeoPoint{Lat: 0, Lon: 0}, math.Inf(1), 64},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.FromPoint(tc.point, tc.radius, tc.steps)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestRegionResolver_FromPlace(t *testing.T) {
	geo := &fakeGeocoder{point: &domain.GeoPoint{Lat: 12.5, Lon: 74.8}}
	r := usecases.NewRegionResolver(geo)

	region, pt, err := r.FromPlace(context.Background(), "Mangalore", 100, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pt == nil || pt.Lat != 12.5 {
		t.Fatalf("expected geocoded point, got %+v", pt)
	}
	if !(region.South < 12.5 && 12.5 < region.North && region.West < 74.8 && 74.8 < region.East) {
		t.Errorf("region %+v does not contain the point", region)
	}
}

func TestRegionResolver_FromPlace_Errors(t *testing.T) {
	ctx := context.Background()

	_, _, err := usecases.NewRegionResolver(&fakeGeocoder{}).FromPlace(ctx, "  ", 100, 32)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("blank name: expected ErrInvalidInput, got %v", err)
	}

	_, _, err = usecases.NewRegionResolver(&fakeGeocoder{}).FromPlace(ctx, "Atlantis", 100, 32)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("no match: expected ErrInvalidInput, got %v", err)
	}

	_, _, err = usecases.NewRegionResolver(&fakeGeocoder{err: errors.New("timeout")}).FromPlace(ctx, "Goa", 100, 32)
	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Errorf("geocoder failure: expected TransportError, got %v", err)
	}

	_, _, err = usecases.NewRegionResolver(nil).FromPlace(ctx, "Goa", 100, 32)
	if !errors.As(err, &te) {
		t.Errorf("no geocoder: expected TransportError, got %v", err)
	}
}
