package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/seascope/internal/core/ports"
	"github.com/samirrijal/seascope/internal/core/usecases"
)

// Pinger is anything a readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegionDefaults are the circle parameters used when a request omits them.
type RegionDefaults struct {
	RadiusKm float64
	Steps    int
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Sessions *usecases.SessionManager
	Catalog  *usecases.CatalogService
	Resolver *usecases.RegionResolver
	QueryLog ports.QueryLogRepository
	Regions  RegionDefaults
	NATS     *nats.Conn
	DB       Pinger
	Cache    Pinger
}

func (d *Dependencies) regionDefaults() RegionDefaults {
	r := d.Regions
	if r.RadiusKm <= 0 {
		r.RadiusKm = usecases.DefaultRadiusKm
	}
	if r.Steps <= 0 {
		r.Steps = usecases.DefaultSteps
	}
	return r
}
