package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/seascope/internal/core/domain"
)

// ListCatalogHandler returns catalog entries, optionally filtered by category.
func ListCatalogHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Catalog.List(c.Query("category")))
	}
}

// PresetsHandler returns the prompts offered as quick picks.
func PresetsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"presets": deps.Catalog.Presets()})
	}
}

// UpsertCatalogHandler adds or replaces a catalog entry.
func UpsertCatalogHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var e domain.CatalogEntry
		if err := c.BodyParser(&e); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Catalog.Upsert(c.UserContext(), e); err != nil {
			return errDomain(c, err)
		}
		stored, ok := deps.Catalog.Get(strings.TrimSpace(e.Name))
		if !ok {
			stored = e
		}
		return c.Status(fiber.StatusCreated).JSON(stored)
	}
}

// PointRegionHandler returns the query region around a point.
func PointRegionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
		if errLat != nil || errLon != nil {
			return errBadRequest(c, "lat and lon are required")
		}
		def := deps.regionDefaults()
		radius := c.QueryFloat("radius_km", def.RadiusKm)
		steps := c.QueryInt("steps", def.Steps)

		region, err := deps.Resolver.FromPoint(domain.GeoPoint{Lat: lat, Lon: lon}, radius, steps)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(region)
	}
}

// PlaceRegionHandler geocodes q and returns the region around the match.
func PlaceRegionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := c.Query("q")
		if q == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(q) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		def := deps.regionDefaults()
		radius := c.QueryFloat("radius_km", def.RadiusKm)
		steps := c.QueryInt("steps", def.Steps)

		region, pt, err := deps.Resolver.FromPlace(c.UserContext(), q, radius, steps)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(fiber.Map{"region": region, "point": pt})
	}
}
