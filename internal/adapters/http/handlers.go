package http

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/seascope/internal/core/domain"
	"github.com/samirrijal/seascope/internal/core/usecases"
)

// SessionView is a session id with its current state.
type SessionView struct {
	ID    string       `json:"id"`
	State domain.State `json:"state"`
}

type queryRequest struct {
	Prompt   string              `json:"prompt"`
	Region   *domain.QueryRegion `json:"region,omitempty"`
	Point    *domain.GeoPoint    `json:"point,omitempty"`
	Place    string              `json:"place,omitempty"`
	RadiusKm float64             `json:"radius_km,omitempty"`
	Steps    int                 `json:"steps,omitempty"`
}

type pinRequest struct {
	Name string `json:"name"`
}

type renderCompleteRequest struct {
	Token uint64 `json:"token"`
}

type renderCompleteResponse struct {
	Token uint64        `json:"token"`
	Fit   domain.Bounds `json:"fit"`
}

func session(c *fiber.Ctx, deps *Dependencies) (*usecases.Orchestrator, error) {
	id := c.Params("id")
	if id == "" {
		return nil, errBadRequest(c, "session id is required")
	}
	orch, err := deps.Sessions.Get(id)
	if err != nil {
		return nil, errDomain(c, err)
	}
	return orch, nil
}

// CreateSessionHandler starts a new session.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orch := deps.Sessions.Create()
		return c.Status(fiber.StatusCreated).JSON(SessionView{ID: orch.ID(), State: orch.Snapshot()})
	}
}

// GetSessionHandler returns a session's state.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orch, err := session(c, deps)
		if orch == nil {
			return err
		}
		return c.JSON(SessionView{ID: orch.ID(), State: orch.Snapshot()})
	}
}

// DeleteSessionHandler ends a session.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Sessions.Delete(c.Params("id")); err != nil {
			return errDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SubmitQueryHandler runs a query. The region comes from, in order: an
// explicit box, a dropped point, a place name, or the session's viewport.
func SubmitQueryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orch, err := session(c, deps)
		if orch == nil {
			return err
		}

		var req queryRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Prompt) > 1000 {
			return errBadRequest(c, "prompt too long (max 1000 characters)")
		}

		region, err := resolveRequestRegion(c, deps, req)
		if err != nil {
			return errDomain(c, err)
		}

		st, err := orch.Submit(c.UserContext(), req.Prompt, region)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(SessionView{ID: orch.ID(), State: st})
	}
}

func resolveRequestRegion(c *fiber.Ctx, deps *Dependencies, req queryRequest) (*domain.QueryRegion, error) {
	set := 0
	for _, present := range []bool{req.Region != nil, req.Point != nil, strings.TrimSpace(req.Place) != ""} {
		if present {
			set++
		}
	}
	if set > 1 {
		return nil, fmt.Errorf("%w: only one of region, point or place may be given", domain.ErrInvalidInput)
	}

	def := deps.regionDefaults()
	radius, steps := def.RadiusKm, def.Steps
	if req.RadiusKm > 0 {
		radius = req.RadiusKm
	}
	if req.Steps > 0 {
		steps = req.Steps
	}

	switch {
	case req.Region != nil:
		return req.Region, nil
	case req.Point != nil:
		r, err := deps.Resolver.FromPoint(*req.Point, radius, steps)
		if err != nil {
			return nil, err
		}
		return &r, nil
	case set == 1:
		r, _, err := deps.Resolver.FromPlace(c.UserContext(), req.Place, radius, steps)
		if err != nil {
			return nil, err
		}
		return &r, nil
	}
	return nil, nil
}

// PinHandler pins an entity by name.
func PinHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orch, err := session(c, deps)
		if orch == nil {
			return err
		}
		var req pinRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		st, err := orch.Pin(c.UserContext(), req.Name)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(SessionView{ID: orch.ID(), State: st})
	}
}

// UnpinHandler unpins the entity named in the path.
func UnpinHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orch, err := session(c, deps)
		if orch == nil {
			return err
		}
		name, err := url.PathUnescape(c.Params("name"))
		if err != nil {
			return errBadRequest(c, "invalid entity name")
		}
		st, err := orch.Unpin(c.UserContext(), name)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(SessionView{ID: orch.ID(), State: st})
	}
}

// ClearHandler drops the transient results of a session.
func ClearHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orch, err := session(c, deps)
		if orch == nil {
			return err
		}
		return c.JSON(SessionView{ID: orch.ID(), State: orch.Clear(c.UserContext())})
	}
}

// ViewportHandler records the renderer's visible area.
func ViewportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orch, err := session(c, deps)
		if orch == nil {
			return err
		}
		var v domain.Viewport
		if err := c.BodyParser(&v); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := v.Validate(); err != nil {
			return errDomain(c, err)
		}
		return c.JSON(SessionView{ID: orch.ID(), State: orch.ViewportChanged(v)})
	}
}

// RenderCompleteHandler receives the renderer's frame-done signal and returns
// the bounds to fit.
func RenderCompleteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orch, err := session(c, deps)
		if orch == nil {
			return err
		}
		var req renderCompleteRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		fit, err := orch.RenderComplete(c.UserContext(), req.Token)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(renderCompleteResponse{Token: req.Token, Fit: fit})
	}
}

// LayersHandler returns the colored collections to draw.
func LayersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orch, err := session(c, deps)
		if orch == nil {
			return err
		}
		return c.JSON(orch.Layers())
	}
}

// StatusHandler returns the visible status message, if any.
func StatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orch, err := session(c, deps)
		if orch == nil {
			return err
		}
		st := orch.Snapshot()
		return c.JSON(fiber.Map{
			"phase":  st.Phase,
			"token":  st.Token,
			"status": st.Status,
		})
	}
}

// QueryLogHandler lists a session's past submissions, newest first.
func QueryLogHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.QueryLog == nil {
			return errUnavailable(c, "query log not configured")
		}
		if _, err := session(c, deps); err != nil {
			return err
		}
		offset, limit := pageParams(c)

		entries, total, err := deps.QueryLog.ListBySession(c.UserContext(), c.Params("id"), offset, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if entries == nil {
			entries = []domain.QueryLogEntry{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: entries, Pagination: pg})
	}
}
