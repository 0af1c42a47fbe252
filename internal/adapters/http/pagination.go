package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination contains offset-based pagination info.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// pageParams reads offset and limit, falling back to the default limit when
// it is missing or outside 1..maxPageLimit.
func pageParams(c *fiber.Ctx) (offset, limit int) {
	offset = c.QueryInt("offset", 0)
	limit = c.QueryInt("limit", defaultPageLimit)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	return offset, limit
}

type pageLink struct {
	rel    string
	offset int
}

// links returns the RFC 8288 relations that apply to p, in first, prev,
// next, last order.
func (p Pagination) links() []pageLink {
	out := []pageLink{{"first", 0}}
	if p.Offset > 0 {
		out = append(out, pageLink{"prev", max(p.Offset-p.Limit, 0)})
	}
	if p.Offset+p.Limit < p.Total {
		out = append(out, pageLink{"next", p.Offset + p.Limit})
	}
	return append(out, pageLink{"last", max(p.Total-p.Limit, 0)})
}

// SetLinkHeaders adds RFC 8288 Link headers for the current request path.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	base := c.Path()
	var parts []string
	for _, l := range p.links() {
		parts = append(parts, fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="%s"`, base, l.offset, p.Limit, l.rel))
	}
	c.Set("Link", strings.Join(parts, ", "))
}
