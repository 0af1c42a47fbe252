package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/seascope/internal/core/domain"
	"github.com/samirrijal/seascope/internal/pkg/telemetry"
)

// Client implements ports.Classifier against the remote classification
// service's POST /query endpoint.
type Client struct {
	endpoint string
	timeout  time.Duration
	http     *fasthttp.Client
}

// NewClient creates a Client for baseURL. timeout bounds each request when
// the caller's context has no earlier deadline.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + "/query",
		timeout:  timeout,
		http: &fasthttp.Client{
			Name:                "seascope",
			MaxConnsPerHost:     64,
			MaxIdleConnDuration: 30 * time.Second,
		},
	}
}

// Query posts req and decodes the response. Only failures to get a 2xx
// response with a decodable body are errors; a non-success status in the
// body is returned for the caller to judge.
func (c *Client) Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanClassify,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String(telemetry.AttrPrompt, req.Prompt)))
	defer span.End()

	resp, err := c.do(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int(telemetry.AttrFeatures, resp.Summary.TotalFeatures))
	return resp, nil
}

func (c *Client) do(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.TransportError{Err: err}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &domain.TransportError{Err: fmt.Errorf("encode request: %w", err)}
	}

	hreq := fasthttp.AcquireRequest()
	hresp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(hreq)
	defer fasthttp.ReleaseResponse(hresp)

	hreq.SetRequestURI(c.endpoint)
	hreq.Header.SetMethod(fasthttp.MethodPost)
	hreq.Header.SetContentType("application/json")
	hreq.Header.Set("Accept", "application/json")
	hreq.SetBody(body)

	if err := c.http.DoDeadline(hreq, hresp, c.deadline(ctx)); err != nil {
		return nil, &domain.TransportError{Err: fmt.Errorf("post %s: %w", c.endpoint, err)}
	}

	status := hresp.StatusCode()
	if status < 200 || status > 299 {
		return nil, &domain.TransportError{StatusCode: status, Err: fmt.Errorf("unexpected status %d", status)}
	}

	// hresp's buffer is recycled on release.
	raw := append([]byte(nil), hresp.Body()...)
	parsed, err := domain.ParseQueryResponse(raw)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}
	return parsed, nil
}

func (c *Client) deadline(ctx context.Context) time.Time {
	d := time.Now().Add(c.timeout)
	if cd, ok := ctx.Deadline(); ok && cd.Before(d) {
		return cd
	}
	return d
}
