package workflows

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/seascope/internal/core/domain"
	"github.com/samirrijal/seascope/internal/core/usecases"
	"github.com/samirrijal/seascope/internal/pkg/metrics"
	"github.com/samirrijal/seascope/internal/pkg/telemetry"
)

// Refresher re-runs a query and stores a successful response in the cache.
type Refresher interface {
	Refresh(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error)
}

// WarmActivities holds the activity implementations for the cache-warm workflow.
type WarmActivities struct {
	Catalog   *usecases.CatalogService
	Refresher Refresher
}

// ListPresets reloads the catalog and returns its preset prompts.
func (a *WarmActivities) ListPresets(ctx context.Context) ([]string, error) {
	if a.Catalog == nil {
		return nil, temporal.NewNonRetryableApplicationError("catalog not configured", "Config", nil)
	}
	if err := a.Catalog.Load(ctx); err != nil {
		return nil, err
	}
	return a.Catalog.Presets(), nil
}

// WarmPrompt refreshes the cached response for one prompt and returns its
// feature count. A service failure is final; transport failures are retried.
func (a *WarmActivities) WarmPrompt(ctx context.Context, prompt string, region *domain.QueryRegion) (int, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanWarmCache,
		trace.WithAttributes(attribute.String(telemetry.AttrPrompt, prompt)))
	defer span.End()

	resp, err := a.Refresher.Refresh(ctx, domain.QueryRequest{Prompt: prompt, Coordinates: region})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.WarmPrompts.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("warm %q: %w", prompt, err)
	}
	if resp == nil {
		metrics.WarmPrompts.WithLabelValues("error").Inc()
		return 0, temporal.NewNonRetryableApplicationError("empty response for "+prompt, "EmptyResponse", nil)
	}
	if resp.Status != domain.StatusSuccess {
		se := &domain.ServiceError{Status: resp.Status, Raw: string(resp.Raw)}
		span.SetStatus(codes.Error, se.Error())
		metrics.WarmPrompts.WithLabelValues("failed").Inc()
		return 0, temporal.NewNonRetryableApplicationError(se.Error(), "ServiceError", se)
	}

	metrics.WarmPrompts.WithLabelValues("ok").Inc()
	span.SetAttributes(attribute.Int(telemetry.AttrFeatures, resp.Summary.TotalFeatures))
	slog.Info("prompt warmed", "prompt", prompt, "features", resp.Summary.TotalFeatures)
	return resp.Summary.TotalFeatures, nil
}
