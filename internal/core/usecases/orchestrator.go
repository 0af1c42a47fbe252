package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/seascope/internal/core/domain"
	"github.com/samirrijal/seascope/internal/core/ports"
	"github.com/samirrijal/seascope/internal/pkg/metrics"
	"github.com/samirrijal/seascope/internal/pkg/telemetry"
)

// OrchestratorOptions tunes status lifetimes and viewport fitting.
type OrchestratorOptions struct {
	SuccessTTL time.Duration
	ErrorTTL   time.Duration
	FitPadding float64
	Now        func() time.Time
}

// DefaultOrchestratorOptions returns the stock status lifetimes (3s success,
// 5s error) and a 10% fit padding.
func DefaultOrchestratorOptions() OrchestratorOptions {
	return OrchestratorOptions{
		SuccessTTL: 3 * time.Second,
		ErrorTTL:   5 * time.Second,
		FitPadding: DefaultFitPadding,
		Now:        time.Now,
	}
}

// OrchestratorDeps are the collaborators shared by every session.
// Publisher and QueryLog may be nil.
type OrchestratorDeps struct {
	Classifier ports.Classifier
	Reconciler *Reconciler
	Resolver   *RegionResolver
	Publisher  ports.EventPublisher
	QueryLog   ports.QueryLogRepository
	Options    OrchestratorOptions
}

// Orchestrator sequences one session's queries and owns its state. All state
// changes go through the mutex; the classification request runs outside it
// so pins and viewport updates stay responsive while a query is in flight.
type Orchestrator struct {
	id   string
	deps OrchestratorDeps
	opts OrchestratorOptions
	log  *slog.Logger

	mu    sync.Mutex
	state domain.State
}

// NewOrchestrator creates an idle orchestrator for sessionID.
func NewOrchestrator(sessionID string, deps OrchestratorDeps) *Orchestrator {
	opts := deps.Options
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FitPadding <= 0 {
		opts.FitPadding = DefaultFitPadding
	}
	if deps.Reconciler == nil {
		deps.Reconciler = NewReconciler(nil)
	}
	if deps.Resolver == nil {
		deps.Resolver = NewRegionResolver(nil)
	}
	return &Orchestrator{
		id:    sessionID,
		deps:  deps,
		opts:  opts,
		log:   slog.Default().With("session_id", sessionID),
		state: domain.NewState(),
	}
}

// ID returns the session id.
func (o *Orchestrator) ID() string { return o.id }

// Snapshot returns the current state with expired status messages hidden.
func (o *Orchestrator) Snapshot() domain.State {
	o.mu.Lock()
	s := o.state
	o.mu.Unlock()

	if !s.Status.Visible(o.opts.Now()) {
		s.Status = domain.StatusMessage{}
	}
	return s
}

// Layers returns the render payload for the current state.
func (o *Orchestrator) Layers() domain.RenderPayload {
	s := o.Snapshot()
	return domain.RenderPayload{Token: s.Token, Layers: BuildLayers(s), Fit: s.Fit}
}

// Submit runs one query. explicitRegion is used for point drops; otherwise
// the last reported viewport is used, or no region at all.
//
// Only the response to the latest submission is applied. An older response
// that arrives late is discarded and ErrStaleResponse is returned.
func (o *Orchestrator) Submit(ctx context.Context, prompt string, explicitRegion *domain.QueryRegion) (domain.State, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanSubmit,
		trace.WithAttributes(attribute.String(telemetry.AttrSessionID, o.id)))
	defer span.End()

	text := strings.TrimSpace(prompt)
	if text == "" {
		st := o.apply(func(s domain.State) domain.State {
			return withStatus(s, o.errorStatus("Please enter a query"))
		})
		o.publish(ctx, domain.EventStatus, st.Token, "", &st.Status, nil, nil)
		o.finish(ctx, span, &domain.QueryLogEntry{
			SessionID: o.id,
			Token:     st.Token,
			Prompt:    prompt,
			Outcome:   domain.OutcomeEmpty,
			Error:     domain.ErrEmptyQuery.Error(),
			CreatedAt: o.opts.Now(),
		}, domain.ErrEmptyQuery)
		return st, domain.ErrEmptyQuery
	}

	o.mu.Lock()
	region := explicitRegion
	if region == nil && o.state.Viewport != nil {
		r := o.deps.Resolver.FromViewport(*o.state.Viewport)
		region = &r
	}
	o.state = beginSubmit(o.state, text, region, domain.StatusMessage{
		Text: "Processing your query...",
		Kind: domain.StatusLoading,
	})
	token := o.state.Token
	loading := o.state.Status
	o.mu.Unlock()

	span.SetAttributes(
		attribute.Int64(telemetry.AttrToken, int64(token)),
		attribute.String(telemetry.AttrPrompt, text),
	)
	o.log.Info("query submitted", "token", token, "prompt", text, "region", region)
	o.publish(ctx, domain.EventStatus, token, "", &loading, nil, nil)

	start := time.Now()
	resp, err := o.deps.Classifier.Query(ctx, domain.QueryRequest{Prompt: text, Coordinates: region})
	elapsed := time.Since(start)
	metrics.QueryDuration.Observe(elapsed.Seconds())

	entry := &domain.QueryLogEntry{
		SessionID: o.id,
		Token:     token,
		Prompt:    text,
		Region:    region,
		Duration:  elapsed,
		CreatedAt: o.opts.Now(),
	}

	o.mu.Lock()
	if o.state.Token != token {
		o.mu.Unlock()
		o.log.Warn("stale response discarded", "token", token)
		entry.Outcome = domain.OutcomeStale
		o.finish(ctx, span, entry, domain.ErrStaleResponse)
		return o.Snapshot(), domain.ErrStaleResponse
	}

	if err == nil && resp == nil {
		err = errors.New("empty response from classifier")
	}

	var queryErr error
	switch {
	case err != nil:
		var te *domain.TransportError
		if !errors.As(err, &te) {
			err = &domain.TransportError{Err: err}
		}
		queryErr = err
		entry.Outcome = domain.OutcomeTransport
		o.state = applyFailure(o.state, domain.OutcomeTransport, o.errorStatus("Error: "+err.Error()))
	case resp.Status != domain.StatusSuccess:
		queryErr = &domain.ServiceError{Status: resp.Status, Raw: string(resp.Raw)}
		entry.Outcome = domain.OutcomeService
		o.state = applyFailure(o.state, domain.OutcomeService, o.errorStatus(queryErr.Error()))
	default:
		transient, names := o.deps.Reconciler.Reconcile(resp, text, o.state.PinnedNames)
		total := resp.Summary.TotalFeatures
		entry.Outcome = domain.OutcomeSuccess
		entry.TotalFeatures = total
		entry.Entities = names
		o.state = applySuccess(o.state, transient, names, total,
			o.successStatus(fmt.Sprintf("Query successful! Found %d results", total)))
	}
	st := o.state
	o.mu.Unlock()

	if queryErr != nil {
		entry.Error = queryErr.Error()
		o.log.Warn("query failed", "token", token, "outcome", entry.Outcome, "error", queryErr)
		o.publish(ctx, domain.EventQueryFailed, token, "", &st.Status, nil, nil)
	} else {
		o.log.Info("query succeeded", "token", token, "features", st.TotalFeatures, "entities", len(st.TransientNames))
		metrics.QueryFeatures.Observe(float64(st.Transient.FeatureCount()))
		lists := st.Lists()
		o.publish(ctx, domain.EventQuerySucceeded, token, "", &st.Status, nil, &lists)
	}
	o.finish(ctx, span, entry, queryErr)
	return st, queryErr
}

// RenderComplete is the renderer's signal that the geometry for token is on
// the map. It computes the pending viewport fit and returns it.
func (o *Orchestrator) RenderComplete(ctx context.Context, token uint64) (domain.Bounds, error) {
	_, span := telemetry.Tracer().Start(ctx, telemetry.SpanRenderComplete,
		trace.WithAttributes(
			attribute.String(telemetry.AttrSessionID, o.id),
			attribute.Int64(telemetry.AttrToken, int64(token)),
		))
	defer span.End()

	o.mu.Lock()
	if token != o.state.Token {
		fit := o.state.Fit
		o.mu.Unlock()
		return fit, domain.ErrStaleResponse
	}
	pending := o.state.FitPending
	if pending {
		o.state = withFit(o.state, FitView(o.opts.FitPadding, o.state.Transient, o.state.Pinned))
	}
	fit := o.state.Fit
	o.mu.Unlock()

	if pending {
		o.publish(ctx, domain.EventFit, token, "", nil, &fit, nil)
	}
	return fit, nil
}

// Pin moves name into the pinned set and re-fits the viewport.
func (o *Orchestrator) Pin(ctx context.Context, name string) (domain.State, error) {
	return o.pinOp(ctx, name, true)
}

// Unpin removes name from the pinned set and re-fits the viewport.
func (o *Orchestrator) Unpin(ctx context.Context, name string) (domain.State, error) {
	return o.pinOp(ctx, name, false)
}

func (o *Orchestrator) pinOp(ctx context.Context, name string, pin bool) (domain.State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return o.Snapshot(), fmt.Errorf("%w: entity name is required", domain.ErrInvalidInput)
	}

	o.mu.Lock()
	wasPinned := o.state.IsPinned(name)
	changed := pin != wasPinned
	if changed {
		var next domain.State
		if pin {
			next = Pin(o.state, name)
		} else {
			next = Unpin(o.state, name)
		}
		o.state = withFit(next, FitView(o.opts.FitPadding, next.Transient, next.Pinned))
	}
	st := o.state
	o.mu.Unlock()

	if !changed {
		return o.Snapshot(), nil
	}

	kind, op := domain.EventUnpinned, "unpin"
	if pin {
		kind, op = domain.EventPinned, "pin"
	}
	metrics.PinOperations.WithLabelValues(op).Inc()
	o.log.Info("entity "+op+"ned", "name", name, "pinned", len(st.PinnedNames))
	lists := st.Lists()
	o.publish(ctx, kind, st.Token, name, nil, &st.Fit, &lists)
	return o.Snapshot(), nil
}

// ViewportChanged records the visible map area for the next query.
func (o *Orchestrator) ViewportChanged(v domain.Viewport) domain.State {
	return o.apply(func(s domain.State) domain.State { return withViewport(s, v) })
}

// Clear drops the transient results and names. Pins are kept.
func (o *Orchestrator) Clear(ctx context.Context) domain.State {
	st := o.apply(func(s domain.State) domain.State {
		next := clearTransient(s, o.successStatus("Map cleared"))
		return withFit(next, FitView(o.opts.FitPadding, next.Pinned))
	})
	lists := st.Lists()
	o.publish(ctx, domain.EventCleared, st.Token, "", &st.Status, &st.Fit, &lists)
	return st
}

func (o *Orchestrator) apply(fn func(domain.State) domain.State) domain.State {
	o.mu.Lock()
	o.state = fn(o.state)
	s := o.state
	o.mu.Unlock()
	return s
}

func (o *Orchestrator) errorStatus(text string) domain.StatusMessage {
	return domain.StatusMessage{Text: text, Kind: domain.StatusError, ExpiresAt: o.opts.Now().Add(o.opts.ErrorTTL)}
}

func (o *Orchestrator) successStatus(text string) domain.StatusMessage {
	return domain.StatusMessage{Text: text, Kind: domain.StatusOK, ExpiresAt: o.opts.Now().Add(o.opts.SuccessTTL)}
}

// finish records metrics, span status and the query log entry.
func (o *Orchestrator) finish(ctx context.Context, span trace.Span, entry *domain.QueryLogEntry, err error) {
	metrics.QueriesTotal.WithLabelValues(string(entry.Outcome)).Inc()
	span.SetAttributes(
		attribute.String(telemetry.AttrOutcome, string(entry.Outcome)),
		attribute.Int(telemetry.AttrFeatures, entry.TotalFeatures),
	)
	if err != nil && !errors.Is(err, domain.ErrStaleResponse) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	if o.deps.QueryLog == nil {
		return
	}
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := o.deps.QueryLog.Insert(logCtx, entry); err != nil {
		o.log.Warn("query log insert failed", "error", err)
	}
}

func (o *Orchestrator) publish(ctx context.Context, kind string, token uint64, name string, status *domain.StatusMessage, fit *domain.Bounds, lists *domain.DisplayLists) {
	if o.deps.Publisher == nil {
		return
	}
	ev := &domain.SessionEvent{
		SessionID: o.id,
		Kind:      kind,
		Token:     token,
		Name:      name,
		Status:    status,
		Fit:       fit,
		Lists:     lists,
		At:        o.opts.Now(),
	}
	if err := o.deps.Publisher.PublishSessionEvent(ctx, ev); err != nil {
		o.log.Warn("publish session event failed", "kind", kind, "error", err)
	}
}
