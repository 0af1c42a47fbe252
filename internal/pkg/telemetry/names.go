package telemetry

// Tracer and span names used for instrumentation.
const (
	TracerName = "github.com/samirrijal/seascope"

	SpanSubmit         = "query.submit"
	SpanClassify       = "classifier.query"
	SpanRenderComplete = "query.render_complete"
	SpanWarmCache      = "warm.cache"

	AttrSessionID = "seascope.session_id"
	AttrToken     = "seascope.token"
	AttrPrompt    = "seascope.prompt"
	AttrOutcome   = "seascope.outcome"
	AttrFeatures  = "seascope.features"
	AttrCacheHit  = "seascope.cache_hit"
)
