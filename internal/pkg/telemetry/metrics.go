package telemetry

// Span names shared by the services that start them.
const (
	SpanFindRoute  = "routing.FindRoute"
	SpanSOSCreate  = "dispatch.Create"
	SpanSOSAssign  = "dispatch.Assign"
	SpanSOSResolve = "dispatch.Resolve"
	SpanPredict    = "prediction.Predict"
)

// TracerName is the instrumentation scope for spans started by this module.
const TracerName = "github.com/samirrijal/minarah"
