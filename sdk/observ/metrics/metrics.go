// Package metrics constructs the metrics the application will track.
package metrics

import (
	"expvar"
	"runtime"
	"time"
)

var m metrics

type metrics struct {
	goroutines    *expvar.Int
	requests      *expvar.Int
	errors        *expvar.Int
	panics        *expvar.Int
	inferences    *expvar.Int
	rejections    *expvar.Int
	truncations   *expvar.Int
	verdicts      *expvar.Map
	routes        *expvar.Map
	routeErrors   *expvar.Map
	modelLoadTime *avgMetric
	inferenceTime *avgMetric
	detections    *usage
}

func init() {
	m = metrics{
		goroutines:    expvar.NewInt("service_goroutines"),
		requests:      expvar.NewInt("service_requests"),
		errors:        expvar.NewInt("service_errors"),
		panics:        expvar.NewInt("service_panics"),
		inferences:    expvar.NewInt("detector_inferences"),
		rejections:    expvar.NewInt("detector_rejections"),
		truncations:   expvar.NewInt("detector_truncations"),
		verdicts:      expvar.NewMap("detector_verdicts"),
		routes:        expvar.NewMap("service_routes"),
		routeErrors:   expvar.NewMap("service_route_errors"),
		modelLoadTime: newAvgMetric("model_load"),
		inferenceTime: newAvgMetric("model_inference"),
		detections:    newUsage("usage_detections"),
	}
}

// AddGoroutines refreshes the goroutine metric.
func AddGoroutines() int64 {
	g := int64(runtime.NumGoroutine())
	m.goroutines.Set(g)
	return g
}

// AddRequests increments the request metric by 1.
func AddRequests() int64 {
	m.requests.Add(1)
	return m.requests.Value()
}

// AddErrors increments the errors metric by 1.
func AddErrors() int64 {
	m.errors.Add(1)
	return m.errors.Value()
}

// AddPanics increments the panics metric by 1.
func AddPanics() int64 {
	m.panics.Add(1)
	return m.panics.Value()
}

// AddInferences increments the forward pass metric by 1.
func AddInferences() int64 {
	m.inferences.Add(1)
	return m.inferences.Value()
}

// AddRejections increments the metric for inputs rejected before inference.
func AddRejections() int64 {
	m.rejections.Add(1)
	return m.rejections.Value()
}

// AddTruncations increments the metric for inputs cut to the token limit.
func AddTruncations() int64 {
	m.truncations.Add(1)
	return m.truncations.Value()
}

// AddVerdict increments the counter for the specified verdict label.
func AddVerdict(label string) {
	m.verdicts.Add(label, 1)
}

// AddRouteRequest increments the request counter for the specified route.
func AddRouteRequest(route string) {
	m.routes.Add(route, 1)
}

// AddRouteError increments the error counter for the specified route.
func AddRouteError(route string) {
	m.routeErrors.Add(route, 1)
}

// AddModelLoadTime captures the specified duration for loading the model.
func AddModelLoadTime(duration time.Duration) {
	m.modelLoadTime.add(duration.Seconds())
}

// AddInferenceTime captures the specified duration for one forward pass.
func AddInferenceTime(duration time.Duration) {
	m.inferenceTime.add(duration.Seconds())
}

// AddDetectionUsage captures the token usage of one detection.
func AddDetectionUsage(inputTokens int, originalTokens int, tokensPerSecond float64) {
	data := usageData{
		InputTokens:     inputTokens,
		OriginalTokens:  originalTokens,
		TokensPerSecond: tokensPerSecond,
	}

	m.detections.add(data)
}
