package swagger

import "github.com/antonio-alexander/go-employee-query/internal/data"

// swagger:route DELETE /cache Operations ClearCache
// Removes every cached page and employee.
//
// responses:
//   204: NoContent
//   500: ErrorResponse

// swagger:route GET /cache/counters Operations ReadCacheCounters
// Reads the cache hits and misses per operation.
//
// responses:
//   200: CacheCountersGetResponseOk

// swagger:route DELETE /cache/counters Operations ClearCacheCounters
// Resets the cache hits and misses.
//
// responses:
//   204: NoContent

// swagger:route GET /timers Operations ReadTimers
// Reads the total and average time (ns) spent per endpoint.
//
// responses:
//   200: TimersGetResponseOk

// swagger:route DELETE /timers Operations ClearTimers
// Resets the endpoint timers.
//
// responses:
//   204: NoContent

// swagger:route GET /metrics Operations ReadMetrics
// Prometheus metrics for query strategies, stages and candidate sets.
//
//     Produces:
//     - text/plain
//
// responses:
//   200: description: prometheus text exposition

// swagger:response NoContent
type NoContent struct{}

// swagger:response CacheCountersGetResponseOk
type CacheCountersGetResponseOk struct {
	// in:body
	CacheCounters data.CacheCounters
}

// swagger:response TimersGetResponseOk
type TimersGetResponseOk struct {
	// in:body
	Timers data.Timers
}

// swagger:parameters ClearCache ReadCacheCounters ClearCacheCounters ReadTimers ClearTimers
type OperationsParams struct {
	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
