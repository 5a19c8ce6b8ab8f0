// Package endpoint composes the resilience primitives into a per-endpoint
// bundle.
//
// An Endpoint is built from a Config, usually loaded from YAML:
//
//	endpoints:
//	  - name: gemini
//	    retry:
//	      max_retries: 3
//	      base_delay_ms: 1000
//	    timeout:
//	      ms: 30000
//	    rate_limit:
//	      requests_per_second: 2
//	    batch:
//	      max_concurrency: 4
//	    fallback:
//	      on: ["429", "503", "quota"]
//	    quota:
//	      limit: 40
//	      period: month
//
// Do checks the caller's quota, sends an operation through the endpoint's
// rate limiter, opens a span, applies the timeout and retry guards, and
// records the outcome in the endpoint's usage statistics. DoFallback does the
// same for an ordered list of alternates and reports which one served. Batch
// runs a slice of operations through Do under the configured concurrency
// bound.
//
// Quota keys travel in the context; see WithKey.
//
// Endpoints own all of their state; nothing is shared at package level.
package endpoint
