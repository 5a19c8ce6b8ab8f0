// Package resilience wraps deferred operations with a timeout guard and a
// classified retry engine.
//
// # Patterns
//
//   - Timeout: races one invocation against a deadline and disowns it when
//     the deadline wins.
//
//   - Retry: re-invokes an operation while its failures are classified as
//     transient, waiting an exponentially growing, jittered delay between
//     attempts.
//
//   - Timeout and retry: every attempt is individually time-bounded and a
//     per-attempt timeout is itself subject to classification.
//
//   - Breaker: stops invoking a dependency after consecutive failures and
//     tries it again after a cool-down.
//
// The delay before retry n is min(MaxDelay, BaseDelay*Multiplier^(n-1)) plus
// up to 10% of that value as jitter. Jitter is added after the clamp unless
// RetryPolicy.StrictMaxDelay is set.
//
// # Usage
//
//	policy := resilience.DefaultRetryPolicy()
//	policy.RetryIf = resilience.RetryableIf("503", "timeout", "rate limit")
//
//	img, err := resilience.WithTimeoutAndRetry(ctx,
//	    func(ctx context.Context) ([]byte, error) {
//	        return generateImage(ctx, prompt)
//	    },
//	    policy,
//	    resilience.DefaultTimeoutPolicy(),
//	)
//
// Timeout and retry hold no shared state; every call owns its attempt
// counter. A Breaker is the one stateful primitive and is owned by its caller.
package resilience
