package endpoint

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/opcore/ratelimit"
	"github.com/jonwraymond/opcore/resilience"
)

// Rate limiting strategies.
const (
	StrategyFIFO        = "fifo"
	StrategyTokenBucket = "token_bucket"
)

// Config is the resilience profile of one logical endpoint. Durations are
// integer milliseconds so profiles stay readable in YAML.
type Config struct {
	Name      string          `yaml:"name"`
	Retry     RetryConfig     `yaml:"retry"`
	Timeout   TimeoutConfig   `yaml:"timeout"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Batch     BatchConfig     `yaml:"batch"`
	Breaker   BreakerConfig   `yaml:"circuit_breaker"`
	Fallback  FallbackConfig  `yaml:"fallback"`
	Quota     QuotaConfig     `yaml:"quota"`
}

// RetryConfig overrides the default retry policy. Zero fields keep the
// defaults, except MaxRetries: nil keeps the default of 3 and an explicit 0
// means a single attempt.
type RetryConfig struct {
	Disabled    bool     `yaml:"disabled"`
	MaxRetries  *int     `yaml:"max_retries"`
	BaseDelayMs int      `yaml:"base_delay_ms"`
	MaxDelayMs  int      `yaml:"max_delay_ms"`
	Multiplier  float64  `yaml:"multiplier"`
	RetryOn     []string `yaml:"retry_on"`
	StrictMax   bool     `yaml:"strict_max_delay"`
}

// TimeoutConfig bounds every attempt. Zero Ms disables the guard.
type TimeoutConfig struct {
	Ms           int  `yaml:"ms"`
	KeepOnExpiry bool `yaml:"keep_on_expiry"`
}

// RateLimitConfig throttles dispatch. Zero RequestsPerSecond disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Strategy          string  `yaml:"strategy"`
	Burst             int     `yaml:"burst"`
}

// BatchConfig bounds batch concurrency. Zero means full parallelism.
type BatchConfig struct {
	MaxConcurrency int `yaml:"max_concurrency"`
}

// BreakerConfig opens a circuit after consecutive failed calls. Zero
// MaxFailures disables it.
type BreakerConfig struct {
	MaxFailures    int `yaml:"max_failures"`
	ResetTimeoutMs int `yaml:"reset_timeout_ms"`
}

// FallbackConfig decides which failures move DoFallback on to the next
// alternate. Empty On uses resilience.DefaultFallbackMarkers.
type FallbackConfig struct {
	On []string `yaml:"on"`
}

// QuotaConfig bounds admissions per caller key and calendar period. Zero
// Limit disables it.
type QuotaConfig struct {
	Limit  int    `yaml:"limit"`
	Period string `yaml:"period"`
}

// Validate checks the config for out-of-range values.
func (c Config) Validate() error {
	if c.Name == "" {
		return ErrMissingName
	}

	var errs []error
	if c.Retry.MaxRetries != nil && *c.Retry.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("%w: %s: max_retries must not be negative", ErrInvalidConfig, c.Name))
	}
	if c.Retry.BaseDelayMs < 0 || c.Retry.MaxDelayMs < 0 || c.Retry.Multiplier < 0 {
		errs = append(errs, fmt.Errorf("%w: %s: retry values must not be negative", ErrInvalidConfig, c.Name))
	}
	if c.Timeout.Ms < 0 {
		errs = append(errs, fmt.Errorf("%w: %s: timeout must not be negative", ErrInvalidConfig, c.Name))
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, fmt.Errorf("%w: %s: rate limit values must not be negative", ErrInvalidConfig, c.Name))
	}
	switch c.RateLimit.Strategy {
	case "", StrategyFIFO, StrategyTokenBucket:
	default:
		errs = append(errs, fmt.Errorf("%w: %s: unknown rate limit strategy %q", ErrInvalidConfig, c.Name, c.RateLimit.Strategy))
	}
	if c.Breaker.MaxFailures < 0 || c.Breaker.ResetTimeoutMs < 0 {
		errs = append(errs, fmt.Errorf("%w: %s: circuit breaker values must not be negative", ErrInvalidConfig, c.Name))
	}
	if c.Quota.Limit < 0 {
		errs = append(errs, fmt.Errorf("%w: %s: quota limit must not be negative", ErrInvalidConfig, c.Name))
	}
	switch c.Quota.Period {
	case "", ratelimit.PeriodHour, ratelimit.PeriodDay, ratelimit.PeriodMonth:
	default:
		errs = append(errs, fmt.Errorf("%w: %s: unknown quota period %q", ErrInvalidConfig, c.Name, c.Quota.Period))
	}
	if c.Batch.MaxConcurrency < 0 {
		errs = append(errs, fmt.Errorf("%w: %s: batch concurrency must not be negative", ErrInvalidConfig, c.Name))
	}
	return errors.Join(errs...)
}

// Policies converts the config into resilience policies. A nil policy means
// the corresponding guard is off.
func (c Config) Policies() (*resilience.RetryPolicy, *resilience.TimeoutPolicy) {
	var retry *resilience.RetryPolicy
	if !c.Retry.Disabled {
		p := resilience.DefaultRetryPolicy()
		if c.Retry.MaxRetries != nil {
			p.MaxRetries = *c.Retry.MaxRetries
		}
		if c.Retry.BaseDelayMs > 0 {
			p.BaseDelay = ms(c.Retry.BaseDelayMs)
		}
		if c.Retry.MaxDelayMs > 0 {
			p.MaxDelay = ms(c.Retry.MaxDelayMs)
		}
		if c.Retry.Multiplier > 0 {
			p.Multiplier = c.Retry.Multiplier
		}
		if len(c.Retry.RetryOn) > 0 {
			p.RetryIf = resilience.RetryableIf(c.Retry.RetryOn...)
		}
		p.StrictMaxDelay = c.Retry.StrictMax
		retry = &p
	}

	var timeout *resilience.TimeoutPolicy
	if c.Timeout.Ms > 0 {
		timeout = &resilience.TimeoutPolicy{
			Duration:       ms(c.Timeout.Ms),
			CancelOnExpiry: !c.Timeout.KeepOnExpiry,
		}
	}

	return retry, timeout
}

// FallbackIf returns the predicate that moves a chain on to its next
// alternate.
func (c Config) FallbackIf() func(error) bool {
	if len(c.Fallback.On) == 0 {
		return resilience.DefaultFallback
	}
	return resilience.RetryableIf(c.Fallback.On...)
}

// BreakerPolicy converts the breaker config; nil when disabled.
func (c Config) BreakerPolicy() *resilience.BreakerPolicy {
	if c.Breaker.MaxFailures == 0 {
		return nil
	}
	return &resilience.BreakerPolicy{
		MaxFailures:  c.Breaker.MaxFailures,
		ResetTimeout: ms(c.Breaker.ResetTimeoutMs),
	}
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

type document struct {
	Endpoints []Config `yaml:"endpoints"`
}

// LoadConfigs decodes an `endpoints:` YAML document and validates every
// entry. Unknown keys are rejected.
func LoadConfigs(r io.Reader) ([]Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("endpoint: decode config: %w", err)
	}

	seen := make(map[string]bool, len(doc.Endpoints))
	for _, cfg := range doc.Endpoints {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if seen[cfg.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, cfg.Name)
		}
		seen[cfg.Name] = true
	}
	return doc.Endpoints, nil
}
