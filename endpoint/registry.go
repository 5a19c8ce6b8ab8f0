package endpoint

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/opcore/health"
)

// Registry owns a set of endpoints built from loaded configs.
type Registry struct {
	endpoints map[string]*Endpoint
	order     []string
	health    *health.Aggregator
}

// NewRegistry builds one Endpoint per config. All endpoints share opts.
func NewRegistry(configs []Config, opts ...Option) (*Registry, error) {
	r := &Registry{
		endpoints: make(map[string]*Endpoint, len(configs)),
		health:    health.NewAggregator(health.AggregatorConfig{}),
	}

	for _, cfg := range configs {
		if _, ok := r.endpoints[cfg.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, cfg.Name)
		}
		ep, err := New(cfg, opts...)
		if err != nil {
			return nil, err
		}
		r.endpoints[cfg.Name] = ep
		r.order = append(r.order, cfg.Name)
		r.health.Register(ep.HealthChecker())
	}
	return r, nil
}

// Get returns the endpoint registered under name.
func (r *Registry) Get(name string) (*Endpoint, error) {
	ep, ok := r.endpoints[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, name)
	}
	return ep, nil
}

// Names returns endpoint names in config order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Health checks every endpoint.
func (r *Registry) Health(ctx context.Context) map[string]health.Result {
	return r.health.CheckAll(ctx)
}

// Close closes every endpoint.
func (r *Registry) Close() error {
	var errs []error
	for _, name := range r.order {
		errs = append(errs, r.endpoints[name].Close())
	}
	return errors.Join(errs...)
}
