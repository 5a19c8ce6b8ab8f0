package endpoint

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRegistry(t *testing.T) {
	configs, err := LoadConfigs(strings.NewReader(profiles))
	if err != nil {
		t.Fatal(err)
	}

	r, err := NewRegistry(configs)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	defer r.Close()

	names := r.Names()
	if len(names) != 2 || names[0] != "gemini" || names[1] != "storage" {
		t.Errorf("Names() = %v", names)
	}

	ep, err := r.Get("storage")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ep.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0 for token bucket", ep.Pending())
	}

	if _, err := r.Get("openai"); !errors.Is(err, ErrUnknownEndpoint) {
		t.Errorf("Get() error = %v, want ErrUnknownEndpoint", err)
	}

	results := r.Health(context.Background())
	if len(results) != 2 {
		t.Errorf("Health() = %v, want one result per endpoint", results)
	}
}

func TestNewRegistry_Duplicate(t *testing.T) {
	_, err := NewRegistry([]Config{{Name: "a"}, {Name: "a"}})
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("NewRegistry() error = %v, want ErrDuplicateName", err)
	}
}
