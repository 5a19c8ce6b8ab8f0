package resilience

import (
	"errors"
	"strconv"
	"strings"
)

// DefaultRetryableMarkers are the substrings that mark a failure as transient
// for DefaultRetryable.
var DefaultRetryableMarkers = []string{
	"503",
	"502",
	"504",
	"timeout",
	"network",
	"ECONNRESET",
	"ETIMEDOUT",
}

// coder is implemented by errors that carry a symbolic code.
type coder interface {
	Code() string
}

// statusCoder is implemented by errors that carry a numeric status.
type statusCoder interface {
	StatusCode() int
}

// Classifier decides whether a failure is worth another attempt by matching
// case-insensitive substrings against the error message and code.
type Classifier struct {
	markers []string
}

// NewClassifier creates a classifier for the given markers. Empty markers
// are ignored.
func NewClassifier(markers ...string) *Classifier {
	c := &Classifier{markers: make([]string, 0, len(markers))}
	for _, m := range markers {
		if m == "" {
			continue
		}
		c.markers = append(c.markers, strings.ToLower(m))
	}
	return c
}

// Retryable reports whether err matches any marker. A TimeoutError matches
// only through its "timeout" text, like any other error.
func (c *Classifier) Retryable(err error) bool {
	if err == nil {
		return false
	}

	candidates := []string{strings.ToLower(err.Error())}

	var ce coder
	if errors.As(err, &ce) {
		candidates = append(candidates, strings.ToLower(ce.Code()))
	}
	var se statusCoder
	if errors.As(err, &se) {
		candidates = append(candidates, strconv.Itoa(se.StatusCode()))
	}

	for _, s := range candidates {
		for _, m := range c.markers {
			if strings.Contains(s, m) {
				return true
			}
		}
	}
	return false
}

// Markers returns a copy of the lower-cased markers.
func (c *Classifier) Markers() []string {
	out := make([]string, len(c.markers))
	copy(out, c.markers)
	return out
}

var defaultClassifier = NewClassifier(DefaultRetryableMarkers...)

// DefaultRetryable classifies err against DefaultRetryableMarkers.
func DefaultRetryable(err error) bool {
	return defaultClassifier.Retryable(err)
}

// RetryableIf returns a retry predicate matching any of markers.
func RetryableIf(markers ...string) func(error) bool {
	return NewClassifier(markers...).Retryable
}
