package batch

import "fmt"

// ItemError records the failure of a single batch item.
type ItemError struct {
	// Index is the item's position in the submitted slice.
	Index int
	// Err is the item's own failure.
	Err error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("batch: item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
