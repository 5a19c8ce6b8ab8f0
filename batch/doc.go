// Package batch runs a list of deferred operations with bounded concurrency.
//
// Execute acquires a slot from a counting semaphore before launching each
// operation and releases it when that operation finishes, so at most
// MaxConcurrency operations are in flight. Results are returned in input
// order regardless of completion order, and a failing item never aborts its
// siblings: its error is recorded at its own index.
//
//	results := batch.Execute(ctx, uploads, batch.Options{
//	    MaxConcurrency: 4,
//	    Retry:          &retryPolicy,
//	    Timeout:        &timeoutPolicy,
//	})
//	for i, r := range results {
//	    if r.Err != nil {
//	        log.Printf("upload %d failed: %v", i, r.Err)
//	    }
//	}
package batch
