package ratelimit_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/opcore/ratelimit"
)

func ExampleWrap() {
	limiter := ratelimit.New(ratelimit.Config{RequestsPerSecond: 50})
	defer limiter.Close()

	throttle := ratelimit.Wrap[string](limiter)

	for _, name := range []string{"sunrise.png", "harbour.png"} {
		url, err := throttle(context.Background(), func(ctx context.Context) (string, error) {
			return "https://cdn.example.com/" + name, nil
		})
		fmt.Println(url, err)
	}
	// Output:
	// https://cdn.example.com/sunrise.png <nil>
	// https://cdn.example.com/harbour.png <nil>
}

func ExampleNewTokenBucket() {
	bucket := ratelimit.NewTokenBucket(ratelimit.TokenBucketConfig{RequestsPerSecond: 5, Burst: 2})

	fmt.Println(bucket.Allow(), bucket.Allow(), bucket.Allow())
	// Output:
	// true true false
}
