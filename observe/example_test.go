package observe_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/opcore/observe"
)

func ExampleNewObserver() {
	cfg := observe.Config{
		ServiceName: "content-studio",
		Version:     "1.0.0",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "none"},
		Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
	}

	ctx := context.Background()
	obs, err := observe.NewObserver(ctx, cfg)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer func() {
		_ = obs.Shutdown(ctx)
	}()

	fmt.Println("Observer created successfully")
	// Output:
	// Observer created successfully
}

func ExampleNewObserver_validation() {
	_, err := observe.NewObserver(context.Background(), observe.Config{})
	if errors.Is(err, observe.ErrMissingServiceName) {
		fmt.Println("Caught: missing service name")
	}
	// Output:
	// Caught: missing service name
}

func ExampleInstrument() {
	mw := observe.NewMiddleware(nil, nil, nil)

	generate := observe.Instrument(mw, observe.OperationMeta{Endpoint: "gemini", Name: "caption"},
		func(ctx context.Context) (string, error) {
			return "Warm loaves, cold mornings.", nil
		})

	caption, err := generate(context.Background())
	fmt.Println(caption, err)
	// Output:
	// Warm loaves, cold mornings. <nil>
}

func ExampleOperationMeta_SpanName() {
	meta := observe.OperationMeta{Endpoint: "storage", Name: "upload"}
	fmt.Println(meta.SpanName())
	// Output:
	// op.storage.upload
}
