// Package temporal dials the Temporal cluster and hosts the payment workflows.
package temporal

import (
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
)

// Dial connects with structured logging and OpenTelemetry tracing interceptors.
func Dial(address, namespace string, logger *slog.Logger, tracer trace.Tracer) (client.Client, error) {
	if strings.TrimSpace(address) == "" {
		address = client.DefaultHostPort
	}
	if strings.TrimSpace(namespace) == "" {
		namespace = client.DefaultNamespace
	}
	options := client.Options{
		HostPort:  address,
		Namespace: namespace,
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	if tracer != nil {
		interceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{Tracer: tracer})
		if err != nil {
			return nil, fmt.Errorf("configure temporal tracing interceptor: %w", err)
		}
		options.Interceptors = append(options.Interceptors, interceptor)
	}
	c, err := client.Dial(options)
	if err != nil {
		return nil, fmt.Errorf("dial temporal: %w", err)
	}
	return c, nil
}
