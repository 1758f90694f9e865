// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tracing wraps the OpenTelemetry SDK's tracer provider so
// command dispatch can be wrapped in spans without every call site
// needing to know how the provider was built.
package tracing

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/kvedge/respd/common"
)

var (
	tracer     trace.Tracer
	tracerOnce sync.Once
)

// Init installs a tracer provider as the global OpenTelemetry provider.
// No exporter is wired (there is no collector endpoint in scope for
// this server), so spans are created and ended but not shipped
// anywhere — useful for local `go test -race` timing assertions and as
// the attachment point for an exporter later.
func Init() {
	provider := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(provider)
	tracer = provider.Tracer(common.App)
}

// Tracer returns the package tracer, falling back to the global
// provider's default tracer if Init was never called.
func Tracer() trace.Tracer {
	tracerOnce.Do(func() {
		if tracer == nil {
			tracer = otel.Tracer(common.App)
		}
	})
	return tracer
}

// StartCommand starts a span named after the RESP verb being executed,
// tagged with the connection that issued it.
func StartCommand(ctx context.Context, verb, connID string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "command."+verb, trace.WithAttributes(
		attribute.String("respd.connection_id", connID),
	))
}
