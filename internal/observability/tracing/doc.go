// Package tracing provides OpenTelemetry tracing for the API server and the
// catalog client.
//
// The tracer uses the global provider; without an SDK provider installed
// spans are no-ops. Outgoing catalog requests are wrapped in a
// "booksapi.fetch" span, cover downloads in "imagecache.download" and
// HTTP handlers in a server span per route.
//
//	r := chi.NewRouter()
//	r.Use(tracing.Middleware)
//
//	ctx, span := tracing.StartClient(ctx, "booksapi.fetch")
//	body, err := fetch(ctx)
//	tracing.End(span, err)
package tracing
