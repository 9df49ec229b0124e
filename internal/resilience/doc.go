// Package resilience provides reliability and fault tolerance patterns for the application.
// It includes implementations of circuit breakers and retry logic used by the
// catalog client and the cover image loader.
//
// The package supports:
//   - Circuit breakers for external calls (books catalog API, image hosts)
//   - Retry logic with exponential backoff and jitter
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.CatalogAPIConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callExternalService()
//	})
//
//	err := retry.WithBackoff(ctx, retry.CatalogAPIConfig(), func() error {
//	    return performOperation()
//	})
package resilience
