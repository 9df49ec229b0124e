// Package estimate refines the upper page bound of a catalog search from the
// shape of a catalog response.
package estimate

import (
	"context"
	"log/slog"

	"github.com/tidwall/gjson"

	"books-search/internal/common/pagination"
	"books-search/internal/repository"
)

// Probe outcomes, used as metric labels.
const (
	OutcomeEstimated   = "estimated"
	OutcomeProbeError  = "probe_error"
	OutcomeMalformed   = "malformed"
	OutcomeRemoteError = "remote_error"
	OutcomeEmpty       = "empty"
)

// Estimator issues one probe per call and derives a new upper page bound.
// It never fails: every error path returns the prior bound.
type Estimator struct {
	prober repository.CatalogProber
	logger *slog.Logger
}

// NewEstimator creates an Estimator over the given prober.
func NewEstimator(prober repository.CatalogProber, logger *slog.Logger) *Estimator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Estimator{prober: prober, logger: logger}
}

// EstimateUpperBound probes the catalog for q at page currentIndex and returns
// the new 0-based upper bound.
//
// Only q.Text and q.Params are used; the offset is currentIndex*pageSize and
// the limit is pageSize. The prior bound is returned when the probe fails,
// the body is not JSON, the body carries an error object, or the response
// reports no items.
func (e *Estimator) EstimateUpperBound(ctx context.Context, q repository.CatalogQuery, pageSize, currentIndex, priorIndex int) int {
	if pageSize <= 0 {
		return priorIndex
	}
	q.Offset = currentIndex * pageSize
	q.Limit = pageSize

	body, err := e.prober.Probe(ctx, q)
	if err != nil {
		e.logger.Warn("page bound probe failed",
			slog.String("query", q.Text),
			slog.Int("offset", q.Offset),
			slog.Any("error", err))
		recordProbe(OutcomeProbeError)
		return priorIndex
	}

	total, returned, outcome := parseEnvelope(body)
	if outcome != OutcomeEstimated {
		e.logger.Debug("page bound left unchanged",
			slog.String("query", q.Text),
			slog.String("outcome", outcome),
			slog.Int("prior", priorIndex))
		recordProbe(outcome)
		return priorIndex
	}

	bound := pagination.EstimateUpperBound(total, returned, pageSize, currentIndex, priorIndex)
	recordProbe(OutcomeEstimated)
	e.logger.Debug("page bound estimated",
		slog.String("query", q.Text),
		slog.Int("total_items", total),
		slog.Int("items_returned", returned),
		slog.Int("bound", bound))
	return bound
}

// parseEnvelope reads only the fields the estimate depends on.
func parseEnvelope(body []byte) (total, returned int, outcome string) {
	if !gjson.ValidBytes(body) {
		return 0, 0, OutcomeMalformed
	}
	res := gjson.ParseBytes(body)
	if !res.IsObject() {
		return 0, 0, OutcomeMalformed
	}
	if res.Get("error").Exists() {
		return 0, 0, OutcomeRemoteError
	}
	total = int(res.Get("totalItems").Int())
	items := res.Get("items")
	if items.IsArray() {
		returned = int(res.Get("items.#").Int())
	}
	if total <= 0 || returned <= 0 {
		return total, returned, OutcomeEmpty
	}
	return total, returned, OutcomeEstimated
}
