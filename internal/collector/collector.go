// Package collector drives the country × role query matrix and
// accumulates normalized records for one merge at the end.
package collector

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/taoufikbo/preprint-empirical/internal/models"
	"github.com/taoufikbo/preprint-empirical/internal/processing"
	"github.com/taoufikbo/preprint-empirical/internal/serpapi"
)

// Searcher is the fetch seam. *serpapi.Client satisfies it; tests
// substitute stubs.
type Searcher interface {
	Search(ctx context.Context, spec models.QuerySpec, maxResults int) ([]serpapi.RawJob, error)
}

// Outcome classifies how a single query ended.
type Outcome string

const (
	OutcomeOK     Outcome = "ok"
	OutcomeEmpty  Outcome = "empty"
	OutcomeFailed Outcome = "failed"
)

// QueryResult records one query's outcome so the run can end with a
// summary instead of errors lost inside the loop.
type QueryResult struct {
	Spec    models.QuerySpec
	Outcome Outcome
	Records int
	Err     error
}

// Collector walks the query matrix strictly one query at a time.
type Collector struct {
	searcher Searcher
	log      *slog.Logger
	now      func() time.Time
}

// New builds a Collector. A nil logger discards output.
func New(searcher Searcher, log *slog.Logger) *Collector {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Collector{searcher: searcher, log: log, now: time.Now}
}

// Collect fetches and normalizes up to maxPerQuery jobs for every
// query spec. A failure is recorded and never aborts the traversal;
// partial results fetched before the failure are kept. The traversal
// stops early only when ctx is cancelled.
func (c *Collector) Collect(ctx context.Context, specs []models.QuerySpec, maxPerQuery int) ([]models.Record, []QueryResult) {
	var batch []models.Record
	results := make([]QueryResult, 0, len(specs))

	for _, spec := range specs {
		if ctx.Err() != nil {
			c.log.Warn("collection interrupted", slog.Int("queries_left", len(specs)-len(results)))
			break
		}

		c.log.Info("query start",
			slog.String("country", spec.Country),
			slog.String("role", spec.Role),
		)

		jobs, err := c.searcher.Search(ctx, spec, maxPerQuery)

		now := c.now()
		for _, job := range jobs {
			batch = append(batch, processing.NormalizeJob(job, spec, now))
		}

		res := QueryResult{Spec: spec, Records: len(jobs)}
		switch {
		case err != nil:
			res.Outcome = OutcomeFailed
			res.Err = err
			c.log.Warn("query failed, continuing",
				slog.String("country", spec.Country),
				slog.String("role", spec.Role),
				slog.Int("partial_records", len(jobs)),
				slog.Any("err", err),
			)
		case len(jobs) == 0:
			res.Outcome = OutcomeEmpty
			c.log.Info("query returned nothing",
				slog.String("country", spec.Country),
				slog.String("role", spec.Role),
			)
		default:
			res.Outcome = OutcomeOK
			c.log.Info("query done",
				slog.String("country", spec.Country),
				slog.String("role", spec.Role),
				slog.Int("records", len(jobs)),
			)
		}
		results = append(results, res)
	}

	return batch, results
}

// Tally counts results per outcome for the end-of-run summary.
func Tally(results []QueryResult) (ok, empty, failed int) {
	for _, r := range results {
		switch r.Outcome {
		case OutcomeOK:
			ok++
		case OutcomeEmpty:
			empty++
		case OutcomeFailed:
			failed++
		}
	}
	return ok, empty, failed
}
