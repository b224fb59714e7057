package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"codesweep/internal/adapters/github"
	perr "codesweep/internal/platform/errors"
	"codesweep/internal/platform/logger"
	"codesweep/internal/services/scan/domain"
	"codesweep/internal/services/scan/repo"

	"github.com/google/uuid"
)

const (
	searchPageSize = 100

	// one initial attempt plus two retries per query unit
	maxQueryAttempts = 3
)

var (
	errCapReached = errors.New("result cap reached")
	errAbandoned  = errors.New("query abandoned")
)

// runState is the per-run mutable state threaded through the driver
type runState struct {
	cfg      domain.RunConfig
	acc      []domain.ScannedTarget
	queries  int
	findings int
	capHit   bool
}

// Scan implements domain.RunnerPort
// it walks scopes, terms, and pages strictly sequentially and never lets a
// per-query failure escape the loop; only configuration and resolution
// failures are fatal
func (s *Svc) Scan(ctx context.Context, cfg domain.RunConfig) (domain.ScanResult, error) {
	cfg.Defaults()
	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID, cfg.TaskID)
	log := logger.C(ctx)

	stg := s.storageFor(cfg)

	if err := s.validate.Struct(cfg); err != nil {
		cerr := perr.Configf("invalid run config: %v", err)
		s.event(ctx, stg, cfg, domain.SeverityHigh, cerr.Error())
		return domain.ScanResult{}, cerr
	}

	terms, err := s.buildTerms(ctx, cfg)
	if err != nil {
		s.event(ctx, stg, cfg, domain.SeverityHigh, err.Error())
		return domain.ScanResult{}, err
	}
	scopes, err := s.resolveScopes(ctx, cfg)
	if err != nil {
		s.event(ctx, stg, cfg, domain.SeverityHigh, err.Error())
		return domain.ScanResult{}, err
	}

	log.Info().
		Int("scopes", scopes.Len()).
		Int("terms", len(terms)).
		Int("max_results", cfg.MaxResults).
		Msg("scan run starting")

	res := domain.ScanResult{RunID: runID, Started: time.Now().UTC()}
	st := &runState{cfg: cfg}

outer:
	for _, sc := range scopes.Entries() {
		for _, term := range terms {
			st.queries++
			if err := s.runQuery(ctx, st, stg, sc, term); err != nil {
				if errors.Is(err, errCapReached) {
					break outer
				}
				if ctx.Err() != nil {
					return res, ctx.Err()
				}
				// store-level failure for this unit: log and keep going
				s.event(ctx, stg, cfg, domain.SeverityMedium,
					fmt.Sprintf("query %s/%s failed: %v", sc.Name, term, err))
			}
		}
	}

	if st.capHit && !cfg.KeepPartialOnCap {
		// inherited policy: a capped run yields nothing
		st.acc = nil
	}

	res.Targets = st.acc
	res.Queries = st.queries
	res.Findings = st.findings
	res.CapHit = st.capHit
	res.Finished = time.Now().UTC()

	s.mirror(ctx, res)
	s.event(ctx, stg, cfg, domain.SeverityLow, fmt.Sprintf(
		"scan run finished: %d queries, %d findings, %d targets, cap_hit=%t",
		res.Queries, res.Findings, len(res.Targets), res.CapHit))

	return res, nil
}

// runQuery executes the full state machine for one (scope, term) unit,
// including pagination; per-unit failures are consumed here
func (s *Svc) runQuery(
	ctx context.Context,
	st *runState,
	stg repo.Storage,
	sc domain.ScopeEntry,
	term string,
) error {
	log := logger.C(ctx)
	query := buildQuery(term, sc, st.cfg.FileScope)

	page, hdr, err := s.fetchPage(ctx, query, 1)
	if err != nil {
		s.noteQueryFailure(ctx, stg, st.cfg, query, 1, err)
		return nil
	}
	ri := github.Rate(hdr)

	if page.TotalCount == 0 {
		s.gov.AwaitBudget(ri.Remaining, ri.Reset)
		return nil
	}

	if err := s.materializePage(ctx, st, stg, page, term); err != nil {
		return err
	}
	s.gov.AwaitBudget(ri.Remaining, ri.Reset)

	if page.TotalCount <= searchPageSize {
		return nil
	}

	last, err := github.LastPage(hdr)
	if err != nil {
		// header parse failure is a hard failure for this unit only
		s.noteQueryFailure(ctx, stg, st.cfg, query, 1, err)
		return nil
	}
	for p := 2; p <= last; p++ {
		pg, h, err := s.fetchPage(ctx, query, p)
		if err != nil {
			s.noteQueryFailure(ctx, stg, st.cfg, query, p, err)
			return nil
		}
		if err := s.materializePage(ctx, st, stg, pg, term); err != nil {
			return err
		}
		ri := github.Rate(h)
		s.gov.AwaitBudget(ri.Remaining, ri.Reset)
	}

	log.Debug().Str("query", query).Int("pages", last).Msg("query complete")
	return nil
}

// fetchPage issues one search page with the bounded retry policy
//
// explicit retry-after: wait and retry the same page, up to maxQueryAttempts
// exhausted quota without retry-after: wait for reset, then abandon the unit
// anything else: hard failure, surfaced to the caller to log and move on
func (s *Svc) fetchPage(ctx context.Context, query string, page int) (github.SearchPage, http.Header, error) {
	for attempt := 0; attempt < maxQueryAttempts; attempt++ {
		pg, hdr, err := s.gh.SearchCode(ctx, query, page, searchPageSize)
		if err == nil {
			return pg, hdr, nil
		}
		if ctx.Err() != nil {
			return github.SearchPage{}, nil, ctx.Err()
		}

		var rle *github.RateLimitError
		if errors.As(err, &rle) {
			if rle.HasRetryAfter() {
				logger.C(ctx).Warn().
					Str("query", query).
					Int("page", page).
					Int("attempt", attempt).
					Int("retry_after_s", rle.Rate.RetryAfter).
					Msg("search throttled, retrying after explicit hint")
				s.gov.AwaitRetry(rle.Rate.RetryAfter)
				continue
			}
			// ordinary exhausted quota: wait out the reset but give this
			// query up rather than retrying it
			s.gov.AwaitBudget(0, rle.Rate.Reset)
			return github.SearchPage{}, nil, errAbandoned
		}
		return github.SearchPage{}, nil, err
	}
	return github.SearchPage{}, nil, errAbandoned
}

func (s *Svc) noteQueryFailure(
	ctx context.Context,
	stg repo.Storage,
	cfg domain.RunConfig,
	query string,
	page int,
	err error,
) {
	if errors.Is(err, errAbandoned) {
		s.event(ctx, stg, cfg, domain.SeverityLow,
			fmt.Sprintf("abandoned query %q page %d after rate limiting", query, page))
		return
	}
	s.event(ctx, stg, cfg, domain.SeverityMedium,
		fmt.Sprintf("query %q page %d failed: %v", query, page, err))
}

// buildQuery combines term, file-scope qualifier, and scope qualifier
func buildQuery(term string, sc domain.ScopeEntry, fs domain.FileScope) string {
	var in string
	switch fs {
	case domain.FileScopeFile:
		in = "in:file"
	case domain.FileScopePath:
		in = "in:path"
	default:
		in = "in:file,path"
	}
	qual := "user:" + sc.Name
	if sc.Kind == domain.ScopeRepo {
		qual = "repo:" + sc.Name
	}
	return term + " " + in + " " + qual
}
