// Package service implements the scan runner
package service

import (
	"context"
	"net/http"
	"time"

	"codesweep/internal/adapters/github"
	"codesweep/internal/modkit"
	"codesweep/internal/modkit/repokit"
	"codesweep/internal/platform/logger"
	"codesweep/internal/services/scan/domain"
	"codesweep/internal/services/scan/repo"

	"github.com/go-playground/validator/v10"
)

// searchAPI is the slice of the GitHub client the scan service consumes
type searchAPI interface {
	CoreQuota(ctx context.Context) (int, time.Time, error)
	AccountType(ctx context.Context, login string) (string, error)
	OrgMembersPage(ctx context.Context, org string, page, perPage int) ([]github.Member, http.Header, error)
	SearchCode(ctx context.Context, query string, page, perPage int) (github.SearchPage, http.Header, error)
}

// Svc runs scoped code search scans
type Svc struct {
	deps     modkit.Deps
	gh       searchAPI
	gov      *governor
	storage  repo.Storage
	validate *validator.Validate
	httpc    *http.Client
	log      logger.Logger
}

// New constructs the scan service
func New(deps modkit.Deps, gh searchAPI) *Svc {
	s := &Svc{
		deps:     deps,
		gh:       gh,
		gov:      newGovernor(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		httpc:    &http.Client{Timeout: 10 * time.Second},
		log:      *logger.Named("scan"),
	}
	if deps.PG != nil {
		s.storage = repokit.MustBind(repo.NewPG(), deps.PG)
	}
	return s
}

// storageFor picks the persistence seam for a run
// dry runs and storeless wiring fall back to an in memory store
func (s *Svc) storageFor(cfg domain.RunConfig) repo.Storage {
	if cfg.DryRun || s.storage == nil {
		return newMemStorage()
	}
	return s.storage
}

// event records an operational event and mirrors it to the log
func (s *Svc) event(ctx context.Context, stg repo.Storage, cfg domain.RunConfig, sev domain.Severity, msg string) {
	logger.C(ctx).Info().Str("severity", string(sev)).Msg(msg)
	if stg == nil {
		return
	}
	if err := stg.Record(ctx, cfg.TaskID, sev, msg); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("event sink record failed")
	}
}
