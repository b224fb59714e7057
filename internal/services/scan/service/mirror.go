package service

import (
	"context"

	"codesweep/internal/platform/logger"
	pstr "codesweep/internal/platform/strings"
	"codesweep/internal/services/scan/domain"
)

// mirror flattens a finished run's findings into the clickhouse analytics
// table; best effort, failures never affect the run outcome
func (s *Svc) mirror(ctx context.Context, res domain.ScanResult) {
	if s.deps.CH == nil || len(res.Targets) == 0 {
		return
	}

	// the accumulator may list a target more than once per run; later touches
	// carry the merged finding set and freshest metadata, so only the last
	// occurrence per target id is flattened
	last := make(map[string]int, len(res.Targets))
	for i, t := range res.Targets {
		last[t.ID] = i
	}

	rows := make([][]any, 0, res.Findings)
	for i, t := range res.Targets {
		if last[t.ID] != i {
			continue
		}
		for _, f := range t.Findings {
			rows = append(rows, []any{
				res.RunID, f.ID, f.TaskID, f.Source, string(f.Severity),
				f.Term, f.MatchLocation, f.FileURL, t.RepoURL, t.FullName, t.Owner,
				pstr.Deref(t.Language), f.CreatedAt,
			})
		}
	}
	if len(rows) == 0 {
		return
	}

	if err := s.deps.CH.Insert(ctx, "findings_flat", rows); err != nil {
		logger.C(ctx).Warn().Err(err).Int("rows", len(rows)).Msg("clickhouse mirror failed")
		return
	}
	logger.C(ctx).Debug().Int("rows", len(rows)).Msg("clickhouse mirror complete")
}
