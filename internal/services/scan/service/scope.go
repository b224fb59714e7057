package service

import (
	"context"

	"codesweep/internal/adapters/github"
	perr "codesweep/internal/platform/errors"
	"codesweep/internal/platform/logger"
	"codesweep/internal/services/scan/domain"
)

const memberPageSize = 100

// coreQuota is a local, per-resolution counter over the core API budget
// seeded once from GET /rate_limit and decremented per call
type coreQuota struct {
	remaining int
}

// take consumes one call from the budget; false means exhausted
func (q *coreQuota) take() bool {
	if q.remaining <= 1 {
		return false
	}
	q.remaining--
	return true
}

// resolveScopes enumerates the full scope set for a run
// lookup failures here are fatal; an exhausted core quota mid-resolution
// stops silently and the run proceeds with the partial scope
func (s *Svc) resolveScopes(ctx context.Context, cfg domain.RunConfig) (*domain.ScopeSet, error) {
	set := domain.NewScopeSet()
	log := logger.C(ctx)

	if cfg.Repo != "" {
		set.Put(cfg.Repo, domain.ScopeRepo)
	}
	if cfg.Target == "" {
		return set, nil
	}

	remaining, _, err := s.gh.CoreQuota(ctx)
	if err != nil {
		return nil, perr.RemoteLookupf("rate limit probe failed: %v", err)
	}
	quota := &coreQuota{remaining: remaining}

	if !quota.take() {
		log.Warn().Str("target", cfg.Target).Msg("core quota exhausted before classification, partial scope")
		return set, nil
	}
	typ, err := s.gh.AccountType(ctx, cfg.Target)
	if err != nil {
		return nil, perr.RemoteLookupf("classify %s failed: %v", cfg.Target, err)
	}
	set.Put(cfg.Target, domain.ScopeUser)

	if typ != "Organization" || !cfg.IncludeMembers {
		return set, nil
	}

	page := 1
	for {
		if !quota.take() {
			log.Warn().Int("page", page).Msg("core quota exhausted, stopping member resolution early")
			break
		}
		members, hdr, err := s.gh.OrgMembersPage(ctx, cfg.Target, page, memberPageSize)
		if err != nil {
			return nil, perr.RemoteLookupf("org %s members page %d failed: %v", cfg.Target, page, err)
		}
		for _, m := range members {
			set.Put(m.Login, domain.ScopeUser)
		}
		last, err := github.LastPage(hdr)
		if err != nil {
			return nil, perr.RemoteLookupf("org %s members pagination: %v", cfg.Target, err)
		}
		if page >= last {
			break
		}
		page++
	}

	log.Debug().Int("scopes", set.Len()).Msg("scope resolution complete")
	return set, nil
}
