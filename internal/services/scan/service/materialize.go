package service

import (
	"context"
	"time"

	"codesweep/internal/adapters/github"
	perr "codesweep/internal/platform/errors"
	pstr "codesweep/internal/platform/strings"
	"codesweep/internal/services/scan/domain"
	"codesweep/internal/services/scan/repo"

	"github.com/google/uuid"
)

// materializePage converts one page of hits into findings and merges them
// into scanned targets, appending each touched target to the run accumulator
//
// a target already appended from an earlier page is appended again; the
// accumulation list is a touch log, not a set
func (s *Svc) materializePage(
	ctx context.Context,
	st *runState,
	stg repo.Storage,
	page github.SearchPage,
	term string,
) error {
	for _, hit := range page.Items {
		fs := findingsFromHit(hit, term, st.cfg)
		st.findings += len(fs)

		tgt, err := stg.GetByURL(ctx, hit.Repository.HTMLURL)
		switch {
		case err == nil:
			tgt.Findings = append(tgt.Findings, fs...)
			applyRepoMeta(&tgt, hit.Repository)
			if err := stg.Update(ctx, tgt); err != nil {
				return err
			}
		case perr.IsCode(err, perr.ErrorCodeNotFound):
			tgt = targetFromRepo(hit.Repository)
			tgt.Findings = fs
			tgt, err = stg.Create(ctx, tgt)
			if err != nil {
				return err
			}
		default:
			return err
		}

		st.acc = append(st.acc, tgt)
		if len(st.acc) >= st.cfg.MaxResults {
			st.capHit = true
			return errCapReached
		}
	}
	return nil
}

// findingsFromHit builds one Finding per text match, or a single degraded
// Finding directly from the hit when the response carried no match detail
// (the degraded form has no score or file name)
func findingsFromHit(hit github.SearchHit, term string, cfg domain.RunConfig) []domain.Finding {
	base := domain.Finding{
		TaskID:    cfg.TaskID,
		Source:    cfg.Source,
		Severity:  cfg.Severity,
		KeySuffix: cfg.KeySuffix,
		FileURL:   hit.HTMLURL,
		CreatedAt: time.Now().UTC(),
	}

	if len(hit.TextMatches) == 0 {
		f := base
		f.ID = uuid.NewString()
		f.Term = term
		f.Type = term + " in file"
		return []domain.Finding{f}
	}

	out := make([]domain.Finding, 0, len(hit.TextMatches))
	for _, tm := range hit.TextMatches {
		f := base
		f.ID = uuid.NewString()

		matched := term
		if len(tm.Matches) > 0 && tm.Matches[0].Text != "" {
			matched = tm.Matches[0].Text
		}
		f.Term = matched
		f.MatchLocation = tm.Property
		f.CodeFragment = tm.Fragment
		f.Type = matched + " in " + tm.Property

		score := hit.Score
		f.Score = &score
		f.FileName = pstr.Ptr(hit.Name)

		out = append(out, f)
	}
	return out
}

func targetFromRepo(r github.RepoRef) domain.ScannedTarget {
	t := domain.ScannedTarget{
		RepoURL:  r.HTMLURL,
		FullName: r.FullName,
		Owner:    r.Owner.Login,
		CloneURL: r.CloneURL,
		Language: r.Language,
	}
	t.Visibility = repoVisibility(r)
	return t
}

func applyRepoMeta(t *domain.ScannedTarget, r github.RepoRef) {
	t.FullName = r.FullName
	t.Owner = r.Owner.Login
	t.CloneURL = r.CloneURL
	t.Language = r.Language
	t.Visibility = repoVisibility(r)
}

func repoVisibility(r github.RepoRef) string {
	if r.Visibility != "" {
		return r.Visibility
	}
	if r.Private {
		return "private"
	}
	return "public"
}
