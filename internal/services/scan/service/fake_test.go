package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"codesweep/internal/adapters/github"
	"codesweep/internal/modkit"
	"codesweep/internal/services/scan/domain"
)

// searchCall records one SearchCode invocation
type searchCall struct {
	query string
	page  int
}

// fakeAPI is a scripted searchAPI double
type fakeAPI struct {
	coreRemaining int
	coreErr       error

	accountTypes map[string]string
	accountErr   error

	memberPages [][]github.Member

	searchFn func(query string, page int) (github.SearchPage, http.Header, error)

	searchCalls  []searchCall
	memberCalls  int
	accountCalls int
	coreCalls    int
}

func (f *fakeAPI) CoreQuota(context.Context) (int, time.Time, error) {
	f.coreCalls++
	if f.coreErr != nil {
		return 0, time.Time{}, f.coreErr
	}
	return f.coreRemaining, time.Unix(2000, 0), nil
}

func (f *fakeAPI) AccountType(_ context.Context, login string) (string, error) {
	f.accountCalls++
	if f.accountErr != nil {
		return "", f.accountErr
	}
	if typ, ok := f.accountTypes[login]; ok {
		return typ, nil
	}
	return "User", nil
}

func (f *fakeAPI) OrgMembersPage(_ context.Context, _ string, page, _ int) ([]github.Member, http.Header, error) {
	f.memberCalls++
	if page < 1 || page > len(f.memberPages) {
		return nil, http.Header{}, fmt.Errorf("no such page %d", page)
	}
	h := http.Header{}
	if len(f.memberPages) > 1 {
		h.Set("Link", fmt.Sprintf(`<http://x/orgs/o/members?page=%d>; rel="last"`, len(f.memberPages)))
	}
	return f.memberPages[page-1], h, nil
}

func (f *fakeAPI) SearchCode(_ context.Context, query string, page, _ int) (github.SearchPage, http.Header, error) {
	f.searchCalls = append(f.searchCalls, searchCall{query: query, page: page})
	if f.searchFn != nil {
		return f.searchFn(query, page)
	}
	return github.SearchPage{}, http.Header{}, nil
}

// newTestSvc wires a service over the fake with instant, recorded sleeps
func newTestSvc(gh searchAPI) (*Svc, *[]time.Duration) {
	s := New(modkit.Deps{}, gh)
	sleeps := &[]time.Duration{}
	s.gov.now = func() time.Time { return time.Unix(1000, 0) }
	s.gov.sleep = func(d time.Duration) { *sleeps = append(*sleeps, d) }
	return s, sleeps
}

// baseCfg is a minimal valid repo-scoped run config
func baseCfg() domain.RunConfig {
	return domain.RunConfig{
		Token:    "tok",
		Severity: domain.SeverityObservation,
		Source:   "codesweep",
		TaskID:   "task-1",
		Terms:    []string{"secret"},
		Repo:     "acme/web",
		DryRun:   true,
	}
}

// hitPage builds a one-page search result with n hits against repoURL
func hitPage(total int, repoURL string, hits int) github.SearchPage {
	page := github.SearchPage{TotalCount: total}
	for i := 0; i < hits; i++ {
		page.Items = append(page.Items, github.SearchHit{
			Name:    fmt.Sprintf("file%d.txt", i),
			HTMLURL: repoURL + fmt.Sprintf("/blob/main/file%d.txt", i),
			Score:   1.5,
			Repository: github.RepoRef{
				FullName: "acme/web",
				HTMLURL:  repoURL,
				Owner:    github.Account{Login: "acme"},
			},
			TextMatches: []github.TextMatch{{
				Property: "content",
				Fragment: fmt.Sprintf("fragment %d", i),
				Matches:  []github.MatchSpan{{Text: "secret"}},
			}},
		})
	}
	return page
}
