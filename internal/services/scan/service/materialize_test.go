package service

import (
	"context"
	"testing"

	"codesweep/internal/adapters/github"
	"codesweep/internal/services/scan/domain"
)

func TestFindingsFromHitOnePerTextMatch(t *testing.T) {
	cfg := baseCfg()
	cfg.Severity = domain.SeverityHigh
	cfg.KeySuffix = "exp1"

	hit := github.SearchHit{
		Name:    "main.go",
		HTMLURL: "https://github.com/acme/web/blob/x/main.go",
		Score:   3.25,
		Repository: github.RepoRef{
			FullName: "acme/web",
			HTMLURL:  "https://github.com/acme/web",
			Owner:    github.Account{Login: "acme"},
		},
		TextMatches: []github.TextMatch{
			{Property: "content", Fragment: "key = abc", Matches: []github.MatchSpan{{Text: "key"}}},
			{Property: "path", Fragment: "secrets/main.go", Matches: []github.MatchSpan{{Text: "secrets"}}},
		},
	}

	fs := findingsFromHit(hit, "secrets", cfg)
	if len(fs) != 2 {
		t.Fatalf("want 2 findings, got %d", len(fs))
	}
	if fs[0].Term == fs[1].Term || fs[0].CodeFragment == fs[1].CodeFragment || fs[0].MatchLocation == fs[1].MatchLocation {
		t.Fatalf("findings must differ in term/fragment/location: %+v", fs)
	}
	for _, f := range fs {
		if f.Severity != domain.SeverityHigh || f.TaskID != "task-1" || f.KeySuffix != "exp1" {
			t.Fatalf("run config not applied uniformly: %+v", f)
		}
		if f.Score == nil || *f.Score != 3.25 {
			t.Fatalf("score missing: %+v", f)
		}
		if f.FileName == nil || *f.FileName != "main.go" {
			t.Fatalf("file name missing: %+v", f)
		}
		if f.FileURL != hit.HTMLURL {
			t.Fatalf("file url: %+v", f)
		}
	}
	if fs[0].Type != "key in content" || fs[1].Type != "secrets in path" {
		t.Fatalf("types: %q %q", fs[0].Type, fs[1].Type)
	}
}

func TestFindingsFromHitDegradedWithoutTextMatches(t *testing.T) {
	hit := github.SearchHit{
		Name:    "cfg.json",
		HTMLURL: "https://github.com/acme/web/blob/x/cfg.json",
		Score:   2.0,
	}

	fs := findingsFromHit(hit, "passwd", baseCfg())
	if len(fs) != 1 {
		t.Fatalf("want 1 degraded finding, got %d", len(fs))
	}
	f := fs[0]
	if f.Term != "passwd" || f.Type != "passwd in file" {
		t.Fatalf("degraded finding: %+v", f)
	}
	// degraded branch carries no score or file name detail
	if f.Score != nil || f.FileName != nil {
		t.Fatalf("degraded finding must lack score and file name: %+v", f)
	}
	if f.FileURL != hit.HTMLURL {
		t.Fatalf("file url: %+v", f)
	}
}

func TestMaterializeMergesByRepoURLButAppendsTouches(t *testing.T) {
	s, _ := newTestSvc(&fakeAPI{})
	stg := newMemStorage()
	st := &runState{cfg: baseCfg()}
	st.cfg.MaxResults = 100

	page := hitPage(2, "https://github.com/acme/web", 2)
	if err := s.materializePage(context.Background(), st, stg, page, "secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// both hits share the repo URL: one stored target, two findings on it
	tgt, err := stg.GetByURL(context.Background(), "https://github.com/acme/web")
	if err != nil {
		t.Fatalf("target lookup: %v", err)
	}
	if len(tgt.Findings) != 2 {
		t.Fatalf("merged findings: want 2 got %d", len(tgt.Findings))
	}

	// the accumulation list records every touch, including duplicates
	if len(st.acc) != 2 {
		t.Fatalf("acc: want 2 entries got %d", len(st.acc))
	}
	if st.acc[0].ID != st.acc[1].ID {
		t.Fatalf("touches must resolve to the same target identity")
	}
}

func TestMaterializeCapSignal(t *testing.T) {
	s, _ := newTestSvc(&fakeAPI{})
	stg := newMemStorage()
	st := &runState{cfg: baseCfg()}
	st.cfg.MaxResults = 1

	page := hitPage(2, "https://github.com/acme/web", 2)
	err := s.materializePage(context.Background(), st, stg, page, "secret")
	if err != errCapReached {
		t.Fatalf("want cap signal, got %v", err)
	}
	if !st.capHit {
		t.Fatalf("capHit not set")
	}
}

func TestMaterializeRefreshesTargetMetadata(t *testing.T) {
	s, _ := newTestSvc(&fakeAPI{})
	stg := newMemStorage()
	st := &runState{cfg: baseCfg()}
	st.cfg.MaxResults = 100

	lang := "Go"
	seeded := domain.ScannedTarget{
		RepoURL:  "https://github.com/acme/web",
		FullName: "acme/old-name",
	}
	if _, err := stg.Create(context.Background(), seeded); err != nil {
		t.Fatalf("seed: %v", err)
	}

	page := hitPage(1, "https://github.com/acme/web", 1)
	page.Items[0].Repository.Language = &lang
	if err := s.materializePage(context.Background(), st, stg, page, "secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tgt, err := stg.GetByURL(context.Background(), "https://github.com/acme/web")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if tgt.FullName != "acme/web" || tgt.Language == nil || *tgt.Language != "Go" {
		t.Fatalf("metadata not refreshed: %+v", tgt)
	}
}
