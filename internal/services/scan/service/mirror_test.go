package service

import (
	"context"
	"testing"

	"codesweep/internal/modkit"
	"codesweep/internal/platform/store"
	"codesweep/internal/services/scan/domain"
)

// fakeCH captures flattened mirror rows
type fakeCH struct {
	table string
	rows  [][]any
	err   error
}

func (f *fakeCH) Insert(_ context.Context, table string, data any) error {
	if f.err != nil {
		return f.err
	}
	f.table = table
	f.rows = append(f.rows, data.([][]any)...)
	return nil
}

func (f *fakeCH) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }

func (f *fakeCH) Close() error { return nil }

func TestMirrorFlattensLatestTouchPerTarget(t *testing.T) {
	f1 := domain.Finding{ID: "f1", Term: "alpha"}
	f2 := domain.Finding{ID: "f2", Term: "beta"}
	f3 := domain.Finding{ID: "f3", Term: "alpha"}

	first := domain.ScannedTarget{ID: "t1", RepoURL: "https://github.com/acme/web", Findings: []domain.Finding{f1}}
	other := domain.ScannedTarget{ID: "t2", RepoURL: "https://github.com/acme/api", Findings: []domain.Finding{f3}}
	merged := first
	merged.Findings = []domain.Finding{f1, f2}

	ch := &fakeCH{}
	s := New(modkit.Deps{CH: ch}, &fakeAPI{})

	s.mirror(context.Background(), domain.ScanResult{
		RunID: "run-1",
		// t1 is touched twice; the second touch carries the merged findings
		Targets:  []domain.ScannedTarget{first, other, merged},
		Findings: 3,
	})

	if ch.table != "findings_flat" {
		t.Fatalf("table: %q", ch.table)
	}
	if len(ch.rows) != 3 {
		t.Fatalf("rows: want 3 got %d", len(ch.rows))
	}
	got := map[string]bool{}
	for _, r := range ch.rows {
		got[r[1].(string)] = true
	}
	for _, id := range []string{"f1", "f2", "f3"} {
		if !got[id] {
			t.Fatalf("finding %s missing from mirror, got %v", id, got)
		}
	}
}

func TestMirrorSkipsWhenNoBackendOrNoTargets(t *testing.T) {
	ch := &fakeCH{}
	s := New(modkit.Deps{CH: ch}, &fakeAPI{})
	s.mirror(context.Background(), domain.ScanResult{RunID: "run-1"})
	if len(ch.rows) != 0 {
		t.Fatalf("empty run must not insert: %v", ch.rows)
	}

	// no clickhouse wired at all is fine too
	bare := New(modkit.Deps{}, &fakeAPI{})
	bare.mirror(context.Background(), domain.ScanResult{
		Targets: []domain.ScannedTarget{{ID: "t1", Findings: []domain.Finding{{ID: "f1"}}}},
	})
}
