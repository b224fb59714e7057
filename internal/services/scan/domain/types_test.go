package domain

import "testing"

func TestScopeSetPreservesInsertionOrder(t *testing.T) {
	s := NewScopeSet()
	s.Put("acme/web", ScopeRepo)
	s.Put("ada", ScopeUser)
	s.Put("bob", ScopeUser)

	entries := s.Entries()
	if len(entries) != 3 {
		t.Fatalf("entries: %+v", entries)
	}
	wantNames := []string{"acme/web", "ada", "bob"}
	for i, e := range entries {
		if e.Name != wantNames[i] {
			t.Fatalf("order: want %q at %d, got %q", wantNames[i], i, e.Name)
		}
	}
}

func TestScopeSetLastWriteWinsOnKind(t *testing.T) {
	s := NewScopeSet()
	s.Put("acme", ScopeUser)
	s.Put("acme", ScopeRepo)

	entries := s.Entries()
	if len(entries) != 1 {
		t.Fatalf("name must appear at most once: %+v", entries)
	}
	if entries[0].Kind != ScopeRepo {
		t.Fatalf("kind: want repo got %q", entries[0].Kind)
	}
}

func TestScopeSetIgnoresEmptyNames(t *testing.T) {
	s := NewScopeSet()
	s.Put("", ScopeUser)
	if s.Len() != 0 {
		t.Fatalf("empty name must be ignored")
	}
}

func TestRunConfigDefaults(t *testing.T) {
	var c RunConfig
	c.Defaults()

	if c.MaxResults != 200 {
		t.Fatalf("max results: want 200 got %d", c.MaxResults)
	}
	if c.FileScope != FileScopeBoth {
		t.Fatalf("file scope: want both got %q", c.FileScope)
	}
	if c.Severity != SeverityObservation {
		t.Fatalf("severity: want observation got %q", c.Severity)
	}
	if c.Source == "" {
		t.Fatalf("source default missing")
	}
}

func TestRunConfigDefaultsMintTaskID(t *testing.T) {
	var a, b RunConfig
	a.Defaults()
	b.Defaults()

	if a.TaskID == "" {
		t.Fatalf("task id must be defaulted")
	}
	if a.TaskID == b.TaskID {
		t.Fatalf("minted task ids must be distinct: %q", a.TaskID)
	}

	c := RunConfig{TaskID: "task-1"}
	c.Defaults()
	if c.TaskID != "task-1" {
		t.Fatalf("explicit task id clobbered: %q", c.TaskID)
	}
}

func TestRunConfigDefaultsDoNotOverride(t *testing.T) {
	c := RunConfig{MaxResults: 50, FileScope: FileScopePath, Severity: SeverityHigh}
	c.Defaults()

	if c.MaxResults != 50 || c.FileScope != FileScopePath || c.Severity != SeverityHigh {
		t.Fatalf("explicit values clobbered: %+v", c)
	}
}
