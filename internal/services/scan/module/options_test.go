package module

import (
	"testing"

	"codesweep/internal/platform/config"
)

func TestFromConfigReadsTermLines(t *testing.T) {
	t.Setenv("SCAN_TERMS", "alpha\n\n  beta  \n")

	opts := FromConfig(config.New())

	want := []string{"alpha", "beta"}
	if len(opts.Terms) != len(want) {
		t.Fatalf("terms: %v", opts.Terms)
	}
	for i := range want {
		if opts.Terms[i] != want[i] {
			t.Fatalf("terms[%d]: want %q got %q", i, want[i], opts.Terms[i])
		}
	}
}

func TestFromConfigDefaults(t *testing.T) {
	t.Setenv("SCAN_TERMS", "")

	opts := FromConfig(config.New())

	if len(opts.Terms) != 0 {
		t.Fatalf("unexpected default terms: %v", opts.Terms)
	}
	if opts.MaxResults != 200 || opts.FileScope != "both" || !opts.IncludeMembers {
		t.Fatalf("defaults: %+v", opts)
	}
}
