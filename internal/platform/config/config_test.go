package config

import (
	"testing"
	"time"

	kit "codesweep/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	root := New()
	sc := root.Prefix("SCAN_")
	if got := sc.key("TARGET"); got != "SCAN_TARGET" {
		t.Fatalf("key() = %q, want %q", got, "SCAN_TARGET")
	}
	// nested prefix
	scGH := sc.Prefix("GH_")
	if got := scGH.key("TOKEN"); got != "SCAN_GH_TOKEN" {
		t.Fatalf("nested key() = %q, want %q", got, "SCAN_GH_TOKEN")
	}
}

// Must* panics

func TestMustString(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_NAME", "  codesweep ")
	got := c.MustString("NAME")
	if got != "codesweep" {
		t.Fatalf("MustString = %q, want %q", got, "codesweep")
	}

	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMustInt(t *testing.T) {
	c := New().Prefix("SVC_")
	t.Setenv("SVC_WORKERS", "  8 ")
	if got := c.MustInt("WORKERS"); got != 8 {
		t.Fatalf("MustInt = %d, want %d", got, 8)
	}
	kit.MustPanic(t, func() { _ = c.MustInt("MISSING") })
	t.Setenv("SVC_BAD", "x")
	kit.MustPanic(t, func() { _ = c.MustInt("BAD") })
}

func TestMustURL(t *testing.T) {
	c := New().Prefix("U_")
	t.Setenv("U_BASE", "https://example.com/api")
	u := c.MustURL("BASE")
	if !u.IsAbs() {
		t.Fatalf("MustURL returned non-absolute URL")
	}
	t.Setenv("U_BAD", "/relative")
	kit.MustPanic(t, func() { _ = c.MustURL("BAD") })
}

func TestRequire(t *testing.T) {
	c := New().Prefix("R_")
	t.Setenv("R_ONE", "1")
	t.Setenv("R_TWO", "2")
	kit.MustNotPanic(t, func() { c.Require("ONE", "TWO") })
	kit.MustPanic(t, func() { c.Require("ONE", "MISSING") })
}

// May* defaults

func TestMayString(t *testing.T) {
	c := New().Prefix("M_")
	if got := c.MayString("NOPE", "fallback"); got != "fallback" {
		t.Fatalf("MayString default = %q", got)
	}
	t.Setenv("M_SET", " v ")
	if got := c.MayString("SET", "fallback"); got != "v" {
		t.Fatalf("MayString = %q", got)
	}
}

func TestMayIntAndFloat(t *testing.T) {
	c := New().Prefix("N_")
	if got := c.MayInt("NOPE", 7); got != 7 {
		t.Fatalf("MayInt default = %d", got)
	}
	t.Setenv("N_BAD", "zz")
	if got := c.MayInt("BAD", 7); got != 7 {
		t.Fatalf("MayInt invalid should fall back, got %d", got)
	}
	t.Setenv("N_RPS", "2.5")
	if got := c.MayFloat64("RPS", 1); got != 2.5 {
		t.Fatalf("MayFloat64 = %v", got)
	}
}

func TestMayBoolMapping(t *testing.T) {
	c := New().Prefix("B_")
	if got := c.MayBool("NOPE", true); !got {
		t.Fatalf("MayBool default expected true")
	}
	for _, v := range []string{"1", "true", "yes"} {
		t.Setenv("B_V", v)
		if !c.MayBool("V", false) {
			t.Fatalf("MayBool(%q) expected true", v)
		}
	}
	for _, v := range []string{"0", "false", "no"} {
		t.Setenv("B_V", v)
		if c.MayBool("V", true) {
			t.Fatalf("MayBool(%q) expected false", v)
		}
	}
	t.Setenv("B_V", "maybe")
	if !c.MayBool("V", true) {
		t.Fatalf("MayBool invalid should fall back to default")
	}
}

func TestMayDuration(t *testing.T) {
	c := New().Prefix("D_")
	t.Setenv("D_TIMEOUT", "250ms")
	if got := c.MayDuration("TIMEOUT", time.Second); got != 250*time.Millisecond {
		t.Fatalf("MayDuration = %v", got)
	}
	if got := c.MayDuration("NOPE", time.Second); got != time.Second {
		t.Fatalf("MayDuration default = %v", got)
	}
}

func TestMayLines(t *testing.T) {
	c := New().Prefix("L_")
	t.Setenv("L_TERMS", "alpha\n\n beta \n")
	got := c.MayLines("TERMS", nil)
	if len(got) != 2 || got[0] != "alpha" || got[1] != "beta" {
		t.Fatalf("MayLines = %v", got)
	}
	def := []string{"x"}
	if got := c.MayLines("NOPE", def); len(got) != 1 || got[0] != "x" {
		t.Fatalf("MayLines default = %v", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("E_")
	if got := c.MayEnum("NOPE", "both", "file", "path", "both"); got != "both" {
		t.Fatalf("MayEnum default = %q", got)
	}
	t.Setenv("E_SCOPE", "Path")
	if got := c.MayEnum("SCOPE", "both", "file", "path", "both"); got != "Path" {
		t.Fatalf("MayEnum = %q", got)
	}
	t.Setenv("E_SCOPE", "bogus")
	kit.MustPanic(t, func() { _ = c.MayEnum("SCOPE", "both", "file", "path", "both") })
}
