// Package module wires the scan service and exposes its ports
package module

import (
	"codesweep/internal/adapters/github"
	"codesweep/internal/modkit"
	"codesweep/internal/services/scan/domain"
	"codesweep/internal/services/scan/service"
)

// Ports exposes the scan module surface for cross wiring
type Ports struct {
	Runner domain.RunnerPort
}

// Module defines the scan module
type Module struct {
	deps  modkit.Deps
	built modkit.Built
	opts  Options
}

// compile-time contract check
var _ modkit.Module = (*Module)(nil)

// New constructs the scan module with its ports
func New(deps modkit.Deps, overrides Options) *Module {
	// Load defaults from config then apply overrides from CLI (if provided)
	opts := FromConfig(deps.Cfg)

	// Merge simple overrides (non-zero/explicit)
	if overrides.Token != "" {
		opts.Token = overrides.Token
	}
	if overrides.Severity != "" {
		opts.Severity = overrides.Severity
	}
	if overrides.Source != "" {
		opts.Source = overrides.Source
	}
	if overrides.TaskID != "" {
		opts.TaskID = overrides.TaskID
	}
	if overrides.KeySuffix != "" {
		opts.KeySuffix = overrides.KeySuffix
	}
	if len(overrides.Terms) > 0 {
		opts.Terms = overrides.Terms
	}
	if overrides.TermsURL != "" {
		opts.TermsURL = overrides.TermsURL
	}
	if overrides.Target != "" {
		opts.Target = overrides.Target
	}
	if overrides.Repo != "" {
		opts.Repo = overrides.Repo
	}
	if overrides.MaxResults != 0 {
		opts.MaxResults = overrides.MaxResults
	}
	if overrides.FileScope != "" {
		opts.FileScope = overrides.FileScope
	}
	if overrides.RatePerSec != 0 {
		opts.RatePerSec = overrides.RatePerSec
	}
	if overrides.Burst != 0 {
		opts.Burst = overrides.Burst
	}
	if overrides.APIBase != "" {
		opts.APIBase = overrides.APIBase
	}
	if overrides.DryRun {
		opts.DryRun = true
	}
	if overrides.KeepPartialOnCap {
		opts.KeepPartialOnCap = true
	}
	if !overrides.IncludeMembers {
		opts.IncludeMembers = false
	}

	gh := github.NewClient(github.Options{
		BaseURL:    opts.APIBase,
		Token:      opts.Token,
		RatePerSec: opts.RatePerSec,
		Burst:      opts.Burst,
	})
	svc := service.New(deps, gh)

	return &Module{
		deps: deps,
		opts: opts,
		built: modkit.Build(
			modkit.WithName("scan"),
			modkit.WithPorts(Ports{Runner: svc}),
		),
	}
}

// RunConfig builds the effective run configuration for this module
func (m *Module) RunConfig() domain.RunConfig {
	cfg := domain.RunConfig{
		Token:            m.opts.Token,
		Severity:         domain.Severity(m.opts.Severity),
		Source:           m.opts.Source,
		TaskID:           m.opts.TaskID,
		KeySuffix:        m.opts.KeySuffix,
		Terms:            m.opts.Terms,
		TermsURL:         m.opts.TermsURL,
		Target:           m.opts.Target,
		Repo:             m.opts.Repo,
		MaxResults:       m.opts.MaxResults,
		FileScope:        domain.FileScope(m.opts.FileScope),
		IncludeMembers:   m.opts.IncludeMembers,
		KeepPartialOnCap: m.opts.KeepPartialOnCap,
		DryRun:           m.opts.DryRun,
	}
	cfg.Defaults()
	return cfg
}

// Name returns the module name
func (m *Module) Name() string { return m.built.Name }

// Ports returns the module ports (Runner)
func (m *Module) Ports() any { return m.built.Ports }
