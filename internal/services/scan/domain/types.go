// Package domain defines the types and interfaces for the scan service
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScopeKind classifies a scope entry for query building
type ScopeKind string

// Scope kinds
const (
	ScopeRepo ScopeKind = "repo"
	ScopeUser ScopeKind = "user"
)

// ScopeEntry is one named search boundary
type ScopeEntry struct {
	Name string
	Kind ScopeKind
}

// ScopeSet maps scope names to kinds while preserving insertion order
// a name appears at most once; later writes overwrite the kind
type ScopeSet struct {
	order []string
	kinds map[string]ScopeKind
}

// NewScopeSet returns an empty ScopeSet
func NewScopeSet() *ScopeSet {
	return &ScopeSet{kinds: map[string]ScopeKind{}}
}

// Put inserts or reclassifies a scope name
func (s *ScopeSet) Put(name string, kind ScopeKind) {
	if name == "" {
		return
	}
	if _, ok := s.kinds[name]; !ok {
		s.order = append(s.order, name)
	}
	s.kinds[name] = kind
}

// Len reports how many distinct names are in the set
func (s *ScopeSet) Len() int { return len(s.order) }

// Entries returns the set in insertion order
func (s *ScopeSet) Entries() []ScopeEntry {
	out := make([]ScopeEntry, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, ScopeEntry{Name: n, Kind: s.kinds[n]})
	}
	return out
}

// Severity grades a finding
type Severity string

// Severities ordered loosely by urgency
const (
	SeverityObservation Severity = "observation"
	SeverityHigh        Severity = "high"
	SeverityMedium      Severity = "medium"
	SeverityLow         Severity = "low"
)

// FileScope selects which file property queries match against
type FileScope string

// File scopes
const (
	FileScopeFile FileScope = "file"
	FileScopePath FileScope = "path"
	FileScopeBoth FileScope = "both"
)

// RunConfig is the configuration for one scan run
// at least one of Terms/TermsURL and one of Target/Repo must be set
type RunConfig struct {
	Token     string   `validate:"required"`
	Severity  Severity `validate:"required,oneof=observation high medium low"`
	Source    string   `validate:"required"`
	TaskID    string   `validate:"required"`
	KeySuffix string

	Terms    []string `validate:"required_without=TermsURL"`
	TermsURL string   `validate:"omitempty,url"`

	Target string `validate:"required_without=Repo"`
	Repo   string

	MaxResults     int       `validate:"gt=0"`
	FileScope      FileScope `validate:"oneof=file path both"`
	IncludeMembers bool

	// KeepPartialOnCap keeps accumulated targets when the cap halts the run
	// default false: the run yields an empty set once the cap is reached
	KeepPartialOnCap bool

	// DryRun skips persistence and only logs what would be written
	DryRun bool
}

// Defaults fills zero values with run defaults
func (c *RunConfig) Defaults() {
	if c.MaxResults == 0 {
		c.MaxResults = 200
	}
	if c.FileScope == "" {
		c.FileScope = FileScopeBoth
	}
	if c.Severity == "" {
		c.Severity = SeverityObservation
	}
	if c.Source == "" {
		c.Source = "codesweep"
	}
	// scheduled runs rarely carry an external task id; mint one so findings
	// and events from the same run still correlate
	if c.TaskID == "" {
		c.TaskID = uuid.NewString()
	}
}

// Finding is one structured record of a term match inside a file
type Finding struct {
	ID            string
	TaskID        string
	Source        string
	Severity      Severity
	Type          string
	Term          string
	Score         *float64
	FileName      *string
	FileURL       string
	CodeFragment  string
	MatchLocation string
	KeySuffix     string
	CreatedAt     time.Time
}

// ScannedTarget is the per repository aggregate that accumulates findings
// at most one exists per repository URL within a run and in the backing store
type ScannedTarget struct {
	ID         string
	RepoURL    string
	FullName   string
	Owner      string
	CloneURL   string
	Language   *string
	Visibility string
	Findings   []Finding
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ScanResult is the outcome of one run
type ScanResult struct {
	RunID    string
	Targets  []ScannedTarget
	Queries  int
	Findings int
	CapHit   bool
	Started  time.Time
	Finished time.Time
}
