package module

import (
	"codesweep/internal/platform/config"
)

// Options controls scan behavior. Values may also be read from env
type Options struct {
	Token     string
	Severity  string
	Source    string
	TaskID    string
	KeySuffix string

	Terms    []string
	TermsURL string

	Target string
	Repo   string

	MaxResults       int
	FileScope        string
	IncludeMembers   bool
	KeepPartialOnCap bool
	DryRun           bool

	// GitHub client knobs
	APIBase    string
	RatePerSec float64
	Burst      int
}

// FromConfig reads options using SCAN_ prefix
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("SCAN_")
	return Options{
		Token:            sc.MayString("GH_TOKEN", ""),
		Severity:         sc.MayEnum("SEVERITY", "observation", "observation", "high", "medium", "low"),
		Source:           sc.MayString("SOURCE", "codesweep"),
		TaskID:           sc.MayString("TASK_ID", ""),
		KeySuffix:        sc.MayString("KEY_SUFFIX", ""),
		Terms:            sc.MayLines("TERMS", nil),
		TermsURL:         sc.MayString("TERMS_URL", ""),
		Target:           sc.MayString("TARGET", ""),
		Repo:             sc.MayString("REPO", ""),
		MaxResults:       sc.MayInt("MAX_RESULTS", 200),
		FileScope:        sc.MayEnum("FILE_SCOPE", "both", "file", "path", "both"),
		IncludeMembers:   sc.MayBool("INCLUDE_MEMBERS", true),
		KeepPartialOnCap: sc.MayBool("KEEP_PARTIAL_ON_CAP", false),
		DryRun:           sc.MayBool("DRYRUN", false),
		APIBase:          sc.MayString("GH_API", ""),
		RatePerSec:       sc.MayFloat64("GH_RPS", 2.0),
		Burst:            sc.MayInt("GH_BURST", 4),
	}
}
