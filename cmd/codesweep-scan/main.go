package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"codesweep/internal/modkit"
	"codesweep/internal/modkit/module"
	"codesweep/internal/modkit/repokit"
	"codesweep/internal/ops"
	"codesweep/internal/platform/config"
	perr "codesweep/internal/platform/errors"
	"codesweep/internal/platform/logger"
	"codesweep/internal/platform/store"

	scanmod "codesweep/internal/services/scan/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	root := config.New()
	dbCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CH_")

	l := logger.Get()

	// Flags
	var (
		fTerms    = flag.String("terms", "", "newline separated literal search terms")
		fTermsURL = flag.String("terms-url", "", "URL of a JSON array of search terms")
		fTarget   = flag.String("target", "", "user or organization to scan")
		fRepo     = flag.String("repo", "", "single repository to scan (owner/name)")
		fMax      = flag.Int("max", 0, "max accumulated results before the run halts (default 200)")
		fSeverity = flag.String("severity", "", "finding severity: observation | high | medium | low")
		fSuffix   = flag.String("suffix", "", "optional key suffix namespacing finding identities")
		fScope    = flag.String("scope", "", "file scope qualifier: file | path | both")
		fMembers  = flag.Bool("members", true, "expand organization members into the scope set")
		fTaskID   = flag.String("task", "", "task id stamped on findings and events")
		fRPS      = flag.Float64("rps", 2.0, "global GitHub API target requests/sec")
		fBurst    = flag.Int("burst", 4, "token-bucket burst for GitHub API")
		fDryRun   = flag.Bool("dryrun", false, "resolve and search but do not persist findings")
		fOpsAddr  = flag.String("ops-addr", "", "optional ops listener address, e.g. :9090")
	)
	flag.Parse()

	opsAddr := *fOpsAddr
	if opsAddr == "" {
		opsAddr = root.MayString("SCAN_OPS_ADDR", "")
	}

	pgEnabled := !*fDryRun && dbCfg.MayString("DBURL_SCAN", "") != ""
	chEnabled := !*fDryRun && chCfg.MayString("URL", "") != ""

	st, err := store.Open(context.Background(), store.Config{
		AppName: "codesweep",
		PG: store.PGConfig{
			Enabled:     pgEnabled,
			URL:         dbCfg.MayString("DBURL_SCAN", ""),
			MaxConns:    int32(dbCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: dbCfg.MayInt("SLOW_MS", 500),
			LogSQL:      dbCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled: chEnabled,
			URL:     chCfg.MayString("URL", ""),
			Role:    "scan",
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if pgEnabled || chEnabled {
		repokit.MustGuard(context.Background(), st)
	}

	// Shared deps
	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		Log: *l,
	}

	// Export a few knobs as env so the module can read via FromConfig if desired
	mustSetEnv("SCAN_GH_RPS", fmt.Sprintf("%.3f", *fRPS))
	mustSetEnv("SCAN_GH_BURST", fmt.Sprintf("%d", *fBurst))
	mustSetEnv("SCAN_DRYRUN", map[bool]string{true: "1", false: "0"}[*fDryRun])

	// the flag carries newline-separated literals; blank lines drop out
	// downstream, so a bare split is enough here
	var termLines []string
	if *fTerms != "" {
		termLines = strings.Split(*fTerms, "\n")
	}

	sm := scanmod.New(
		deps,
		scanmod.Options{
			Terms:          termLines,
			TermsURL:       *fTermsURL,
			Target:         *fTarget,
			Repo:           *fRepo,
			MaxResults:     *fMax,
			Severity:       *fSeverity,
			KeySuffix:      *fSuffix,
			FileScope:      *fScope,
			IncludeMembers: *fMembers,
			TaskID:         *fTaskID,
			RatePerSec:     *fRPS,
			Burst:          *fBurst,
			DryRun:         *fDryRun,
		},
	)

	module.Register(sm.Name(), sm.Ports())

	ports := module.MustPortsOf[scanmod.Ports](sm)

	ctx := context.Background()

	var opsSrv *ops.Server
	if opsAddr != "" {
		opsSrv = ops.New(opsAddr, st)
		opsSrv.Start()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = opsSrv.Stop(sctx)
		}()
	}

	cfg := sm.RunConfig()
	if opsSrv != nil {
		opsSrv.SetStatus(ops.Status{State: "running"})
	}

	res, err := ports.Runner.Scan(ctx, cfg)
	if err != nil {
		if opsSrv != nil {
			opsSrv.SetStatus(ops.Status{State: "failed"})
		}
		if perr.Fatal(err) {
			l.Error().Err(err).Msg("scan run failed")
			os.Exit(1)
		}
		l.Fatal().Err(err).Msg("scan run failed unexpectedly")
	}

	if opsSrv != nil {
		opsSrv.SetStatus(ops.Status{
			State:    "done",
			RunID:    res.RunID,
			Queries:  res.Queries,
			Findings: res.Findings,
			CapHit:   res.CapHit,
		})
	}

	l.Info().
		Str("run_id", res.RunID).
		Int("queries", res.Queries).
		Int("findings", res.Findings).
		Int("targets", len(res.Targets)).
		Bool("cap_hit", res.CapHit).
		Dur("elapsed", res.Finished.Sub(res.Started)).
		Msg("scan run complete")
}
