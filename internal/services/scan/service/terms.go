package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	perr "codesweep/internal/platform/errors"
	"codesweep/internal/services/scan/domain"
)

const termsBodyLimit = 1 << 20

// buildTerms merges literal terms with a fetched JSON array of terms,
// trimmed and deduplicated in first-seen order
func (s *Svc) buildTerms(ctx context.Context, cfg domain.RunConfig) ([]string, error) {
	seen := map[string]struct{}{}
	var out []string
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	for _, line := range cfg.Terms {
		add(line)
	}

	if cfg.TermsURL != "" {
		fetched, err := s.fetchTerms(ctx, cfg.TermsURL)
		if err != nil {
			return nil, err
		}
		for _, t := range fetched {
			add(t)
		}
	}

	if len(out) == 0 {
		return nil, perr.Configf("no search terms after merging literals and url source")
	}
	return out, nil
}

func (s *Svc) fetchTerms(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, perr.RemoteFetchf("terms url request: %v", err)
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, perr.RemoteFetchf("terms url fetch failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, perr.RemoteFetchf("terms url status %d", resp.StatusCode)
	}
	var arr []string
	if err := json.NewDecoder(io.LimitReader(resp.Body, termsBodyLimit)).Decode(&arr); err != nil {
		return nil, perr.RemoteFetchf("terms url parse: %v", err)
	}
	return arr, nil
}
