package github

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	perr "codesweep/internal/platform/errors"
)

// LastPage extracts the rel="last" page number from a Link header
// an absent header means a single page result, so 1 is returned
// a present rel="last" with page=0 also collapses to a single page
func LastPage(h http.Header) (int, error) {
	link := h.Get("Link")
	if strings.TrimSpace(link) == "" {
		return 1, nil
	}
	for _, part := range strings.Split(link, ",") {
		segs := strings.Split(part, ";")
		if len(segs) < 2 {
			continue
		}
		if !isRelLast(segs[1:]) {
			continue
		}
		raw := strings.TrimSpace(segs[0])
		if !strings.HasPrefix(raw, "<") || !strings.HasSuffix(raw, ">") {
			return 0, perr.Newf(perr.ErrorCodeUnknown, "malformed link target %q", raw)
		}
		u, err := url.Parse(strings.Trim(raw, "<>"))
		if err != nil {
			return 0, perr.Wrapf(err, perr.ErrorCodeUnknown, "malformed link url")
		}
		ps := u.Query().Get("page")
		if ps == "" {
			return 0, perr.Newf(perr.ErrorCodeUnknown, "link rel=last missing page param in %q", raw)
		}
		n, err := strconv.Atoi(ps)
		if err != nil {
			return 0, perr.Wrapf(err, perr.ErrorCodeUnknown, "link rel=last bad page param %q", ps)
		}
		if n < 1 {
			return 1, nil
		}
		return n, nil
	}
	// header present but no rel="last": we are on the last page already
	return 1, nil
}

func isRelLast(params []string) bool {
	for _, p := range params {
		p = strings.TrimSpace(p)
		if p == `rel="last"` || p == "rel=last" {
			return true
		}
	}
	return false
}
