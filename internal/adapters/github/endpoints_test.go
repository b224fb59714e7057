package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{
		BaseURL:    srv.URL,
		Token:      "tok",
		RatePerSec: 1000,
		Burst:      100,
	})
}

func TestCoreQuota(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rate_limit" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "token tok" {
			t.Fatalf("auth header: %q", got)
		}
		fmt.Fprint(w, `{"resources":{"core":{"limit":5000,"remaining":4321,"reset":1700000000}}}`)
	})

	rem, reset, err := c.CoreQuota(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rem != 4321 {
		t.Fatalf("remaining: want 4321, got %d", rem)
	}
	if reset.Unix() != 1700000000 {
		t.Fatalf("reset: got %v", reset)
	}
}

func TestAccountType(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/acme" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"login":"acme","type":"Organization"}`)
	})

	typ, err := c.AccountType(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typ != "Organization" {
		t.Fatalf("want Organization, got %q", typ)
	}
}

func TestAccountTypeStatusError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	_, err := c.AccountType(context.Background(), "ghost")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("want *StatusError, got %v", err)
	}
	if se.Status != http.StatusNotFound {
		t.Fatalf("status: got %d", se.Status)
	}
}

func TestOrgMembersPage(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("per_page"); got != "100" {
			t.Fatalf("per_page: %q", got)
		}
		w.Header().Set("Link", `<http://x/orgs/acme/members?page=3>; rel="last"`)
		fmt.Fprint(w, `[{"login":"ada"},{"login":"zoe"}]`)
	})

	members, hdr, err := c.OrgMembersPage(context.Background(), "acme", 1, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(members) != 2 || members[0].Login != "ada" || members[1].Login != "zoe" {
		t.Fatalf("members: %+v", members)
	}
	last, err := LastPage(hdr)
	if err != nil || last != 3 {
		t.Fatalf("last page: %d %v", last, err)
	}
}

func TestSearchCodeParsesHitsAndTextMatches(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != acceptTextMatch {
			t.Fatalf("accept header: %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "apikey in:file,path user:acme" {
			t.Fatalf("query: %q", got)
		}
		fmt.Fprint(w, `{
			"total_count": 1,
			"items": [{
				"name": "config.yml",
				"path": "deploy/config.yml",
				"html_url": "https://github.com/acme/web/blob/x/config.yml",
				"score": 11.5,
				"repository": {
					"full_name": "acme/web",
					"html_url": "https://github.com/acme/web",
					"clone_url": "https://github.com/acme/web.git",
					"language": "Go",
					"owner": {"login": "acme"}
				},
				"text_matches": [
					{"property": "content", "fragment": "apikey: abc", "matches": [{"text": "apikey"}]}
				]
			}]
		}`)
	})

	page, _, err := c.SearchCode(context.Background(), "apikey in:file,path user:acme", 1, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.TotalCount != 1 || len(page.Items) != 1 {
		t.Fatalf("page: %+v", page)
	}
	hit := page.Items[0]
	if hit.Repository.FullName != "acme/web" || hit.Repository.Owner.Login != "acme" {
		t.Fatalf("repo: %+v", hit.Repository)
	}
	if len(hit.TextMatches) != 1 || hit.TextMatches[0].Matches[0].Text != "apikey" {
		t.Fatalf("text matches: %+v", hit.TextMatches)
	}
}

func TestSearchCodeRateLimited(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "12")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.WriteHeader(http.StatusForbidden)
	})

	_, _, err := c.SearchCode(context.Background(), "x", 1, 100)
	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("want *RateLimitError, got %v", err)
	}
	if !rle.HasRetryAfter() || rle.Rate.RetryAfter != 12 {
		t.Fatalf("rate: %+v", rle.Rate)
	}
	if !IsRateLimited(err) {
		t.Fatalf("IsRateLimited should be true")
	}
}

func TestSearchCodeExhaustedQuotaWithoutRetryAfter(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", "1700000000")
		w.WriteHeader(http.StatusForbidden)
	})

	_, _, err := c.SearchCode(context.Background(), "x", 1, 100)
	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("want *RateLimitError, got %v", err)
	}
	if rle.HasRetryAfter() {
		t.Fatalf("should not carry retry-after: %+v", rle.Rate)
	}
	if rle.Rate.Reset.Unix() != 1700000000 {
		t.Fatalf("reset: %v", rle.Rate.Reset)
	}
}
