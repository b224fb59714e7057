package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// CoreQuota returns the remaining core quota and its reset time
func (c *Client) CoreQuota(ctx context.Context) (int, time.Time, error) {
	resp, err := c.do(ctx, http.MethodGet, "/rate_limit", "")
	if err != nil {
		return 0, time.Time{}, err
	}
	defer c.closeBody(resp, "/rate_limit")

	if resp.StatusCode != http.StatusOK {
		return 0, time.Time{}, statusErr(resp)
	}
	var out rateLimitBody
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, time.Time{}, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return 0, time.Time{}, err
	}
	reset := time.Unix(out.Resources.Core.Reset, 0).UTC()
	return out.Resources.Core.Remaining, reset, nil
}

// AccountType classifies a login as "User" or "Organization"
func (c *Client) AccountType(ctx context.Context, login string) (string, error) {
	path := "/users/" + url.PathEscape(login)
	resp, err := c.do(ctx, http.MethodGet, path, "")
	if err != nil {
		return "", err
	}
	defer c.closeBody(resp, path)

	if resp.StatusCode != http.StatusOK {
		return "", statusErr(resp)
	}
	var out Account
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return "", err
	}
	return out.Type, nil
}

// OrgMembersPage fetches one page of public org members
// callers drive pagination via LastPage on the returned header
func (c *Client) OrgMembersPage(ctx context.Context, org string, page, perPage int) ([]Member, http.Header, error) {
	if perPage <= 0 {
		perPage = 100
	}
	path := fmt.Sprintf("/orgs/%s/members?per_page=%d&page=%d", url.PathEscape(org), perPage, page)
	resp, err := c.do(ctx, http.MethodGet, path, "")
	if err != nil {
		return nil, nil, err
	}
	defer c.closeBody(resp, path)

	if resp.StatusCode != http.StatusOK {
		return nil, resp.Header, statusErr(resp)
	}
	var out []Member
	b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, resp.Header, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, resp.Header, err
	}
	return out, resp.Header, nil
}

// SearchCode runs one code search query page with text match fragments
// 403 and 429 surface as *RateLimitError so callers can apply their own policy
func (c *Client) SearchCode(ctx context.Context, query string, page, perPage int) (SearchPage, http.Header, error) {
	if perPage <= 0 {
		perPage = 100
	}
	path := fmt.Sprintf("/search/code?q=%s&per_page=%d&page=%d", url.QueryEscape(query), perPage, page)
	resp, err := c.do(ctx, http.MethodGet, path, acceptTextMatch)
	if err != nil {
		return SearchPage{}, nil, err
	}
	defer c.closeBody(resp, path)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden, http.StatusTooManyRequests:
		return SearchPage{}, resp.Header, &RateLimitError{
			Status: resp.StatusCode,
			Rate:   parseRateHeaders(resp.Header),
		}
	default:
		return SearchPage{}, resp.Header, statusErr(resp)
	}

	var out SearchPage
	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return SearchPage{}, resp.Header, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return SearchPage{}, resp.Header, err
	}
	return out, resp.Header, nil
}

func (c *Client) closeBody(resp *http.Response, path string) {
	if cerr := resp.Body.Close(); cerr != nil {
		c.log.Error().Err(cerr).Str("path", path).Msg("github close body failed")
	}
}

// statusErr reads a small diagnostic tail and wraps the status
func statusErr(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &StatusError{Status: resp.StatusCode, Body: string(body)}
}
