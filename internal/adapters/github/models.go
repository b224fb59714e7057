package github

// Account is the subset of a GitHub account we classify scopes with
type Account struct {
	Login string `json:"login"`
	Type  string `json:"type"` // "User" or "Organization"
}

// Member is one row of an org membership listing
type Member struct {
	Login string `json:"login"`
}

// RepoRef is the repository subset attached to search hits
type RepoRef struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	FullName   string  `json:"full_name"`
	HTMLURL    string  `json:"html_url"`
	CloneURL   string  `json:"clone_url"`
	Language   *string `json:"language"`
	Visibility string  `json:"visibility"`
	Private    bool    `json:"private"`
	Fork       bool    `json:"fork"`
	Owner      Account `json:"owner"`
}

// MatchSpan is one highlighted span inside a text match fragment
type MatchSpan struct {
	Text    string `json:"text"`
	Indices []int  `json:"indices"`
}

// TextMatch is a server side highlighted fragment for a search hit
type TextMatch struct {
	ObjectURL  string      `json:"object_url"`
	ObjectType string      `json:"object_type"`
	Property   string      `json:"property"`
	Fragment   string      `json:"fragment"`
	Matches    []MatchSpan `json:"matches"`
}

// SearchHit is one code search result item
type SearchHit struct {
	Name        string      `json:"name"`
	Path        string      `json:"path"`
	SHA         string      `json:"sha"`
	HTMLURL     string      `json:"html_url"`
	Score       float64     `json:"score"`
	Repository  RepoRef     `json:"repository"`
	TextMatches []TextMatch `json:"text_matches"`
}

// SearchPage is one page of a code search response
type SearchPage struct {
	TotalCount        int         `json:"total_count"`
	IncompleteResults bool        `json:"incomplete_results"`
	Items             []SearchHit `json:"items"`
}

// rateLimitBody is the shape of GET /rate_limit we care about
type rateLimitBody struct {
	Resources struct {
		Core struct {
			Limit     int   `json:"limit"`
			Remaining int   `json:"remaining"`
			Reset     int64 `json:"reset"`
		} `json:"core"`
		Search struct {
			Limit     int   `json:"limit"`
			Remaining int   `json:"remaining"`
			Reset     int64 `json:"reset"`
		} `json:"search"`
	} `json:"resources"`
}
