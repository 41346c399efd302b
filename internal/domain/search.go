package domain

import (
	"time"
)

// DateFilter restricts search results to repositories pushed within a recency
// window.
type DateFilter string

const (
	// DateFilterAll applies no recency restriction.
	DateFilterAll DateFilter = "all"
	// DateFilterWeek restricts to the last 7 days.
	DateFilterWeek DateFilter = "week"
	// DateFilterMonth restricts to the last calendar month.
	DateFilterMonth DateFilter = "month"
	// DateFilterYear restricts to the last calendar year.
	DateFilterYear DateFilter = "year"
)

// Valid reports whether the filter is one of the known values.
func (d DateFilter) Valid() bool {
	switch d {
	case DateFilterAll, DateFilterWeek, DateFilterMonth, DateFilterYear:
		return true
	}
	return false
}

// Cutoff returns the earliest push date the filter admits, computed with
// calendar-aware subtraction from now. The second return is false for
// DateFilterAll.
func (d DateFilter) Cutoff(now time.Time) (time.Time, bool) {
	switch d {
	case DateFilterWeek:
		return now.AddDate(0, 0, -7), true
	case DateFilterMonth:
		return now.AddDate(0, -1, 0), true
	case DateFilterYear:
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// SearchFilters is the structured part of a search request. Languages are
// deduplicated by the caller; iteration order is preserved in the compiled
// query.
type SearchFilters struct {
	Languages  []string   `json:"languages"`
	DateFilter DateFilter `json:"dateFilter"`
}

// SearchRequest is a single search call against the upstream service.
type SearchRequest struct {
	Query   string        `json:"query"`
	Filters SearchFilters `json:"filters"`
	Page    int           `json:"page"`
}

// Repository is one upstream search result, reduced to the fields the client
// renders.
type Repository struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	HTMLURL     string    `json:"html_url"`
	Description string    `json:"description"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	Language    string    `json:"language"`
	OwnerLogin  string    `json:"owner_login"`
	OwnerAvatar string    `json:"owner_avatar"`
	PushedAt    time.Time `json:"pushed_at"`
}

// SearchResult is the interpreted upstream response. TotalPages is already
// capped at the upstream result-window limit so page selectors never offer an
// unreachable page.
type SearchResult struct {
	TotalCount int          `json:"total_count"`
	TotalPages int          `json:"total_pages"`
	Page       int          `json:"page"`
	Items      []Repository `json:"items"`
}

// RecentSearch is one entry in a user's search history.
type RecentSearch struct {
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}
