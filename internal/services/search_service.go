package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"

	"gitseek/internal/domain"
	"gitseek/internal/repository"
)

const (
	// DefaultPageSize is the upstream page size.
	DefaultPageSize = 30
	// DefaultPageCap is the deepest page the upstream result window allows
	// (~1000 results at 30 per page).
	DefaultPageCap = 34
)

// SearchService compiles search requests into upstream queries, interprets
// the paginated response, and maintains per-user search history.
type SearchService interface {
	// Search runs one compiled query against the upstream service. A nil
	// user searches anonymously; an authenticated user's token raises the
	// upstream rate limit and the query lands in their history on success.
	Search(ctx context.Context, req domain.SearchRequest, user *domain.User) (*domain.SearchResult, error)
	// RecentSearches returns the user's recorded queries, newest first.
	RecentSearches(ctx context.Context, userID string) ([]domain.RecentSearch, error)
}

// repoSearcher is the one upstream call this service consumes. go-github's
// SearchService satisfies it; tests substitute a stub.
type repoSearcher interface {
	Repositories(ctx context.Context, query string, opts *github.SearchOptions) (
		*github.RepositoriesSearchResult, *github.Response, error)
}

// searchService implements SearchService.
type searchService struct {
	pageSize    int
	pageCap     int
	history     repository.SearchHistoryStore
	searcherFor func(accessToken string) repoSearcher
}

// NewSearchService creates a new search service. Non-positive page settings
// fall back to the upstream defaults.
func NewSearchService(pageSize, pageCap int, history repository.SearchHistoryStore) SearchService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageCap <= 0 {
		pageCap = DefaultPageCap
	}
	return &searchService{
		pageSize: pageSize,
		pageCap:  pageCap,
		history:  history,
		searcherFor: func(accessToken string) repoSearcher {
			client := github.NewClient(nil)
			if accessToken != "" {
				client = client.WithAuthToken(accessToken)
			}
			return client.Search
		},
	}
}

// Search runs one compiled query against the upstream service
func (s *searchService) Search(
	ctx context.Context, req domain.SearchRequest, user *domain.User,
) (*domain.SearchResult, error) {
	text := strings.TrimSpace(req.Query)
	if text == "" {
		return nil, domain.NewValidationError("EMPTY_QUERY", "Search query is required", nil)
	}

	filters := req.Filters
	if filters.DateFilter == "" {
		filters.DateFilter = domain.DateFilterAll
	}
	if !filters.DateFilter.Valid() {
		return nil, domain.NewValidationError("INVALID_DATE_FILTER", "Unknown date filter", map[string]interface{}{
			"dateFilter": string(filters.DateFilter),
		})
	}

	if req.Page < 1 {
		return nil, domain.NewValidationError("INVALID_PAGE", "Page must be at least 1", nil)
	}

	query := CompileQuery(text, filters, time.Now())

	var accessToken string
	if user != nil {
		accessToken = user.AccessToken
	}

	opts := &github.SearchOptions{
		Sort:  "stars",
		Order: "desc",
		ListOptions: github.ListOptions{
			Page:    req.Page,
			PerPage: s.pageSize,
		},
	}

	result, _, err := s.searcherFor(accessToken).Repositories(ctx, query, opts)
	if err != nil {
		// One generic failure, no retry; backoff belongs to the upstream client
		return nil, domain.NewExternalServiceError("SEARCH_FAILED", "Repository search failed", err)
	}

	items := make([]domain.Repository, 0, len(result.Repositories))
	for _, repo := range result.Repositories {
		items = append(items, domain.Repository{
			ID:          repo.GetID(),
			Name:        repo.GetName(),
			FullName:    repo.GetFullName(),
			HTMLURL:     repo.GetHTMLURL(),
			Description: repo.GetDescription(),
			Stars:       repo.GetStargazersCount(),
			Forks:       repo.GetForksCount(),
			Language:    repo.GetLanguage(),
			OwnerLogin:  repo.GetOwner().GetLogin(),
			OwnerAvatar: repo.GetOwner().GetAvatarURL(),
			PushedAt:    repo.GetPushedAt().Time,
		})
	}

	total := result.GetTotal()
	out := &domain.SearchResult{
		TotalCount: total,
		TotalPages: TotalPages(total, s.pageSize, s.pageCap),
		Page:       req.Page,
		Items:      items,
	}

	// History is best-effort personalization and only written on success
	if user != nil {
		_ = s.history.Record(ctx, user.ID, text)
	}

	return out, nil
}

// RecentSearches returns the user's recorded queries, newest first
func (s *searchService) RecentSearches(ctx context.Context, userID string) ([]domain.RecentSearch, error) {
	return s.history.RecentSearches(ctx, userID)
}

// CompileQuery translates free text plus structured filters into the upstream
// query string: the raw term, one language: clause per selected language in
// filter order with duplicates collapsed, and a pushed:>= clause for a
// non-"all" recency window.
func CompileQuery(text string, filters domain.SearchFilters, now time.Time) string {
	var b strings.Builder
	b.WriteString(text)

	seen := make(map[string]struct{}, len(filters.Languages))
	for _, lang := range filters.Languages {
		if lang == "" {
			continue
		}
		if _, dup := seen[lang]; dup {
			continue
		}
		seen[lang] = struct{}{}
		b.WriteString(" language:")
		b.WriteString(lang)
	}

	if cutoff, ok := filters.DateFilter.Cutoff(now); ok {
		b.WriteString(" pushed:>=")
		b.WriteString(cutoff.Format("2006-01-02"))
	}

	return b.String()
}

// TotalPages computes the number of pages the caller may actually reach:
// ceil(totalCount/pageSize) clamped to the upstream result-window cap.
func TotalPages(totalCount, pageSize, pageCap int) int {
	if totalCount <= 0 || pageSize <= 0 {
		return 0
	}
	pages := (totalCount + pageSize - 1) / pageSize
	if pages > pageCap {
		return pageCap
	}
	return pages
}
