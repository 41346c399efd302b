package api

import (
	"strconv"
	"strings"

	"gitseek/internal/api/middleware"
	"gitseek/internal/domain"
	"gitseek/internal/services"

	"github.com/gin-gonic/gin"
)

// SearchHandler handles repository search endpoints.
type SearchHandler struct {
	searchService services.SearchService
	sessions      *middleware.SessionMiddleware
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(searchService services.SearchService, sessions *middleware.SessionMiddleware) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		sessions:      sessions,
	}
}

// RegisterRoutes registers search routes with the router.
func (h *SearchHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// Anonymous searches are allowed; a session only raises the
		// upstream rate limit and records history.
		api.GET("/search", h.sessions.OptionalAuth(), h.Search)
		api.GET("/recent-searches", h.sessions.RequireAuth(), h.RecentSearches)
	}
}

// Search compiles the query parameters into one upstream search.
func (h *SearchHandler) Search(c *gin.Context) {
	req := domain.SearchRequest{
		Query: c.Query("q"),
		Filters: domain.SearchFilters{
			Languages:  splitLanguages(c.Query("languages")),
			DateFilter: domain.DateFilter(c.DefaultQuery("dateFilter", string(domain.DateFilterAll))),
		},
		Page: 1,
	}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			SanitizedErrorResponse(c, domain.NewValidationError(
				"INVALID_PAGE", "Page must be a number", map[string]interface{}{"field": "page"}))
			return
		}
		req.Page = page
	}

	user, _ := middleware.GetUserFromContext(c)

	result, err := h.searchService.Search(c.Request.Context(), req, user)
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}
	SuccessResponse(c, result)
}

// RecentSearches returns the authenticated user's query history, newest first.
func (h *SearchHandler) RecentSearches(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		SanitizedErrorResponse(c, domain.NewAuthorizationError("NOT_AUTHENTICATED", "Authentication required"))
		return
	}

	searches, err := h.searchService.RecentSearches(c.Request.Context(), user.ID)
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}
	SuccessResponse(c, gin.H{"searches": searches})
}

// splitLanguages parses the comma-separated languages parameter, dropping
// empty segments.
func splitLanguages(raw string) []string {
	if raw == "" {
		return nil
	}
	var languages []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			languages = append(languages, trimmed)
		}
	}
	return languages
}
