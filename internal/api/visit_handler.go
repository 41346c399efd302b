package api

import (
	"gitseek/internal/api/middleware"
	"gitseek/internal/domain"
	"gitseek/internal/repository"

	"github.com/gin-gonic/gin"
)

// MostVisitedLimit caps the most-visited listing returned to clients.
const MostVisitedLimit = 10

// VisitHandler handles per-user repository visit tracking.
type VisitHandler struct {
	visitStore repository.VisitStore
	sessions   *middleware.SessionMiddleware
}

// NewVisitHandler creates a new visit handler.
func NewVisitHandler(visitStore repository.VisitStore, sessions *middleware.SessionMiddleware) *VisitHandler {
	return &VisitHandler{
		visitStore: visitStore,
		sessions:   sessions,
	}
}

// RegisterRoutes registers visit tracking routes with the router.
func (h *VisitHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.Use(h.sessions.RequireAuth())
	{
		api.POST("/track-visit", h.TrackVisit)
		api.GET("/most-visited", h.MostVisited)
	}
}

// trackVisitRequest mirrors the payload the frontend sends when a user
// opens a repository from the results list.
type trackVisitRequest struct {
	RepoURL  string `json:"repoUrl"`
	RepoName string `json:"repoName"`
	RepoData struct {
		Description string `json:"description"`
		Stars       int    `json:"stargazers_count"`
		Language    string `json:"language"`
	} `json:"repoData"`
}

// TrackVisit increments the visit count for a repository and refreshes
// its snapshot.
func (h *VisitHandler) TrackVisit(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		SanitizedErrorResponse(c, domain.NewAuthorizationError("NOT_AUTHENTICATED", "Authentication required"))
		return
	}

	var req trackVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SanitizedErrorResponse(c, domain.NewValidationError("INVALID_REQUEST", "Invalid request body", nil))
		return
	}
	if req.RepoURL == "" || req.RepoName == "" {
		SanitizedErrorResponse(c, domain.NewValidationError(
			"MISSING_REPO_FIELDS", "Repository URL and name are required", nil))
		return
	}

	snapshot := domain.RepoSnapshot{
		Description: req.RepoData.Description,
		Stars:       req.RepoData.Stars,
		Language:    req.RepoData.Language,
	}

	record, err := h.visitStore.RecordVisit(c.Request.Context(), user.ID, req.RepoURL, req.RepoName, snapshot)
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}
	SuccessResponse(c, gin.H{"visit": record})
}

// MostVisited returns the user's most recently visited repositories.
func (h *VisitHandler) MostVisited(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		SanitizedErrorResponse(c, domain.NewAuthorizationError("NOT_AUTHENTICATED", "Authentication required"))
		return
	}

	repos, err := h.visitStore.MostVisited(c.Request.Context(), user.ID, MostVisitedLimit)
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}
	SuccessResponse(c, gin.H{"repos": repos})
}
