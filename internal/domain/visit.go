package domain

import (
	"time"
)

// RepoSnapshot is the display data cached at visit time so the "jump back in"
// panel renders without another upstream call. Overwritten wholesale on every
// visit; it reflects the most recent visit only.
type RepoSnapshot struct {
	Description string `json:"description"`
	Stars       int    `json:"stars"`
	Language    string `json:"language"`
}

// VisitedRepo is one repository in a user's visit history, keyed by URL within
// the per-user collection.
type VisitedRepo struct {
	URL         string    `json:"url"`
	Name        string    `json:"name"`
	Count       int       `json:"count"`
	LastVisited time.Time `json:"lastVisited"`
	RepoSnapshot
}

// Validate validates the visit record key fields
func (v *VisitedRepo) Validate() error {
	if v.URL == "" {
		return NewValidationError("MISSING_REPO_URL", "Repository URL is required", nil)
	}
	if v.Name == "" {
		return NewValidationError("MISSING_REPO_NAME", "Repository name is required", nil)
	}
	return nil
}
