package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gitseek/internal/domain"
)

// sessionCookieName matches the cookie the server issues on login.
const sessionCookieName = "gitseek_session"

// APIClient handles communication with the gitseek API server
type APIClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewAPIClientFromProfile creates an API client from a profile
func NewAPIClientFromProfile(profile Profile) *APIClient {
	return NewAPIClient(profile.ServerURL, profile.SessionToken)
}

// APIError represents an API error response
type APIError struct {
	Message    string `json:"message"`
	Code       string `json:"code"`
	StatusCode int    `json:"status_code"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error (%d): %s [%s]", e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// envelope is the server's standard response wrapper.
type envelope struct {
	Error   *struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
}

// doRequest performs an HTTP request carrying the session cookie
func (c *APIClient) doRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	baseURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	fullURL, err := url.JoinPath(baseURL.String(), endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to join URL path: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: c.Token})
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// handleResponse unwraps the response envelope into result and converts
// error payloads into APIError values. The response body is always closed.
func (c *APIClient) handleResponse(resp *http.Response, result interface{}) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if unmarshalErr := json.Unmarshal(body, &env); unmarshalErr != nil {
		if resp.StatusCode >= 400 {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("failed to parse response: %w", unmarshalErr)
	}

	if resp.StatusCode >= 400 || !env.Success {
		apiError := &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
		if env.Error != nil {
			apiError.Message = env.Error.Message
			apiError.Code = env.Error.Code
		}
		return apiError
	}

	if result != nil && env.Data != nil {
		if unmarshalErr := json.Unmarshal(env.Data, result); unmarshalErr != nil {
			return fmt.Errorf("failed to parse response data: %w", unmarshalErr)
		}
	}

	return nil
}

// CurrentUser returns the authenticated user's profile.
func (c *APIClient) CurrentUser(ctx context.Context) (*domain.PublicProfile, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/auth/user", nil)
	if err != nil {
		return nil, err
	}

	var data struct {
		User *domain.PublicProfile `json:"user"`
	}
	if err := c.handleResponse(resp, &data); err != nil {
		return nil, err
	}
	return data.User, nil
}

// CheckPrompt reports whether the remember-me prompt is still owed.
func (c *APIClient) CheckPrompt(ctx context.Context) (bool, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/auth/check-prompt", nil)
	if err != nil {
		return false, err
	}

	var data struct {
		ShowPrompt bool `json:"showPrompt"`
	}
	if err := c.handleResponse(resp, &data); err != nil {
		return false, err
	}
	return data.ShowPrompt, nil
}

// Remember resolves the consent prompt. A nil remember dismisses it.
func (c *APIClient) Remember(ctx context.Context, remember *bool) (time.Time, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/remember",
		map[string]interface{}{"remember": remember})
	if err != nil {
		return time.Time{}, err
	}

	var data struct {
		ExpiresAt time.Time `json:"expiresAt"`
	}
	if err := c.handleResponse(resp, &data); err != nil {
		return time.Time{}, err
	}
	return data.ExpiresAt, nil
}

// Logout destroys the server-side session.
func (c *APIClient) Logout(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodGet, "/auth/logout", nil)
	if err != nil {
		return err
	}
	return c.handleResponse(resp, nil)
}

// Search runs a repository search with the given filters.
func (c *APIClient) Search(ctx context.Context, query string, languages []string, dateFilter string, page int) (*domain.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	if len(languages) > 0 {
		params.Set("languages", strings.Join(languages, ","))
	}
	if dateFilter != "" {
		params.Set("dateFilter", dateFilter)
	}
	if page > 1 {
		params.Set("page", fmt.Sprintf("%d", page))
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/api/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var result domain.SearchResult
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RecentSearches returns the user's search history, newest first.
func (c *APIClient) RecentSearches(ctx context.Context) ([]domain.RecentSearch, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/recent-searches", nil)
	if err != nil {
		return nil, err
	}

	var data struct {
		Searches []domain.RecentSearch `json:"searches"`
	}
	if err := c.handleResponse(resp, &data); err != nil {
		return nil, err
	}
	return data.Searches, nil
}

// TrackVisit records one repository visit.
func (c *APIClient) TrackVisit(ctx context.Context, repoURL, repoName string, snapshot domain.RepoSnapshot) (*domain.VisitedRepo, error) {
	payload := map[string]interface{}{
		"repoUrl":  repoURL,
		"repoName": repoName,
		"repoData": map[string]interface{}{
			"description":      snapshot.Description,
			"stargazers_count": snapshot.Stars,
			"language":         snapshot.Language,
		},
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/track-visit", payload)
	if err != nil {
		return nil, err
	}

	var data struct {
		Visit *domain.VisitedRepo `json:"visit"`
	}
	if err := c.handleResponse(resp, &data); err != nil {
		return nil, err
	}
	return data.Visit, nil
}

// MostVisited returns the user's most recently visited repositories.
func (c *APIClient) MostVisited(ctx context.Context) ([]domain.VisitedRepo, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/most-visited", nil)
	if err != nil {
		return nil, err
	}

	var data struct {
		Repos []domain.VisitedRepo `json:"repos"`
	}
	if err := c.handleResponse(resp, &data); err != nil {
		return nil, err
	}
	return data.Repos, nil
}
