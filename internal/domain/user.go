// Package domain provides core business entities for the search service.
package domain

// User is the identity obtained from a completed GitHub OAuth login. It is
// constructed once in the OAuth callback and never mutated afterwards; the
// access token travels with the identity for the session's lifetime only.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatar"`
	AccessToken string `json:"-"` // Never serialize the token
}

// Validate validates the user identity
func (u *User) Validate() error {
	if u.ID == "" {
		return NewValidationError("MISSING_USER_ID", "User ID is required", nil)
	}
	if u.Username == "" {
		return NewValidationError("MISSING_USERNAME", "Username is required", nil)
	}
	return nil
}

// PublicProfile is the subset of the identity exposed to clients.
type PublicProfile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatar"`
}

// Public returns the client-safe view of the identity.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}
