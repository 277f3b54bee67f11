package types

import "strings"

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// Validate returns an error message for the first missing field, or "".
func (r *RegisterRequest) Validate() string {
	switch {
	case strings.TrimSpace(r.Username) == "":
		return "Username is required"
	case len(r.Password) < 6:
		return "Password must be at least 6 characters"
	case strings.TrimSpace(r.FullName) == "":
		return "Full name is required"
	case strings.TrimSpace(r.Email) == "" || !strings.Contains(r.Email, "@"):
		return "A valid email is required"
	default:
		return ""
	}
}

// LoginRequest is the payload for session creation.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
