package constants

// Context keys set by the auth middleware.
const (
	LocalUser   = "user"
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// Cookie carrying the session token.
const AuthCookieName = "lab_session"
