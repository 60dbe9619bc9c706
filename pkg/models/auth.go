package models

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	Whatsapp       string `json:"whatsapp"`
	InterestedTier Tier   `json:"interested_tier"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login: the bearer token plus
// the subscriber profile fields, flattened.
type AuthResponse struct {
	Token string `json:"token"`
	Profile
}

// UpgradeRequest is the body of POST /subscriptions/request
type UpgradeRequest struct {
	Tier     Tier   `json:"tier"`
	Whatsapp string `json:"whatsapp,omitempty"`
}
