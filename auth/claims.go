package auth

import "github.com/golang-jwt/jwt/v5"

// Claims defines the JWT claims structure for gitpal sessions.
// It embeds jwt.RegisteredClaims for standard fields (exp, iat, etc.) and adds
// the GitHub identity plus the OAuth access token used for API calls on the
// user's behalf. The token lives only inside the signed, HttpOnly cookie and
// is never persisted server-side.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string `json:"user_id"`
	Login       string `json:"login"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	GitHubToken string `json:"github_token,omitempty"`
}
