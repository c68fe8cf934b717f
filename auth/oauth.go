package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/gitpal-dev/gitpal/guard"
)

// OAuthConfig holds the configuration needed to set up an OAuth2 provider.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// OAuthUser represents the normalized user profile returned by GitHub.
type OAuthUser struct {
	ProviderUserID string
	Login          string
	Email          string
	Name           string
	AvatarURL      string
}

// NewGitHubProvider returns an oauth2.Config configured for GitHub login.
// The repo scope is required: the service clones private repositories and
// pushes fix branches with the user's token.
func NewGitHubProvider(cfg OAuthConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{"repo", "read:user", "user:email"},
		Endpoint:     github.Endpoint,
	}
}

// FetchGitHubUser exchanges an OAuth2 code for the user's GitHub profile.
func FetchGitHubUser(ctx context.Context, oauthCfg *oauth2.Config, code string) (*OAuthUser, *oauth2.Token, error) {
	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("oauth exchange: %w", err)
	}

	client := oauthCfg.Client(ctx, token)
	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		return nil, nil, fmt.Errorf("fetch github user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := guard.LimitedReadAll(resp.Body, guard.MaxResponseBody)
		return nil, nil, fmt.Errorf("github user endpoint returned %d: %s", resp.StatusCode, body)
	}

	var info struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Email     string `json:"email"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, nil, fmt.Errorf("decode github user: %w", err)
	}

	return &OAuthUser{
		ProviderUserID: strconv.FormatInt(info.ID, 10),
		Login:          info.Login,
		Email:          info.Email,
		Name:           info.Name,
		AvatarURL:      info.AvatarURL,
	}, token, nil
}
