package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleUser is the portion of Google's userinfo response we care about.
// Google returns a larger object; we only unmarshal what we store.
type GoogleUser struct {
	ID      string `json:"id"`      // Google's account ID — stable, never changes
	Email   string `json:"email"`   // Primary email
	Name    string `json:"name"`    // Display name, e.g. "Ada Lovelace"
	Picture string `json:"picture"` // Avatar URL
}

// GoogleProvider wraps golang.org/x/oauth2 for the Google Authorization Code
// flow.
//
// FLOW:
//  1. We redirect the browser to Google's authorization endpoint with our
//     client ID and the profile+email scopes.
//  2. The user approves; Google redirects back to CallbackURL with a code.
//  3. We exchange the code for an access token, server-to-server, using the
//     client secret — the token never touches the browser.
//  4. We call the userinfo endpoint with the token to get the profile.
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// NewGoogleProvider creates a GoogleProvider with the given credentials.
// callbackURL must match the redirect URI registered in the Google Cloud
// console exactly, e.g. "http://localhost:8080/auth/google/callback".
func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

// AuthURL returns the URL to redirect the user to for authorization.
//
// The state is a random nonce stored in a cookie before redirecting; the
// callback handler verifies Google echoes it back. That proves the callback
// belongs to a flow this server started, not a forged cross-site request.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the OAuth flow: trades the authorization code for a
// Google user profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*GoogleUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// config.Client returns an *http.Client that attaches the bearer token
	// to every request.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: calling Google userinfo API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: Google userinfo API returned status %d", resp.StatusCode)
	}

	var gUser GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gUser); err != nil {
		return nil, fmt.Errorf("auth: decoding Google userinfo response: %w", err)
	}

	if gUser.ID == "" {
		return nil, fmt.Errorf("auth: Google userinfo response has no account ID")
	}

	return &gUser, nil
}
