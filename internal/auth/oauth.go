package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"github.com/sakif/practice-tracker/internal/model"
)

// graphUser is the part of the Microsoft Graph /me response we use.
// Mail is empty for some school accounts, in which case the user principal
// name carries the address.
type graphUser struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// Provider wraps golang.org/x/oauth2 for the Microsoft Entra ID authorization
// code flow. Its only output is a verified model.ExternalIdentity; domain
// policy and persistence happen in the identity service.
type Provider struct {
	config      *oauth2.Config
	userInfoURL string
}

// ProviderConfig holds the provider registration.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Tenant       string // directory id, or "common"
	UserInfoURL  string

	// Endpoint overrides the tenant endpoint. Tests point it at httptest.
	Endpoint *oauth2.Endpoint
}

// NewProvider creates a Provider. Scopes are the minimum needed to read the
// signed-in user's profile.
func NewProvider(cfg ProviderConfig) *Provider {
	endpoint := microsoft.AzureADEndpoint(cfg.Tenant)
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile", "User.Read"},
			Endpoint:     endpoint,
		},
		userInfoURL: cfg.UserInfoURL,
	}
}

// AuthURL returns the provider URL to redirect the browser to. state is
// echoed back on callback and checked against the state cookie.
func (p *Provider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for the user's verified identity.
func (p *Provider) Exchange(ctx context.Context, code string) (*model.ExternalIdentity, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	client := p.config.Client(ctx, oauthToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("auth: building userinfo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: calling userinfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: userinfo endpoint returned status %d", resp.StatusCode)
	}

	var u graphUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("auth: decoding userinfo response: %w", err)
	}

	if u.ID == "" {
		return nil, fmt.Errorf("auth: provider returned a user without a subject")
	}

	email := u.Mail
	if email == "" {
		email = u.UserPrincipalName
	}

	return &model.ExternalIdentity{
		Subject:     u.ID,
		Email:       strings.ToLower(strings.TrimSpace(email)),
		DisplayName: strings.TrimSpace(u.DisplayName),
	}, nil
}
