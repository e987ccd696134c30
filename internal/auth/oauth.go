package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/r4nb1r/ProfilePulse/internal/domain"
)

// ScopeBusinessManage grants read/write access to the listing API.
const ScopeBusinessManage = "https://www.googleapis.com/auth/business.manage"

// ErrMissingCode is returned by Exchange for an empty authorization code.
var ErrMissingCode = errors.New("authorization code is required")

// OAuthConfig configures the identity provider client. AuthURL and TokenURL
// override the Google endpoint when set.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	Scopes       []string
}

// OAuthProvider issues authorization URLs and exchanges codes for credentials.
type OAuthProvider struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewOAuthProvider builds a provider. httpClient is used for token requests;
// nil falls back to http.DefaultClient.
func NewOAuthProvider(cfg OAuthConfig, httpClient *http.Client) *OAuthProvider {
	endpoint := google.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
		endpoint.AuthStyle = oauth2.AuthStyleInParams
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{ScopeBusinessManage}
	}

	return &OAuthProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		httpClient: httpClient,
	}
}

// AuthCodeURL returns the consent page URL. Offline access with forced
// consent makes the provider return a refresh token every time.
func (p *OAuthProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades a one-time authorization code for a credential.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*domain.Credential, error) {
	if code == "" {
		return nil, ErrMissingCode
	}
	tok, err := p.config.Exchange(p.withClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return CredentialFromToken(tok), nil
}

// TokenSource returns a source that refreshes cred with its refresh token
// once the access token expires.
func (p *OAuthProvider) TokenSource(ctx context.Context, cred *domain.Credential) oauth2.TokenSource {
	return p.config.TokenSource(p.withClient(ctx), TokenFromCredential(cred))
}

func (p *OAuthProvider) withClient(ctx context.Context) context.Context {
	if p.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

// CredentialFromToken converts an oauth2 token to the stored credential shape.
func CredentialFromToken(tok *oauth2.Token) *domain.Credential {
	if tok == nil {
		return nil
	}
	return &domain.Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
}

// TokenFromCredential converts a stored credential back to an oauth2 token.
func TokenFromCredential(cred *domain.Credential) *oauth2.Token {
	if cred == nil {
		return &oauth2.Token{}
	}
	return &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    cred.TokenType,
		Expiry:       cred.Expiry,
	}
}
