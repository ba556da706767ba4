package local

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"

	"github.com/subiehq/subie/identity"
	"github.com/subiehq/subie/internal/config"
	apperrors "github.com/subiehq/subie/internal/errors"
)

const (
	googleIssuer = "https://accounts.google.com"
	appleIssuer  = "https://appleid.apple.com"
)

// OAuthProviders holds the oauth2 endpoint configuration for each supported
// federated provider. Google and Apple endpoints come from OIDC discovery;
// Facebook uses the static endpoint shipped with the oauth2 package.
type OAuthProviders struct {
	configs map[identity.OAuthProvider]*oauth2.Config
}

// NewOAuthProviders discovers endpoints for every provider that has a client
// id configured. Providers without credentials are skipped, not errors.
func NewOAuthProviders(ctx context.Context, cfg config.OAuthConfig) (OAuthProviders, error) {
	p := OAuthProviders{configs: make(map[identity.OAuthProvider]*oauth2.Config)}

	oidcIssuers := map[identity.OAuthProvider]string{
		identity.OAuthGoogle: googleIssuer,
		identity.OAuthApple:  appleIssuer,
	}
	for prov, issuer := range oidcIssuers {
		clientID := cfg.GetOAuthClientID(string(prov))
		if clientID == "" {
			continue
		}
		discovered, err := oidc.NewProvider(ctx, issuer)
		if err != nil {
			return OAuthProviders{}, errors.Wrapf(err, "[NewOAuthProviders] discovery for %s", prov)
		}
		p.configs[prov] = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: cfg.GetOAuthClientSecret(string(prov)),
			Endpoint:     discovered.Endpoint(),
			RedirectURL:  cfg.GetOAuthRedirectURL(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		}
	}

	if clientID := cfg.GetOAuthClientID(string(identity.OAuthFacebook)); clientID != "" {
		p.configs[identity.OAuthFacebook] = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: cfg.GetOAuthClientSecret(string(identity.OAuthFacebook)),
			Endpoint:     facebook.Endpoint,
			RedirectURL:  cfg.GetOAuthRedirectURL(),
			Scopes:       []string{"public_profile", "email"},
		}
	}

	return p, nil
}

// BeginOAuth builds the handoff URL for a provider. Resolution of the
// federated flow happens out of band; this only starts it.
func (s *Service) BeginOAuth(ctx context.Context, provider identity.OAuthProvider, state string) (string, error) {
	cfg, ok := s.oauth.configs[provider]
	if !ok {
		return "", apperrors.ErrUnsupportedProvider
	}
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}
