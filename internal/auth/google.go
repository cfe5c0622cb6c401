package auth

import (
	"context"
	"fmt"

	"github.com/anonto42/gooners/backend/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// IdentityProvider is an OAuth2 authorization-code sign-in provider.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*models.Identity, error)
}

// GoogleProvider signs users in with their Google account
type GoogleProvider struct {
	config *oauth2.Config
}

func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{oauth2api.UserinfoProfileScope, oauth2api.UserinfoEmailScope},
			Endpoint:     google.Endpoint,
		},
	}
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades the authorization code for a token and fetches the profile
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*models.Identity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(p.config.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}

	return &models.Identity{
		ID:              "google:" + info.Id,
		Email:           info.Email,
		FirstName:       info.GivenName,
		LastName:        info.FamilyName,
		DisplayName:     info.Name,
		ProfileImageURL: info.Picture,
	}, nil
}
