package github

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-github/v80/github"
	"github.com/thomas-vilte/reviewbot/internal/config"
	domainErrors "github.com/thomas-vilte/reviewbot/internal/errors"
	"github.com/thomas-vilte/reviewbot/internal/logger"
	"github.com/thomas-vilte/reviewbot/internal/models"
	"github.com/thomas-vilte/reviewbot/internal/vcs"
	"golang.org/x/oauth2"
)

var _ vcs.ClientProvider = (*ClientFactory)(nil)

type AppsService interface {
	FindRepositoryInstallation(ctx context.Context, owner, repo string) (*github.Installation, *github.Response, error)
	CreateInstallationToken(ctx context.Context, id int64, opts *github.InstallationTokenOptions) (*github.InstallationToken, *github.Response, error)
}

// AppSigner signs the short-lived JWTs a GitHub App authenticates with.
type AppSigner struct {
	appID int64
	key   *rsa.PrivateKey
	now   func() time.Time
}

// NewAppSigner parses a PEM private key, PKCS1 or PKCS8.
func NewAppSigner(appID int64, pemData string) (*AppSigner, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(pemData))
	if err != nil {
		return nil, domainErrors.ErrInvalidConfig.
			WithError(fmt.Errorf("parse private key: %w", err)).
			WithContext("field", "github.private_key")
	}
	return &AppSigner{appID: appID, key: key, now: time.Now}, nil
}

// SignJWT creates an RS256 JWT valid for ten minutes, backdated one minute
// for clock drift.
func (s *AppSigner) SignJWT() (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    strconv.FormatInt(s.appID, 10),
		IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
}

// jwtTransport authenticates requests as the App itself.
type jwtTransport struct {
	signer *AppSigner
	base   http.RoundTripper
}

func (t *jwtTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.signer.SignJWT()
	if err != nil {
		return nil, fmt.Errorf("sign JWT: %w", err)
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+token)

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(r)
}

// installationTokenSource mints installation access tokens. Wrap it in
// oauth2.ReuseTokenSource so a token is reused until it nears expiry.
type installationTokenSource struct {
	apps           AppsService
	installationID int64
}

func (s *installationTokenSource) Token() (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tok, resp, err := s.apps.CreateInstallationToken(ctx, s.installationID, nil)
	if err != nil {
		return nil, classify(domainErrors.ErrGitHubTokenInvalid, "create installation token", models.RepoRef{}, resp, err).
			WithContext("installation_id", s.installationID)
	}
	return &oauth2.Token{
		AccessToken: tok.GetToken(),
		TokenType:   "token",
		Expiry:      tok.GetExpiresAt().Time,
	}, nil
}

// ClientFactory builds authorized GitHub clients either from a static
// personal token or from GitHub App installations.
type ClientFactory struct {
	token   string
	apps    AppsService
	baseURL string

	mu      sync.Mutex
	static  *GitHubClient
	sources map[int64]oauth2.TokenSource
}

// NewClientFactory picks App authentication when an App id and key are
// configured, and the personal token otherwise.
func NewClientFactory(cfg *config.Config) (*ClientFactory, error) {
	if !cfg.UsesGitHubApp() {
		if cfg.GitHub.Token == "" {
			return nil, domainErrors.ErrTokenMissing
		}
		return &ClientFactory{token: cfg.GitHub.Token, baseURL: cfg.GitHub.BaseURL}, nil
	}

	signer, err := NewAppSigner(cfg.GitHub.AppID, cfg.GitHub.PrivateKey)
	if err != nil {
		return nil, err
	}

	appClient := github.NewClient(&http.Client{
		Transport: &jwtTransport{signer: signer},
		Timeout:   30 * time.Second,
	})
	if cfg.GitHub.BaseURL != "" {
		appClient, err = appClient.WithEnterpriseURLs(cfg.GitHub.BaseURL, cfg.GitHub.BaseURL)
		if err != nil {
			return nil, domainErrors.ErrInvalidConfig.WithError(err).WithContext("base_url", cfg.GitHub.BaseURL)
		}
	}

	return NewAppClientFactory(appClient.Apps, cfg.GitHub.BaseURL), nil
}

// NewAppClientFactory builds a factory around an already authenticated Apps service.
func NewAppClientFactory(apps AppsService, baseURL string) *ClientFactory {
	return &ClientFactory{
		apps:    apps,
		baseURL: baseURL,
		sources: make(map[int64]oauth2.TokenSource),
	}
}

func (f *ClientFactory) ForRepo(ctx context.Context, repo models.RepoRef) (vcs.SourceControl, error) {
	if f.apps == nil {
		return f.staticClient()
	}

	inst, resp, err := f.apps.FindRepositoryInstallation(ctx, repo.Owner, repo.Name)
	if err != nil {
		if statusCode(resp) == http.StatusNotFound {
			return nil, domainErrors.ErrInstallationNotFound.
				WithError(err).
				WithContext("repo", repo.String())
		}
		return nil, classify(domainErrors.ErrInstallationNotFound, "find installation", repo, resp, err)
	}

	logger.Debug(ctx, "github app installation found",
		"repo", repo.String(),
		"installation_id", inst.GetID())

	return f.ForInstallation(ctx, inst.GetID())
}

// ForInstallation returns a client acting as the given installation. With a
// personal token the installation id is ignored.
func (f *ClientFactory) ForInstallation(_ context.Context, installationID int64) (vcs.SourceControl, error) {
	if f.apps == nil {
		return f.staticClient()
	}

	f.mu.Lock()
	ts, ok := f.sources[installationID]
	if !ok {
		ts = oauth2.ReuseTokenSource(nil, &installationTokenSource{apps: f.apps, installationID: installationID})
		f.sources[installationID] = ts
	}
	f.mu.Unlock()

	// The HTTP client outlives the request context that triggered it.
	client, err := NewGitHubClient(oauth2.NewClient(context.Background(), ts), f.baseURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (f *ClientFactory) staticClient() (vcs.SourceControl, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.static == nil {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: f.token})
		client, err := NewGitHubClient(oauth2.NewClient(context.Background(), ts), f.baseURL)
		if err != nil {
			return nil, err
		}
		f.static = client
	}
	return f.static, nil
}
