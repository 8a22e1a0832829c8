package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2/google"
)

const (
	// Public x509 certificates used to sign Firebase ID tokens.
	firebaseCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"
	issuerPrefix     = "https://securetoken.google.com/"
	defaultKeysTTL   = time.Hour
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is the caller as asserted by the identity provider.
type Identity struct {
	UID   string
	Email string
}

type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

type firebaseClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// FirebaseVerifier checks Firebase ID tokens against Google's rotating
// signing certificates.
type FirebaseVerifier struct {
	projectID  string
	certsURL   string
	httpClient *http.Client
	now        func() time.Time

	mu      sync.Mutex
	keys    map[string]*rsa.PublicKey
	expires time.Time
}

type Option func(*FirebaseVerifier)

func WithCertsURL(url string) Option {
	return func(v *FirebaseVerifier) { v.certsURL = url }
}

func WithHTTPClient(c *http.Client) Option {
	return func(v *FirebaseVerifier) { v.httpClient = c }
}

func WithClock(now func() time.Time) Option {
	return func(v *FirebaseVerifier) { v.now = now }
}

func NewFirebaseVerifier(projectID string, opts ...Option) *FirebaseVerifier {
	v := &FirebaseVerifier{
		projectID:  projectID,
		certsURL:   firebaseCertsURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// DecodeServiceAccount turns the base64 service-account credential from the
// environment into raw JSON.
func DecodeServiceAccount(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode service account: %w", err)
	}
	return raw, nil
}

// NewFirebaseVerifierFromCredentials reads the project id out of the
// service-account JSON.
func NewFirebaseVerifierFromCredentials(ctx context.Context, credentialsJSON []byte, opts ...Option) (*FirebaseVerifier, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON)
	if err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}
	if creds.ProjectID == "" {
		return nil, errors.New("service account has no project_id")
	}
	return NewFirebaseVerifier(creds.ProjectID, opts...), nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrMissingToken
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	claims := &firebaseClaims{}
	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		return v.key(ctx, kid)
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	now := v.now()
	switch {
	case !claims.VerifyExpiresAt(now, true):
		return Identity{}, fmt.Errorf("%w: token expired", ErrInvalidToken)
	case !claims.VerifyIssuedAt(now, true):
		return Identity{}, fmt.Errorf("%w: token used before issued", ErrInvalidToken)
	case !claims.VerifyAudience(v.projectID, true):
		return Identity{}, fmt.Errorf("%w: wrong audience", ErrInvalidToken)
	case !claims.VerifyIssuer(issuerPrefix+v.projectID, true):
		return Identity{}, fmt.Errorf("%w: wrong issuer", ErrInvalidToken)
	case claims.Subject == "":
		return Identity{}, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	case claims.Email == "":
		return Identity{}, fmt.Errorf("%w: token carries no email", ErrInvalidToken)
	}

	return Identity{UID: claims.Subject, Email: claims.Email}, nil
}

func (v *FirebaseVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.keys == nil || v.now().After(v.expires) {
		if err := v.refresh(ctx); err != nil {
			return nil, err
		}
	}
	key, ok := v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}
	return key, nil
}

// refresh must be called with mu held.
func (v *FirebaseVerifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return err
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch signing certs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch signing certs: status %d", resp.StatusCode)
	}

	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return fmt.Errorf("decode signing certs: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pem := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return fmt.Errorf("parse cert %s: %w", kid, err)
		}
		keys[kid] = key
	}

	v.keys = keys
	v.expires = v.now().Add(maxAge(resp.Header.Get("Cache-Control")))
	return nil
}

func maxAge(cacheControl string) time.Duration {
	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.TrimSpace(directive)
		if !strings.HasPrefix(directive, "max-age=") {
			continue
		}
		secs, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age="))
		if err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultKeysTTL
}
