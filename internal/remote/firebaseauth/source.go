// Package firebaseauth implements the remote.SessionSource collaborator on
// top of Firebase Authentication. Account management goes through the Admin
// SDK; credential sign-in and password reset mail go through the Identity
// Toolkit REST API, which the Admin SDK does not expose.
package firebaseauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

const (
	defaultEndpoint    = "https://identitytoolkit.googleapis.com/v1"
	defaultCallTimeout = 10 * time.Second
)

var (
	// ErrInvalidCredentials is returned when the email/password pair is rejected.
	ErrInvalidCredentials = errors.New("firebaseauth: invalid credentials")
	// ErrEmailInUse is returned when signing up with an already registered email.
	ErrEmailInUse = errors.New("firebaseauth: email already in use")
	// ErrUserNotFound is returned when no account exists for the email.
	ErrUserNotFound = errors.New("firebaseauth: user not found")
)

// Config carries the Firebase project settings for the Source.
type Config struct {
	ProjectID       string
	APIKey          string
	CredentialsFile string
	// Endpoint overrides the Identity Toolkit base URL, used for emulators.
	Endpoint string
	Timeout  time.Duration
}

// Source implements remote.SessionSource backed by Firebase Authentication.
// It tracks the signed-in user the way the device SDKs do: the identifier of
// the last successful sign-in is held until SignOut.
type Source struct {
	admin      *firebaseauth.Client
	httpClient *http.Client
	apiKey     string
	endpoint   string
	timeout    time.Duration

	mu         sync.RWMutex
	currentUID string
}

// SourceOption customises Source instances.
type SourceOption func(*Source)

// WithHTTPClient overrides the HTTP client used for Identity Toolkit calls.
func WithHTTPClient(client *http.Client) SourceOption {
	return func(s *Source) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// NewSource constructs a Source backed by the Firebase Admin SDK.
func NewSource(ctx context.Context, cfg Config, opts ...SourceOption) (*Source, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("firebaseauth: project id is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("firebaseauth: api key is required")
	}

	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("firebaseauth: initialise app: %w", err)
	}
	admin, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebaseauth: initialise auth client: %w", err)
	}

	source := &Source{
		admin:      admin,
		httpClient: http.DefaultClient,
		apiKey:     cfg.APIKey,
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		timeout:    cfg.Timeout,
	}
	if source.endpoint == "" {
		source.endpoint = defaultEndpoint
	}
	if source.timeout <= 0 {
		source.timeout = defaultCallTimeout
	}
	for _, opt := range opts {
		if opt != nil {
			opt(source)
		}
	}
	return source, nil
}

// CurrentUserID returns the identifier of the signed-in user, or empty when
// nobody is signed in.
func (s *Source) CurrentUserID(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentUID, nil
}

// SignIn exchanges the email/password pair for a user identifier.
func (s *Source) SignIn(ctx context.Context, email, password string) (string, error) {
	var result struct {
		LocalID string `json:"localId"`
	}
	payload := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	if err := s.callIdentityToolkit(ctx, "accounts:signInWithPassword", payload, &result); err != nil {
		return "", err
	}
	if result.LocalID == "" {
		return "", ErrInvalidCredentials
	}

	s.mu.Lock()
	s.currentUID = result.LocalID
	s.mu.Unlock()
	return result.LocalID, nil
}

// SignUp registers a new account and signs it in.
func (s *Source) SignUp(ctx context.Context, email, password string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := (&firebaseauth.UserToCreate{}).Email(email).Password(password)
	record, err := s.admin.CreateUser(ctx, params)
	if err != nil {
		if firebaseauth.IsEmailAlreadyExists(err) {
			return "", ErrEmailInUse
		}
		return "", fmt.Errorf("firebaseauth: create user: %w", err)
	}

	s.mu.Lock()
	s.currentUID = record.UID
	s.mu.Unlock()
	return record.UID, nil
}

// SendPasswordReset asks Firebase to mail a password reset link to the email.
func (s *Source) SendPasswordReset(ctx context.Context, email string) error {
	payload := map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}
	return s.callIdentityToolkit(ctx, "accounts:sendOobCode", payload, nil)
}

// SignOut revokes the user's refresh tokens and clears the local session.
func (s *Source) SignOut(ctx context.Context) error {
	s.mu.Lock()
	uid := s.currentUID
	s.currentUID = ""
	s.mu.Unlock()

	if uid == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.admin.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("firebaseauth: revoke tokens: %w", err)
	}
	return nil
}

func (s *Source) callIdentityToolkit(ctx context.Context, action string, payload map[string]any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("firebaseauth: encode %s request: %w", action, err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", s.endpoint, action, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("firebaseauth: build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("firebaseauth: call %s: %w", action, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("firebaseauth: read %s response: %w", action, err)
	}

	if resp.StatusCode != http.StatusOK {
		return identityToolkitError(action, resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("firebaseauth: decode %s response: %w", action, err)
	}
	return nil
}

func identityToolkitError(action string, statusCode int, raw []byte) error {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(raw, &body)

	code := body.Error.Message
	switch {
	case strings.HasPrefix(code, "EMAIL_NOT_FOUND"), strings.HasPrefix(code, "USER_DISABLED"):
		return ErrUserNotFound
	case strings.HasPrefix(code, "INVALID_PASSWORD"), strings.HasPrefix(code, "INVALID_LOGIN_CREDENTIALS"):
		return ErrInvalidCredentials
	case strings.HasPrefix(code, "EMAIL_EXISTS"):
		return ErrEmailInUse
	}
	return fmt.Errorf("firebaseauth: %s failed with status %d: %s", action, statusCode, code)
}
