package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cartify/api/internal/domain"
	"github.com/cartify/api/internal/remote"
	"github.com/cartify/api/internal/session"
	"github.com/cartify/api/internal/validation"
)

const usersCollection = "users"

var (
	errUserCollectionRequired = errors.New("user service: item collection is required")
	errUserAuthRequired       = errors.New("user service: session source is required")
	errUserSessionRequired    = errors.New("user service: local session is required")
	errUserClockRequired      = errors.New("user service: clock is required")
)

// UserServiceDeps wires authentication, profile storage and the local
// session for user operations.
type UserServiceDeps struct {
	Collection remote.ItemCollection
	Auth       remote.SessionSource
	Session    *session.LocalSession
	Clock      func() time.Time
	Logger     func(context.Context, string, map[string]any)
}

type userService struct {
	collection remote.ItemCollection
	auth       remote.SessionSource
	local      *session.LocalSession
	now        func() time.Time
	logger     func(context.Context, string, map[string]any)
}

// NewUserService constructs a UserService enforcing dependency validation.
func NewUserService(deps UserServiceDeps) (UserService, error) {
	if deps.Collection == nil {
		return nil, errUserCollectionRequired
	}
	if deps.Auth == nil {
		return nil, errUserAuthRequired
	}
	if deps.Session == nil {
		return nil, errUserSessionRequired
	}
	if deps.Clock == nil {
		return nil, errUserClockRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &userService{
		collection: deps.Collection,
		auth:       deps.Auth,
		local:      deps.Session,
		now:        deps.Clock,
		logger:     logger,
	}, nil
}

// SignIn authenticates the credentials and records the login locally.
func (s *userService) SignIn(ctx context.Context, creds Credentials) (domain.Session, error) {
	email := validation.Sanitize(creds.Email)
	if res := validation.Email(email); !res.OK {
		return domain.Session{}, invalid(res.Message)
	}
	if strings.TrimSpace(creds.Password) == "" {
		return domain.Session{}, invalid("Password is required")
	}

	uid, err := s.auth.SignIn(ctx, email, creds.Password)
	if err != nil {
		return domain.Session{}, fmt.Errorf("user service: sign in: %w", err)
	}

	name := s.profileName(ctx, uid)
	if err := s.local.SaveLogin(uid, email, name, s.now()); err != nil {
		return domain.Session{}, errors.Join(ErrUnavailable, err)
	}

	s.logger(ctx, "user.signed_in", map[string]any{"userID": uid})
	return s.sessionOrErr()
}

// SignUp validates the registration form, creates the account, stores the
// initial profile and signs the user in.
func (s *userService) SignUp(ctx context.Context, creds Credentials) (domain.Session, error) {
	email := validation.Sanitize(creds.Email)
	name := validation.Sanitize(creds.Name)
	if res := validation.Email(email); !res.OK {
		return domain.Session{}, invalid(res.Message)
	}
	if res := validation.Name(name); !res.OK {
		return domain.Session{}, invalid(res.Message)
	}
	if res := validation.Password(creds.Password); !res.OK {
		return domain.Session{}, invalid(res.Message)
	}

	uid, err := s.auth.SignUp(ctx, email, creds.Password)
	if err != nil {
		return domain.Session{}, fmt.Errorf("user service: sign up: %w", err)
	}

	now := s.now().Format(domain.TimestampLayout)
	profile := domain.UserProfile{
		UserID:      uid,
		Email:       email,
		Name:        name,
		CreatedAt:   now,
		LastLoginAt: now,
	}
	if err := s.storeProfile(ctx, profile); err != nil {
		s.logger(ctx, "user.profile_store_failed", map[string]any{
			"userID": uid,
			"error":  err.Error(),
		})
	}

	if err := s.local.SaveLogin(uid, email, name, s.now()); err != nil {
		return domain.Session{}, errors.Join(ErrUnavailable, err)
	}

	s.logger(ctx, "user.signed_up", map[string]any{"userID": uid})
	return s.sessionOrErr()
}

// SignOut ends the remote session and clears the local one. Preferences and
// recent searches survive.
func (s *userService) SignOut(ctx context.Context) error {
	if err := s.auth.SignOut(ctx); err != nil {
		s.logger(ctx, "user.remote_sign_out_failed", map[string]any{
			"error": err.Error(),
		})
	}
	if err := s.local.Logout(); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

// SendPasswordReset asks the auth backend to mail a reset link to the email.
func (s *userService) SendPasswordReset(ctx context.Context, email string) error {
	clean := validation.Sanitize(email)
	if res := validation.Email(clean); !res.OK {
		return invalid(res.Message)
	}
	if err := s.auth.SendPasswordReset(ctx, clean); err != nil {
		return fmt.Errorf("user service: send password reset: %w", err)
	}
	s.logger(ctx, "user.password_reset_requested", nil)
	return nil
}

// CurrentSession returns the locally recorded session. When the local record
// says nobody is signed in but the auth backend still holds a user, the login
// is rebuilt from the stored profile, as happens after the local store is
// wiped while the backend session survives.
func (s *userService) CurrentSession(ctx context.Context) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	current, err := s.local.Session()
	if err != nil {
		return domain.Session{}, errors.Join(ErrUnavailable, err)
	}
	if current.LoggedIn {
		return current, nil
	}

	uid, err := s.auth.CurrentUserID(ctx)
	if err != nil || uid == "" {
		return domain.Session{}, ErrNoSession
	}

	var email, name string
	if profile, perr := s.Profile(ctx, uid); perr == nil {
		email, name = profile.Email, profile.Name
	}
	if err := s.local.SaveLogin(uid, email, name, s.now()); err != nil {
		return domain.Session{}, errors.Join(ErrUnavailable, err)
	}
	s.logger(ctx, "user.session_restored", map[string]any{"userID": uid})
	return s.sessionOrErr()
}

// Profile loads the user's profile, preferring the remote copy and falling
// back to the locally cached one.
func (s *userService) Profile(ctx context.Context, userID string) (domain.UserProfile, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return domain.UserProfile{}, ErrNoSession
	}

	docs, err := s.collection.Query(ctx, usersCollection, "userId", uid)
	if err == nil && len(docs) > 0 {
		var profile domain.UserProfile
		if decodeErr := remote.Decode(docs[0], &profile); decodeErr == nil {
			profile.UserID = uid
			return profile, nil
		}
	}
	if err != nil {
		s.logger(ctx, "user.profile_load_failed", map[string]any{
			"userID": uid,
			"error":  err.Error(),
		})
	}

	cached, found, localErr := s.local.Profile()
	if localErr != nil {
		return domain.UserProfile{}, errors.Join(ErrUnavailable, localErr)
	}
	if found && cached.UserID == uid {
		return cached, nil
	}
	if err != nil {
		return domain.UserProfile{}, translateStoreError(err)
	}
	return domain.UserProfile{}, ErrNotFound
}

// SaveProfile validates, sanitises and persists the profile remotely and in
// the local cache.
func (s *userService) SaveProfile(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
	uid := strings.TrimSpace(profile.UserID)
	if uid == "" {
		return domain.UserProfile{}, ErrNoSession
	}

	clean := domain.UserProfile{
		UserID:      uid,
		Email:       validation.Sanitize(profile.Email),
		Name:        validation.Sanitize(profile.Name),
		Phone:       strings.TrimSpace(profile.Phone),
		Address:     validation.Sanitize(profile.Address),
		CreatedAt:   profile.CreatedAt,
		LastLoginAt: profile.LastLoginAt,
	}
	if res := validation.Email(clean.Email); !res.OK {
		return domain.UserProfile{}, invalid(res.Message)
	}
	if res := validation.Name(clean.Name); !res.OK {
		return domain.UserProfile{}, invalid(res.Message)
	}
	if clean.Phone != "" {
		if res := validation.Phone(clean.Phone); !res.OK {
			return domain.UserProfile{}, invalid(res.Message)
		}
	}
	if clean.Address != "" {
		if res := validation.Address(clean.Address); !res.OK {
			return domain.UserProfile{}, invalid(res.Message)
		}
	}
	if clean.CreatedAt == "" {
		clean.CreatedAt = s.now().Format(domain.TimestampLayout)
	}

	if err := s.storeProfile(ctx, clean); err != nil {
		return domain.UserProfile{}, err
	}
	if err := s.local.SaveProfile(clean); err != nil {
		return domain.UserProfile{}, errors.Join(ErrUnavailable, err)
	}
	return clean, nil
}

// Favorites returns the signed-in user's favorite product identifiers.
func (s *userService) Favorites(ctx context.Context) ([]string, error) {
	if _, err := s.requireSession(ctx); err != nil {
		return nil, err
	}
	favorites, err := s.local.Favorites()
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}
	return favorites, nil
}

// AddFavorite records a product as favorite. Adding twice is a no-op.
func (s *userService) AddFavorite(ctx context.Context, productID string) error {
	if _, err := s.requireSession(ctx); err != nil {
		return err
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return ErrInvalidInput
	}
	if err := s.local.AddFavorite(pid); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

// RemoveFavorite drops a product from the favorites.
func (s *userService) RemoveFavorite(ctx context.Context, productID string) error {
	if _, err := s.requireSession(ctx); err != nil {
		return err
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return ErrInvalidInput
	}
	if err := s.local.RemoveFavorite(pid); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

// Preferences returns the stored preferences with defaults applied.
func (s *userService) Preferences(ctx context.Context) (domain.Preferences, error) {
	if err := ctx.Err(); err != nil {
		return domain.Preferences{}, err
	}
	prefs, err := s.local.Preferences()
	if err != nil {
		return domain.Preferences{}, errors.Join(ErrUnavailable, err)
	}
	return prefs, nil
}

// UpdatePreferences validates and stores the full preference set.
func (s *userService) UpdatePreferences(ctx context.Context, prefs domain.Preferences) (domain.Preferences, error) {
	if err := ctx.Err(); err != nil {
		return domain.Preferences{}, err
	}

	if err := s.local.SetTheme(prefs.Theme); err != nil {
		return domain.Preferences{}, prefsErr(err)
	}
	if err := s.local.SetNotificationsEnabled(prefs.NotificationsEnabled); err != nil {
		return domain.Preferences{}, prefsErr(err)
	}
	if err := s.local.SetLanguage(prefs.Language); err != nil {
		return domain.Preferences{}, prefsErr(err)
	}
	if err := s.local.SetCurrency(prefs.Currency); err != nil {
		return domain.Preferences{}, prefsErr(err)
	}

	stored, err := s.local.Preferences()
	if err != nil {
		return domain.Preferences{}, errors.Join(ErrUnavailable, err)
	}
	return stored, nil
}

func (s *userService) requireSession(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	uid, err := s.local.UserID()
	if err != nil {
		return "", errors.Join(ErrUnavailable, err)
	}
	if uid == "" {
		return "", ErrNoSession
	}
	return uid, nil
}

func (s *userService) sessionOrErr() (domain.Session, error) {
	current, err := s.local.Session()
	if err != nil {
		return domain.Session{}, errors.Join(ErrUnavailable, err)
	}
	if !current.LoggedIn {
		return domain.Session{}, ErrNoSession
	}
	return current, nil
}

func (s *userService) storeProfile(ctx context.Context, profile domain.UserProfile) error {
	doc, err := remote.Encode(profile.UserID, profile)
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	if err := s.collection.Upsert(ctx, usersCollection, doc); err != nil {
		return translateStoreError(err)
	}
	return nil
}

func (s *userService) profileName(ctx context.Context, uid string) string {
	profile, err := s.Profile(ctx, uid)
	if err != nil {
		return ""
	}
	return profile.Name
}

func invalid(message string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, message)
}

func prefsErr(err error) error {
	if errors.Is(err, session.ErrStoreIO) {
		return errors.Join(ErrUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
