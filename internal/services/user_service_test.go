package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/cartify/api/internal/domain"
	"github.com/cartify/api/internal/remote/firebaseauth"
	"github.com/cartify/api/internal/session"
)

func userFixture(t *testing.T) (UserService, *fakeAuth, *fakeCollection, *session.LocalSession) {
	t.Helper()
	users := newFakeCollection()
	auth := newFakeAuth()
	local, err := session.New(session.NewMemoryStore())
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	svc, err := NewUserService(UserServiceDeps{
		Collection: users,
		Auth:       auth,
		Session:    local,
		Clock:      func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewUserService: %v", err)
	}
	return svc, auth, users, local
}

func TestNewUserServiceValidatesDeps(t *testing.T) {
	if _, err := NewUserService(UserServiceDeps{}); err == nil {
		t.Fatalf("expected missing-collection error")
	}
}

func TestSignUpAndCurrentSession(t *testing.T) {
	svc, _, users, _ := userFixture(t)
	ctx := context.Background()

	sess, err := svc.SignUp(ctx, Credentials{Email: "user@example.com", Password: "Password1", Name: "Jane Doe"})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if !sess.LoggedIn || sess.UserID != "u1" || sess.Name != "Jane Doe" {
		t.Fatalf("session = %+v", sess)
	}

	// The initial profile is stored remotely with creation timestamps.
	doc, ok := users.get(usersCollection, "u1")
	if !ok {
		t.Fatalf("profile document not stored")
	}
	if doc.Data["createdAt"] != "2024-06-01 10:00:00" {
		t.Fatalf("createdAt = %v", doc.Data["createdAt"])
	}

	got, err := svc.CurrentSession(ctx)
	if err != nil {
		t.Fatalf("CurrentSession: %v", err)
	}
	if got.UserID != "u1" {
		t.Fatalf("CurrentSession = %+v", got)
	}
}

func TestSignUpValidation(t *testing.T) {
	svc, _, _, _ := userFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		creds Credentials
	}{
		{"bad email", Credentials{Email: "nope", Password: "Password1", Name: "Jane"}},
		{"bad name", Credentials{Email: "user@example.com", Password: "Password1", Name: "Jane99"}},
		{"no uppercase", Credentials{Email: "user@example.com", Password: "password1", Name: "Jane"}},
		{"no digit", Credentials{Email: "user@example.com", Password: "Password", Name: "Jane"}},
		{"blacklisted", Credentials{Email: "user@example.com", Password: "Welcome123!", Name: "Jane"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.SignUp(ctx, tt.creds); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestSignInAndOut(t *testing.T) {
	svc, _, _, local := userFixture(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, Credentials{Email: "user@example.com", Password: "Password1", Name: "Jane Doe"}); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if err := svc.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := svc.CurrentSession(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}

	sess, err := svc.SignIn(ctx, Credentials{Email: "user@example.com", Password: "Password1"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if !sess.LoggedIn || sess.UserID != "u1" {
		t.Fatalf("session = %+v", sess)
	}
	// The profile name stored at signup is restored into the session.
	if sess.Name != "Jane Doe" {
		t.Fatalf("Name = %q", sess.Name)
	}

	uid, err := local.UserID()
	if err != nil || uid != "u1" {
		t.Fatalf("local UserID = %q, %v", uid, err)
	}
}

func TestSignInBadCredentials(t *testing.T) {
	svc, _, _, _ := userFixture(t)
	ctx := context.Background()

	if _, err := svc.SignIn(ctx, Credentials{Email: "user@example.com", Password: "Wrong1pass"}); err == nil {
		t.Fatalf("unknown account accepted")
	}
	if _, err := svc.SignIn(ctx, Credentials{Email: "not an email", Password: "Password1"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.SignIn(ctx, Credentials{Email: "user@example.com", Password: ""}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestProfileFallsBackToLocalCache(t *testing.T) {
	svc, _, users, local := userFixture(t)
	ctx := context.Background()

	cached := domain.UserProfile{UserID: "u1", Email: "user@example.com", Name: "Jane Doe"}
	if err := local.SaveProfile(cached); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	users.failWith = unavailableErr()

	got, err := svc.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if got != cached {
		t.Fatalf("Profile = %+v", got)
	}

	// A different user cannot see the cached profile.
	if _, err := svc.Profile(ctx, "u2"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestProfileNotFound(t *testing.T) {
	svc, _, _, _ := userFixture(t)
	if _, err := svc.Profile(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Profile(context.Background(), "  "); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
}

func TestSaveProfile(t *testing.T) {
	svc, _, users, local := userFixture(t)
	ctx := context.Background()

	saved, err := svc.SaveProfile(ctx, domain.UserProfile{
		UserID:  "u1",
		Email:   " user@example.com ",
		Name:    "Jane Doe",
		Phone:   " +15551234567 ",
		Address: "1 Main Street, Springfield",
	})
	if err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if saved.Email != "user@example.com" || saved.Phone != "+15551234567" {
		t.Fatalf("sanitised profile = %+v", saved)
	}
	if saved.CreatedAt != "2024-06-01 10:00:00" {
		t.Fatalf("CreatedAt = %q", saved.CreatedAt)
	}

	if _, ok := users.get(usersCollection, "u1"); !ok {
		t.Fatalf("profile not stored remotely")
	}
	cached, ok, err := local.Profile()
	if err != nil || !ok || cached.UserID != "u1" {
		t.Fatalf("local cache = %+v, %v, %v", cached, ok, err)
	}
}

func TestSaveProfileValidation(t *testing.T) {
	svc, _, _, _ := userFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		profile domain.UserProfile
	}{
		{"bad email", domain.UserProfile{UserID: "u1", Email: "nope", Name: "Jane"}},
		{"bad name", domain.UserProfile{UserID: "u1", Email: "user@example.com", Name: "Jane99"}},
		{"bad phone", domain.UserProfile{UserID: "u1", Email: "user@example.com", Name: "Jane", Phone: "123"}},
		{"bad address", domain.UserProfile{UserID: "u1", Email: "user@example.com", Name: "Jane", Address: "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.SaveProfile(ctx, tt.profile); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}

	if _, err := svc.SaveProfile(ctx, domain.UserProfile{Email: "user@example.com", Name: "Jane"}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("missing user id: err = %v, want ErrNoSession", err)
	}
}

func TestFavoritesRequireSession(t *testing.T) {
	svc, _, _, _ := userFixture(t)
	ctx := context.Background()

	if _, err := svc.Favorites(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
	if err := svc.AddFavorite(ctx, "p1"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
}

func TestFavoritesFlow(t *testing.T) {
	svc, _, _, _ := userFixture(t)
	ctx := context.Background()
	if _, err := svc.SignUp(ctx, Credentials{Email: "user@example.com", Password: "Password1", Name: "Jane"}); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if err := svc.AddFavorite(ctx, "p1"); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if err := svc.AddFavorite(ctx, "p2"); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if err := svc.RemoveFavorite(ctx, "p1"); err != nil {
		t.Fatalf("RemoveFavorite: %v", err)
	}
	got, err := svc.Favorites(ctx)
	if err != nil {
		t.Fatalf("Favorites: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"p2"}) {
		t.Fatalf("Favorites = %v", got)
	}

	if err := svc.AddFavorite(ctx, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestUpdatePreferences(t *testing.T) {
	svc, _, _, _ := userFixture(t)
	ctx := context.Background()

	got, err := svc.UpdatePreferences(ctx, domain.Preferences{
		Theme:                domain.ThemeDark,
		NotificationsEnabled: false,
		Language:             "fr",
		Currency:             "eur",
	})
	if err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}
	want := domain.Preferences{Theme: domain.ThemeDark, NotificationsEnabled: false, Language: "fr", Currency: "EUR"}
	if got != want {
		t.Fatalf("preferences = %+v, want %+v", got, want)
	}

	if _, err := svc.UpdatePreferences(ctx, domain.Preferences{Theme: "sepia", Language: "en", Currency: "USD"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}

	current, err := svc.Preferences(ctx)
	if err != nil {
		t.Fatalf("Preferences: %v", err)
	}
	if current != want {
		t.Fatalf("rejected update changed preferences: %+v", current)
	}
}

func TestSendPasswordReset(t *testing.T) {
	svc, auth, _, _ := userFixture(t)
	ctx := context.Background()

	if err := svc.SendPasswordReset(ctx, "  user@example.com  "); err != nil {
		t.Fatalf("SendPasswordReset: %v", err)
	}
	if !reflect.DeepEqual(auth.resetEmails, []string{"user@example.com"}) {
		t.Fatalf("reset emails = %v", auth.resetEmails)
	}

	if err := svc.SendPasswordReset(ctx, "not-an-email"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if len(auth.resetEmails) != 1 {
		t.Fatalf("invalid email reached the backend: %v", auth.resetEmails)
	}
}

func TestSendPasswordResetKeepsBackendError(t *testing.T) {
	svc, auth, _, _ := userFixture(t)
	auth.resetErr = firebaseauth.ErrUserNotFound

	err := svc.SendPasswordReset(context.Background(), "ghost@example.com")
	if !errors.Is(err, firebaseauth.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestCurrentSessionRestoresFromAuthBackend(t *testing.T) {
	svc, _, _, local := userFixture(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, Credentials{Email: "user@example.com", Password: "Password1", Name: "Jane Doe"}); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	// The local store is lost but the auth backend still holds the user.
	if err := local.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}

	sess, err := svc.CurrentSession(ctx)
	if err != nil {
		t.Fatalf("CurrentSession: %v", err)
	}
	if !sess.LoggedIn || sess.UserID != "u1" {
		t.Fatalf("session = %+v", sess)
	}
	if sess.Name != "Jane Doe" || sess.Email != "user@example.com" {
		t.Fatalf("profile not restored into session: %+v", sess)
	}
}
