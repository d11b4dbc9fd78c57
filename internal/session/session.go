package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/cartify/api/internal/domain"
	"github.com/cartify/api/internal/validation"
)

// Persisted key names. Collection values are JSON-encoded strings.
const (
	keyUserID         = "session.userId"
	keyEmail          = "session.email"
	keyName           = "session.name"
	keyLoggedIn       = "session.loggedIn"
	keyLastLogin      = "session.lastLogin"
	keyProfile        = "profile"
	keyCart           = "cart"
	keyFavorites      = "favorites"
	keyRecentSearches = "recentSearches"
	keyTheme          = "prefs.theme"
	keyNotifications  = "prefs.notifications"
	keyLanguage       = "prefs.language"
	keyCurrency       = "prefs.currency"
	keyFirstTimeUser  = "firstTimeUser"
)

const maxRecentSearches = 10

var errStoreRequired = errors.New("session: store is required")

// ErrInvalidPreference indicates a preference setter was given a value
// outside its accepted set.
var ErrInvalidPreference = errors.New("session: invalid preference value")

// LocalSession is the typed façade over the key-value store. It exclusively
// owns persisted local state; composite read-modify-write operations are
// not safe under concurrent writers and must be serialised by the caller.
type LocalSession struct {
	store Store
}

// New constructs the façade over the given store.
func New(store Store) (*LocalSession, error) {
	if store == nil {
		return nil, errStoreRequired
	}
	return &LocalSession{store: store}, nil
}

// SaveLogin records a successful authentication. Strings originating from
// user input are sanitised before storage.
func (s *LocalSession) SaveLogin(userID, email, name string, now time.Time) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("session: user id is required")
	}
	writes := []struct{ key, value string }{
		{keyUserID, strings.TrimSpace(userID)},
		{keyEmail, validation.Sanitize(email)},
		{keyName, validation.Sanitize(name)},
		{keyLoggedIn, "true"},
		{keyLastLogin, strconv.FormatInt(now.UnixMilli(), 10)},
		{keyFirstTimeUser, "false"},
	}
	for _, w := range writes {
		if err := s.store.Set(w.key, w.value); err != nil {
			return wrapStoreErr(err)
		}
	}
	return nil
}

// Session assembles the current session value from its keys.
func (s *LocalSession) Session() (domain.Session, error) {
	userID, err := s.getString(keyUserID, "")
	if err != nil {
		return domain.Session{}, err
	}
	email, err := s.getString(keyEmail, "")
	if err != nil {
		return domain.Session{}, err
	}
	name, err := s.getString(keyName, "")
	if err != nil {
		return domain.Session{}, err
	}
	loggedIn, err := s.getBool(keyLoggedIn, false)
	if err != nil {
		return domain.Session{}, err
	}
	firstTime, err := s.getBool(keyFirstTimeUser, true)
	if err != nil {
		return domain.Session{}, err
	}
	lastLogin, err := s.getInt64(keyLastLogin, 0)
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{
		UserID:        userID,
		Email:         email,
		Name:          name,
		LoggedIn:      loggedIn,
		FirstTimeUser: firstTime,
		LastLogin:     lastLogin,
	}, nil
}

// UserID returns the current user identifier, empty when logged out.
func (s *LocalSession) UserID() (string, error) {
	return s.getString(keyUserID, "")
}

// IsLoggedIn reports whether a session is active.
func (s *LocalSession) IsLoggedIn() (bool, error) {
	return s.getBool(keyLoggedIn, false)
}

// Logout clears only the session.* keys. Profile and preferences survive.
func (s *LocalSession) Logout() error {
	for _, key := range []string{keyUserID, keyEmail, keyName, keyLoggedIn, keyLastLogin} {
		if err := s.store.Delete(key); err != nil {
			return wrapStoreErr(err)
		}
	}
	return nil
}

// ClearAll erases every stored key.
func (s *LocalSession) ClearAll() error {
	return wrapStoreErr(s.store.Clear())
}

// SaveProfile stores the user profile document.
func (s *LocalSession) SaveProfile(profile domain.UserProfile) error {
	return s.setJSON(keyProfile, profile)
}

// Profile loads the stored user profile; ok is false when absent.
func (s *LocalSession) Profile() (domain.UserProfile, bool, error) {
	var profile domain.UserProfile
	ok, err := s.getJSON(keyProfile, &profile)
	return profile, ok, err
}

// SaveCart stores the cart item list.
func (s *LocalSession) SaveCart(c domain.Cart) error {
	items := c.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return s.setJSON(keyCart, items)
}

// Cart loads the stored cart, empty when nothing was saved.
func (s *LocalSession) Cart() (domain.Cart, error) {
	var items []domain.CartItem
	ok, err := s.getJSON(keyCart, &items)
	if err != nil {
		return domain.Cart{}, err
	}
	if !ok || items == nil {
		items = []domain.CartItem{}
	}
	return domain.Cart{Items: items}, nil
}

// ClearCart removes the stored cart.
func (s *LocalSession) ClearCart() error {
	return wrapStoreErr(s.store.Delete(keyCart))
}

// Favorites returns the favorite product identifiers in insertion order.
func (s *LocalSession) Favorites() ([]string, error) {
	var favorites []string
	if _, err := s.getJSON(keyFavorites, &favorites); err != nil {
		return nil, err
	}
	if favorites == nil {
		favorites = []string{}
	}
	return favorites, nil
}

// AddFavorite records the product identifier; adding twice is a no-op.
func (s *LocalSession) AddFavorite(productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return errors.New("session: product id is required")
	}
	favorites, err := s.Favorites()
	if err != nil {
		return err
	}
	for _, existing := range favorites {
		if existing == productID {
			return nil
		}
	}
	return s.setJSON(keyFavorites, append(favorites, productID))
}

// RemoveFavorite drops the product identifier; absent ids are a no-op.
func (s *LocalSession) RemoveFavorite(productID string) error {
	favorites, err := s.Favorites()
	if err != nil {
		return err
	}
	kept := favorites[:0]
	for _, existing := range favorites {
		if existing != productID {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(favorites) {
		return nil
	}
	return s.setJSON(keyFavorites, kept)
}

// IsFavorite reports whether the product identifier is stored.
func (s *LocalSession) IsFavorite(productID string) (bool, error) {
	favorites, err := s.Favorites()
	if err != nil {
		return false, err
	}
	for _, existing := range favorites {
		if existing == productID {
			return true, nil
		}
	}
	return false, nil
}

// RecentSearches returns the stored search history, most-recent first.
func (s *LocalSession) RecentSearches() ([]string, error) {
	var searches []string
	if _, err := s.getJSON(keyRecentSearches, &searches); err != nil {
		return nil, err
	}
	if searches == nil {
		searches = []string{}
	}
	return searches, nil
}

// AddRecentSearch sanitises and validates the query, then records it at the
// front of the history. Case-insensitive duplicates are removed and the
// list is capped at ten entries. Invalid queries are silently dropped.
func (s *LocalSession) AddRecentSearch(query string) error {
	sanitized := validation.Sanitize(query)
	if res := validation.SearchQuery(sanitized); !res.OK {
		return nil
	}
	searches, err := s.RecentSearches()
	if err != nil {
		return err
	}
	kept := make([]string, 0, len(searches)+1)
	kept = append(kept, sanitized)
	for _, existing := range searches {
		if strings.EqualFold(existing, sanitized) {
			continue
		}
		kept = append(kept, existing)
	}
	if len(kept) > maxRecentSearches {
		kept = kept[:maxRecentSearches]
	}
	return s.setJSON(keyRecentSearches, kept)
}

// ClearRecentSearches drops the stored history.
func (s *LocalSession) ClearRecentSearches() error {
	return wrapStoreErr(s.store.Delete(keyRecentSearches))
}

// Preferences assembles the current preference values with defaults.
func (s *LocalSession) Preferences() (domain.Preferences, error) {
	prefs := domain.DefaultPreferences()

	theme, err := s.getString(keyTheme, string(prefs.Theme))
	if err != nil {
		return domain.Preferences{}, err
	}
	if theme == string(domain.ThemeDark) {
		prefs.Theme = domain.ThemeDark
	}

	if prefs.NotificationsEnabled, err = s.getBool(keyNotifications, true); err != nil {
		return domain.Preferences{}, err
	}
	if prefs.Language, err = s.getString(keyLanguage, prefs.Language); err != nil {
		return domain.Preferences{}, err
	}
	if prefs.Currency, err = s.getString(keyCurrency, prefs.Currency); err != nil {
		return domain.Preferences{}, err
	}
	return prefs, nil
}

// SetTheme stores the display theme.
func (s *LocalSession) SetTheme(theme domain.Theme) error {
	if theme != domain.ThemeLight && theme != domain.ThemeDark {
		return fmt.Errorf("%w: theme %q", ErrInvalidPreference, theme)
	}
	return wrapStoreErr(s.store.Set(keyTheme, string(theme)))
}

// SetNotificationsEnabled stores the notification opt-in flag.
func (s *LocalSession) SetNotificationsEnabled(enabled bool) error {
	return wrapStoreErr(s.store.Set(keyNotifications, strconv.FormatBool(enabled)))
}

// SetLanguage stores the UI language after checking it parses as a BCP-47
// tag.
func (s *LocalSession) SetLanguage(lang string) error {
	lang = strings.TrimSpace(lang)
	if _, err := language.Parse(lang); err != nil {
		return fmt.Errorf("%w: language %q", ErrInvalidPreference, lang)
	}
	return wrapStoreErr(s.store.Set(keyLanguage, lang))
}

// SetCurrency stores the display currency, requiring a 3-letter ISO code.
func (s *LocalSession) SetCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return fmt.Errorf("%w: currency %q", ErrInvalidPreference, currency)
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("%w: currency %q", ErrInvalidPreference, currency)
		}
	}
	return wrapStoreErr(s.store.Set(keyCurrency, currency))
}

// SetJSON stores an arbitrary JSON-encodable value under the key.
func (s *LocalSession) SetJSON(key string, value any) error {
	return s.setJSON(key, value)
}

// GetJSON loads an arbitrary JSON value; ok is false when the key is absent.
func (s *LocalSession) GetJSON(key string, out any) (bool, error) {
	return s.getJSON(key, out)
}

func (s *LocalSession) getString(key, fallback string) (string, error) {
	value, ok, err := s.store.Get(key)
	if err != nil {
		return "", wrapStoreErr(err)
	}
	if !ok {
		return fallback, nil
	}
	return value, nil
}

func (s *LocalSession) getBool(key string, fallback bool) (bool, error) {
	raw, ok, err := s.store.Get(key)
	if err != nil {
		return false, wrapStoreErr(err)
	}
	if !ok {
		return fallback, nil
	}
	parsed, parseErr := strconv.ParseBool(raw)
	if parseErr != nil {
		return fallback, nil
	}
	return parsed, nil
}

func (s *LocalSession) getInt64(key string, fallback int64) (int64, error) {
	raw, ok, err := s.store.Get(key)
	if err != nil {
		return 0, wrapStoreErr(err)
	}
	if !ok {
		return fallback, nil
	}
	parsed, parseErr := strconv.ParseInt(raw, 10, 64)
	if parseErr != nil {
		return fallback, nil
	}
	return parsed, nil
}

func (s *LocalSession) setJSON(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", key, err)
	}
	return wrapStoreErr(s.store.Set(key, string(data)))
}

func (s *LocalSession) getJSON(key string, out any) (bool, error) {
	raw, ok, err := s.store.Get(key)
	if err != nil {
		return false, wrapStoreErr(err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("session: decode %s: %w", key, err)
	}
	return true, nil
}

func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStoreIO) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreIO, err)
}
