package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"vidscraper/pkg/platform"
)

// Profile is a named browser session cookie for one platform
type Profile struct {
	Name         string            `json:"name"`
	Platform     platform.Platform `json:"platform"`
	Cookie       string            `json:"cookie"`
	UserAgent    string            `json:"user_agent,omitempty"`
	LastModified time.Time         `json:"last_modified"`
}

// ProfileStore is a backend profiles can be kept in
type ProfileStore interface {
	Store(profile *Profile) error
	Retrieve(name string) (*Profile, error)
	List() ([]*Profile, error)
	Delete(name string) error
	Exists(name string) bool
}

// Manager stores profiles in the first backend that accepts them and
// reads from all of them
type Manager struct {
	stores []ProfileStore
}

// NewManager uses the system keyring when available, then an encrypted
// file in the config directory, then environment variables
func NewManager() (*Manager, error) {
	var stores []ProfileStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "cookies.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores builds a Manager over explicit backends
func NewManagerWithStores(stores ...ProfileStore) *Manager {
	return &Manager{stores: stores}
}

// Validate checks the fields a profile needs before it is stored
func Validate(profile *Profile) error {
	if profile == nil || profile.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	switch profile.Platform {
	case platform.Instagram, platform.Facebook:
	default:
		return fmt.Errorf("%w: unknown platform %q", ErrInvalidProfile, profile.Platform)
	}
	if !strings.Contains(profile.Cookie, "=") {
		return fmt.Errorf("%w: cookie must be a name=value list", ErrInvalidProfile)
	}
	return nil
}

// Store saves profile using the first store that accepts it
func (m *Manager) Store(profile *Profile) error {
	if err := Validate(profile); err != nil {
		return err
	}
	profile.Cookie = strings.TrimSpace(profile.Cookie)
	profile.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(profile)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store profile: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Retrieve gets the profile from the first store that has it
func (m *Manager) Retrieve(name string) (*Profile, error) {
	for _, store := range m.stores {
		if profile, err := store.Retrieve(name); err == nil && profile != nil {
			return profile, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// List returns every profile, keeping the most recent copy of each name
func (m *Manager) List() ([]*Profile, error) {
	byName := make(map[string]*Profile)

	for _, store := range m.stores {
		profiles, err := store.List()
		if err != nil {
			continue
		}
		for _, profile := range profiles {
			if existing, ok := byName[profile.Name]; !ok || profile.LastModified.After(existing.LastModified) {
				byName[profile.Name] = profile
			}
		}
	}

	result := make([]*Profile, 0, len(byName))
	for _, profile := range byName {
		result = append(result, profile)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result, nil
}

// ForPlatform returns the most recently modified profile of p
func (m *Manager) ForPlatform(p platform.Platform) (*Profile, error) {
	profiles, err := m.List()
	if err != nil {
		return nil, err
	}

	var best *Profile
	for _, profile := range profiles {
		if profile.Platform != p {
			continue
		}
		if best == nil || profile.LastModified.After(best.LastModified) {
			best = profile
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no profile for %s", ErrProfileNotFound, p)
	}
	return best, nil
}

// Delete removes the profile from every store
func (m *Manager) Delete(name string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(name); err == nil {
			deleted = true
		} else if !errors.Is(err, ErrProfileNotFound) && !errors.Is(err, ErrStoreUnavailable) {
			lastErr = err
		}
	}

	if deleted {
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("failed to delete profile: %w", lastErr)
	}
	return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "vidscraper")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "vidscraper")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "vidscraper")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "vidscraper")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// Sanitize returns a copy of profile with the cookie values masked
func Sanitize(profile *Profile) *Profile {
	if profile == nil {
		return nil
	}

	masked := *profile
	pairs := strings.Split(profile.Cookie, ";")
	for i, pair := range pairs {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			pairs[i] = maskString(name)
			continue
		}
		pairs[i] = name + "=" + maskString(value)
	}
	masked.Cookie = strings.Join(pairs, "; ")
	return &masked
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

var (
	ErrProfileNotFound  = errors.New("cookie profile not found")
	ErrInvalidProfile   = errors.New("invalid cookie profile")
	ErrStoreUnavailable = errors.New("profile store unavailable")
)
