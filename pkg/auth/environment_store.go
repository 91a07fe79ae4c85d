package auth

import (
	"os"
	"strings"
	"time"

	"vidscraper/pkg/platform"
)

// EnvironmentStore exposes VIDSCRAPER_<PLATFORM>_COOKIE variables as
// read-only profiles named after their platform
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based profile store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// EnvVar is the variable holding the cookie of p
func EnvVar(p platform.Platform) string {
	return "VIDSCRAPER_" + strings.ToUpper(string(p)) + "_COOKIE"
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(profile *Profile) error {
	return ErrStoreUnavailable
}

// Retrieve answers for the names "instagram" and "facebook"
func (e *EnvironmentStore) Retrieve(name string) (*Profile, error) {
	p := platform.Platform(name)
	if p != platform.Instagram && p != platform.Facebook {
		return nil, ErrProfileNotFound
	}

	cookie := os.Getenv(EnvVar(p))
	if cookie == "" {
		return nil, ErrProfileNotFound
	}

	return &Profile{
		Name:         name,
		Platform:     p,
		Cookie:       cookie,
		UserAgent:    os.Getenv("VIDSCRAPER_USER_AGENT"),
		LastModified: time.Time{},
	}, nil
}

// List returns one profile per platform whose variable is set
func (e *EnvironmentStore) List() ([]*Profile, error) {
	var profiles []*Profile
	for _, p := range platform.All {
		if profile, err := e.Retrieve(string(p)); err == nil {
			profiles = append(profiles, profile)
		}
	}
	return profiles, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if the variable behind name is set
func (e *EnvironmentStore) Exists(name string) bool {
	_, err := e.Retrieve(name)
	return err == nil
}
