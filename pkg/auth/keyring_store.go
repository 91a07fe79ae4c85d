package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "vidscraper"
	keyringPrefix  = "profile_"
	// keyringIndex holds the names of stored profiles since keyrings
	// cannot be enumerated portably
	keyringIndex = "profiles_index"
)

// KeyringStore implements ProfileStore using the system keychain
type KeyringStore struct {
	mu sync.Mutex
}

// NewKeyringStore returns an error when no keychain is reachable
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves a profile to the system keychain
func (k *KeyringStore) Store(profile *Profile) error {
	if profile == nil || profile.Name == "" {
		return ErrInvalidProfile
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if err := keyring.Set(keyringService, keyringPrefix+profile.Name, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	names := k.names()
	if !contains(names, profile.Name) {
		names = append(names, profile.Name)
		return k.saveNames(names)
	}
	return nil
}

// Retrieve gets a profile from the system keychain
func (k *KeyringStore) Retrieve(name string) (*Profile, error) {
	if name == "" {
		return nil, ErrInvalidProfile
	}

	data, err := keyring.Get(keyringService, keyringPrefix+name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	return &profile, nil
}

// List returns the profiles named in the keychain index
func (k *KeyringStore) List() ([]*Profile, error) {
	k.mu.Lock()
	names := k.names()
	k.mu.Unlock()

	profiles := make([]*Profile, 0, len(names))
	for _, name := range names {
		profile, err := k.Retrieve(name)
		if err != nil {
			continue
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// Delete removes a profile from the system keychain
func (k *KeyringStore) Delete(name string) error {
	if name == "" {
		return ErrInvalidProfile
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	err := keyring.Delete(keyringService, keyringPrefix+name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	names := k.names()
	kept := names[:0]
	for _, n := range names {
		if n != name {
			kept = append(kept, n)
		}
	}
	return k.saveNames(kept)
}

// Exists checks if a profile is in the keychain
func (k *KeyringStore) Exists(name string) bool {
	if name == "" {
		return false
	}
	_, err := keyring.Get(keyringService, keyringPrefix+name)
	return err == nil
}

func (k *KeyringStore) names() []string {
	raw, err := keyring.Get(keyringService, keyringIndex)
	if err != nil || raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}

func (k *KeyringStore) saveNames(names []string) error {
	if len(names) == 0 {
		err := keyring.Delete(keyringService, keyringIndex)
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to update keyring index: %w", err)
		}
		return nil
	}

	sort.Strings(names)
	if err := keyring.Set(keyringService, keyringIndex, strings.Join(names, "\n")); err != nil {
		return fmt.Errorf("failed to update keyring index: %w", err)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
