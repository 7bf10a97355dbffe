package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
)

const (
	// “Service” groups the app's secrets in the OS keychain.
	KeyringService = "jobscout"
)

// APIKey returns the matcher API key from the OS keychain, falling back to the
// envName environment variable. Not finding one is a domain.ErrAuth.
func APIKey(keyringAccount, envName string) (string, error) {
	// 1) Keyring first (recommended)
	if strings.TrimSpace(keyringAccount) != "" {
		key, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(key) != "" {
			return strings.TrimSpace(key), nil
		}
	}

	// 2) Environment (.env is loaded into it at startup)
	if envName != "" {
		if key := strings.TrimSpace(os.Getenv(envName)); key != "" {
			return key, nil
		}
	}

	return "", fmt.Errorf("API key not found (set it in keychain account %q or $%s): %w", keyringAccount, envName, domain.ErrAuth)
}

func SetAPIKey(keyringAccount string, key string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("API key is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, key)
}

func DeleteAPIKey(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

func KeyringAccount(cfg config.Config) string {
	return fmt.Sprintf("jobscout:api:%s", cfg.Matcher.KeyringAccount)
}
