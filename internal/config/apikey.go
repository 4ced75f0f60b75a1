package config

import (
	stdErrors "errors"
	"log/slog"
	"strings"

	"github.com/lepinkainen/movierating/internal/errors"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the OS keyring service the API key is stored under
	KeyringService = AppName
	// KeyringAccount is the OS keyring account the API key is stored under
	KeyringAccount = "omdb-api-key"
)

// APIKeySource is one step of the API key resolution list
type APIKeySource struct {
	Name   string
	Lookup func() (string, error)
}

// FlagSource returns the value given on the command line
func FlagSource(value string) APIKeySource {
	return APIKeySource{
		Name:   "flag",
		Lookup: func() (string, error) { return value, nil },
	}
}

// EnvSource reads OMDB_API_KEY through viper's env binding
func EnvSource() APIKeySource {
	return APIKeySource{
		Name:   "environment",
		Lookup: func() (string, error) { return viper.GetString("OMDBAPIKey"), nil },
	}
}

// ConfigFileSource reads omdb.api_key from the config file
func ConfigFileSource() APIKeySource {
	return APIKeySource{
		Name:   "config file",
		Lookup: func() (string, error) { return viper.GetString("omdb.api_key"), nil },
	}
}

// KeyringSource reads the key from the OS keyring. A missing entry is not an error.
func KeyringSource() APIKeySource {
	return APIKeySource{
		Name: "keyring",
		Lookup: func() (string, error) {
			key, err := keyring.Get(KeyringService, KeyringAccount)
			if stdErrors.Is(err, keyring.ErrNotFound) {
				return "", nil
			}
			return key, err
		},
	}
}

// DefaultAPIKeySources is the resolution order: flag, environment, config file, keyring
func DefaultAPIKeySources(flagValue string) []APIKeySource {
	return []APIKeySource{
		FlagSource(flagValue),
		EnvSource(),
		ConfigFileSource(),
		KeyringSource(),
	}
}

// ResolveAPIKey returns the first non-empty key from sources and the name of
// the source that supplied it. Sources that fail are skipped.
func ResolveAPIKey(sources []APIKeySource) (string, string, error) {
	for _, source := range sources {
		key, err := source.Lookup()
		if err != nil {
			slog.Debug("API key source unavailable", "source", source.Name, "error", err)
			continue
		}
		if key = strings.TrimSpace(key); key != "" {
			slog.Debug("Using OMDB API key", "source", source.Name)
			return key, source.Name, nil
		}
	}
	return "", "", errors.ErrMissingAPIKey
}
