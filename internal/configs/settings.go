package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PolarWolf314/tarvault/internal/utils"
)

// Encryption backends accepted by the backend setting.
const (
	BackendAuto   = "auto"
	BackendGPG    = "gpg"
	BackendNative = "native"
)

// Environment variable names.
const (
	EnvVaultDir   = "TARVAULT_DIR"
	EnvClearCache = "TARVAULT_CLEAR_CACHE"
	EnvBackend    = "TARVAULT_BACKEND"
	EnvHistory    = "TARVAULT_HISTORY"
)

// Settings is the resolved runtime configuration.
type Settings struct {
	// VaultDir holds one encrypted file per stored item.
	VaultDir string

	// ClearCache invalidates the encryption layer's passphrase cache after
	// every encrypt and decrypt.
	ClearCache bool

	// Backend selects the encryption implementation.
	Backend string

	// History enables the operation history log.
	History bool

	// HistoryPath is where history entries are appended.
	HistoryPath string
}

// fileConfig mirrors config.toml. Pointer fields distinguish "unset" from false.
type fileConfig struct {
	VaultDir   string `toml:"vault_dir"`
	ClearCache *bool  `toml:"clear_cache"`
	Backend    string `toml:"backend"`
	History    *bool  `toml:"history"`
}

// Defaults returns the built-in settings for the current user.
func Defaults() (Settings, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Settings{}, fmt.Errorf("error getting home directory: %w", err)
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return Settings{
		VaultDir:    filepath.Join(homeDir, ".tarvault"),
		ClearCache:  true,
		Backend:     BackendAuto,
		History:     true,
		HistoryPath: filepath.Join(dataDir, "tarvault", "history.jsonl"),
	}, nil
}

// DefaultConfigPath returns the location of the user config file.
func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("error getting config directory: %w", err)
	}
	return filepath.Join(configDir, "tarvault", "config.toml"), nil
}

// Load resolves settings from the default config file and the environment.
func Load() (Settings, error) {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return Settings{}, err
	}
	return LoadFrom(configPath)
}

// LoadFrom resolves settings using configPath as the config file. An empty
// path or a missing file skips the file layer.
func LoadFrom(configPath string) (Settings, error) {
	settings, err := Defaults()
	if err != nil {
		return Settings{}, err
	}

	if configPath != "" {
		exists, err := utils.PathExists(configPath)
		if err != nil {
			return Settings{}, fmt.Errorf("failed to check config %s: %w", configPath, err)
		}
		if exists {
			var fc fileConfig
			if err := LoadTOML(configPath, &fc); err != nil {
				return Settings{}, fmt.Errorf("failed to load config: %w", err)
			}
			settings.applyFile(fc)
		}
	}

	if err := settings.applyEnv(); err != nil {
		return Settings{}, err
	}

	settings.VaultDir, err = expandHome(settings.VaultDir)
	if err != nil {
		return Settings{}, err
	}

	if err := validateBackend(settings.Backend); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

func (s *Settings) applyFile(fc fileConfig) {
	if fc.VaultDir != "" {
		s.VaultDir = fc.VaultDir
	}
	if fc.ClearCache != nil {
		s.ClearCache = *fc.ClearCache
	}
	if fc.Backend != "" {
		s.Backend = strings.ToLower(fc.Backend)
	}
	if fc.History != nil {
		s.History = *fc.History
	}
}

func (s *Settings) applyEnv() error {
	if v, ok := os.LookupEnv(EnvVaultDir); ok && v != "" {
		s.VaultDir = v
	}
	if v, ok := os.LookupEnv(EnvClearCache); ok && v != "" {
		b, err := ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvClearCache, err)
		}
		s.ClearCache = b
	}
	if v, ok := os.LookupEnv(EnvBackend); ok && v != "" {
		s.Backend = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv(EnvHistory); ok && v != "" {
		b, err := ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHistory, err)
		}
		s.History = b
	}
	return nil
}

// ParseBool accepts the strconv.ParseBool forms plus yes/no and on/off.
func ParseBool(v string) (bool, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}
	return strconv.ParseBool(v)
}

func validateBackend(backend string) error {
	switch backend {
	case BackendAuto, BackendGPG, BackendNative:
		return nil
	}
	return fmt.Errorf("unknown backend %q (valid: %s, %s, %s)", backend, BackendAuto, BackendGPG, BackendNative)
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}
