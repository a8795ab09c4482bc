package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// StorageConfig locates the local database holding the collections.
type StorageConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	// Level is a logrus level name (e.g. "debug", "info", "warn").
	Level string `mapstructure:"level" yaml:"level"`

	// Format is "text" or "json".
	Format string `mapstructure:"format" yaml:"format"`
}

// ImportConfig holds header aliases used to suggest column mappings.
// Keys are field names (e.g. "order_number"); values are lower-case
// fragments matched against spreadsheet headers with spaces removed.
type ImportConfig struct {
	OrderAliases    map[string][]string `mapstructure:"order_aliases" yaml:"order_aliases"`
	IncidentAliases map[string][]string `mapstructure:"incident_aliases" yaml:"incident_aliases"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Import  ImportConfig  `mapstructure:"import" yaml:"import"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/order-incidents/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "order-incidents", "config.yaml")
}

// DefaultStoragePath returns the default database location,
// ~/.local/share/order-incidents/incidents.db.
func DefaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "incidents.db")
	}
	return filepath.Join(home, ".local", "share", "order-incidents", "incidents.db")
}

// defaultIncidentAliases mirrors the header names seen in issue report exports.
func defaultIncidentAliases() map[string][]string {
	return map[string][]string{
		"order_number":       {"order", "pedido", "numpedido"},
		"issue_type_product": {"issue", "incidencia", "tipo", "type", "producto"},
	}
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Storage: StorageConfig{Path: DefaultStoragePath()},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Import: ImportConfig{
			OrderAliases:    map[string][]string{},
			IncidentAliases: defaultIncidentAliases(),
		},
		Display: DisplayConfig{Theme: "default"},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("storage.path", DefaultStoragePath())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("display.theme", "default")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath()
	}
	if len(cfg.Import.IncidentAliases) == 0 {
		cfg.Import.IncidentAliases = defaultIncidentAliases()
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("log", cfg.Log)
	v.Set("import", cfg.Import)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
