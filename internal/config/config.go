package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"codeaxe/internal/paths"
)

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = 1

// Config represents the complete codeaxe configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Provider   ProviderConfig   `json:"provider" mapstructure:"provider"`
	Analysis   AnalysisConfig   `json:"analysis" mapstructure:"analysis"`
	Relocation RelocationConfig `json:"relocation" mapstructure:"relocation"`
	History    HistoryConfig    `json:"history" mapstructure:"history"`
	Logging    LoggingConfig    `json:"logging" mapstructure:"logging"`
}

// ProviderConfig selects and configures the symbol provider
type ProviderConfig struct {
	// Default is one of auto, treesitter, lsp, scip, file
	Default    string           `json:"default" mapstructure:"default"`
	Lsp        LspConfig        `json:"lsp" mapstructure:"lsp"`
	Scip       ScipConfig       `json:"scip" mapstructure:"scip"`
	TreeSitter TreeSitterConfig `json:"treesitter" mapstructure:"treesitter"`
}

// LspConfig contains language server settings
type LspConfig struct {
	Servers   map[string]LspServerConfig `json:"servers" mapstructure:"servers"`
	TimeoutMs int                        `json:"timeoutMs" mapstructure:"timeoutMs"`
}

// LspServerConfig contains configuration for a specific LSP server
type LspServerConfig struct {
	Command string   `json:"command" mapstructure:"command"`
	Args    []string `json:"args" mapstructure:"args"`
}

// ScipConfig contains SCIP index settings
type ScipConfig struct {
	IndexPath string `json:"indexPath" mapstructure:"indexPath"`
}

// TreeSitterConfig contains tree-sitter provider settings
type TreeSitterConfig struct {
	// SentinelConstructors reports C# constructors under the sentinel name
	SentinelConstructors bool `json:"sentinelConstructors" mapstructure:"sentinelConstructors"`
}

// AnalysisConfig controls which methods take part in dependency sorting
type AnalysisConfig struct {
	// Scope is "siblings" or "document"
	Scope                      string `json:"scope" mapstructure:"scope"`
	ExcludeConstructorSentinel bool   `json:"excludeConstructorSentinel" mapstructure:"excludeConstructorSentinel"`
	// ConstructorSentinel overrides the language profile's sentinel when set
	ConstructorSentinel        string `json:"constructorSentinel" mapstructure:"constructorSentinel"`
	ProfilesPath               string `json:"profilesPath" mapstructure:"profilesPath"`
}

// RelocationConfig contains post-relocation settings
type RelocationConfig struct {
	Format bool `json:"format" mapstructure:"format"`
}

// HistoryConfig contains edit history settings
type HistoryConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Path     string `json:"path" mapstructure:"path"`
	Compress bool   `json:"compress" mapstructure:"compress"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `json:"level" mapstructure:"level"`
	// File enables a log file; relative paths are resolved against the workspace root
	File string `json:"file" mapstructure:"file"`
	// MaxSize rotates File once it grows past this size ("10MB"); empty disables rotation
	MaxSize    string `json:"maxSize" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups"`
}

// Provider names
const (
	ProviderAuto       = "auto"
	ProviderTreeSitter = "treesitter"
	ProviderLsp        = "lsp"
	ProviderScip       = "scip"
	ProviderFile       = "file"
)

// Scope names
const (
	ScopeSiblings = "siblings"
	ScopeDocument = "document"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Provider: ProviderConfig{
			Default: ProviderTreeSitter,
			Lsp: LspConfig{
				Servers: map[string]LspServerConfig{
					"go": {
						Command: "gopls",
						Args:    []string{},
					},
					"typescript": {
						Command: "typescript-language-server",
						Args:    []string{"--stdio"},
					},
					"javascript": {
						Command: "typescript-language-server",
						Args:    []string{"--stdio"},
					},
					"python": {
						Command: "pylsp",
						Args:    []string{},
					},
				},
				TimeoutMs: 30000,
			},
			Scip: ScipConfig{
				IndexPath: "index.scip",
			},
		},
		Analysis: AnalysisConfig{
			Scope:                      ScopeSiblings,
			ExcludeConstructorSentinel: true,
		},
		Relocation: RelocationConfig{
			Format: true,
		},
		History: HistoryConfig{
			Enabled:  true,
			Path:     filepath.Join(paths.DirName, "history.db"),
			Compress: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSize:    "5MB",
			MaxBackups: 2,
		},
	}
}

// LoadConfig loads configuration from .codeaxe/config.json under root.
// Missing files yield the defaults; keys absent from the file keep their
// default values. Environment variables prefixed CODEAXE_ override scalar
// keys (CODEAXE_PROVIDER_DEFAULT=lsp).
func LoadConfig(root string) (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(paths.StateDir(root))
	return load(v)
}

// LoadConfigFile loads configuration from an explicit file path.
func LoadConfigFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	return load(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("provider.default", def.Provider.Default)
	v.SetDefault("provider.lsp.timeoutMs", def.Provider.Lsp.TimeoutMs)
	v.SetDefault("provider.scip.indexPath", def.Provider.Scip.IndexPath)
	v.SetDefault("provider.treesitter.sentinelConstructors", def.Provider.TreeSitter.SentinelConstructors)
	v.SetDefault("analysis.scope", def.Analysis.Scope)
	v.SetDefault("analysis.excludeConstructorSentinel", def.Analysis.ExcludeConstructorSentinel)
	v.SetDefault("analysis.constructorSentinel", def.Analysis.ConstructorSentinel)
	v.SetDefault("analysis.profilesPath", def.Analysis.ProfilesPath)
	v.SetDefault("relocation.format", def.Relocation.Format)
	v.SetDefault("history.enabled", def.History.Enabled)
	v.SetDefault("history.path", def.History.Path)
	v.SetDefault("history.compress", def.History.Compress)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("logging.maxSize", def.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", def.Logging.MaxBackups)

	v.SetEnvPrefix("CODEAXE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to .codeaxe/config.json
func (c *Config) Save(root string) error {
	configPath := paths.ConfigPath(root)
	if err := paths.EnsureDir(filepath.Dir(configPath)); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}

	switch c.Provider.Default {
	case ProviderAuto, ProviderTreeSitter, ProviderLsp, ProviderScip, ProviderFile:
	default:
		return &ConfigError{Field: "provider.default", Message: "unknown provider " + c.Provider.Default}
	}

	switch c.Analysis.Scope {
	case ScopeSiblings, ScopeDocument:
	default:
		return &ConfigError{Field: "analysis.scope", Message: "must be siblings or document"}
	}

	if c.Provider.Lsp.TimeoutMs <= 0 {
		return &ConfigError{Field: "provider.lsp.timeoutMs", Message: "must be positive"}
	}

	for lang, server := range c.Provider.Lsp.Servers {
		if server.Command == "" {
			return &ConfigError{Field: "provider.lsp.servers." + lang, Message: "command is required"}
		}
	}

	if c.Logging.MaxBackups < 0 {
		return &ConfigError{Field: "logging.maxBackups", Message: "must not be negative"}
	}

	if c.History.Enabled && c.History.Path == "" {
		return &ConfigError{Field: "history.path", Message: "required when history is enabled"}
	}

	return nil
}

// ResolvePath resolves p against root unless it is absolute.
func ResolvePath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
