// =============================================================================
// Payments Portal - Configuration Module
// =============================================================================
//
// This module is responsible for loading and validating the application
// configuration.
//
// CONFIGURATION SOURCES (later wins):
//   1. Built-in defaults (Default)
//   2. The YAML config file (config.yaml, or --config)
//   3. Environment variables: PORTAL_<SECTION>_<KEY>,
//      e.g. PORTAL_STORAGE_DRIVER=redis, PORTAL_SERVER_ADDR=:9090
//
// ARCHITECTURE:
//   - viper reads the file and the environment
//   - yaml.v3 writes the default file for `portal config init`
//   - Every loaded configuration is validated before use
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"

	DeliveryLocal = "local"
	DeliveryS3    = "s3"

	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// KnownProviders is the fixed set of provider identifiers, in display order.
var KnownProviders = []string{"paypal", "venmo", "square", "cashapp"}

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the whole application configuration.
type Config struct {
	Server    ServerConfig     `yaml:"server" mapstructure:"server"`
	Storage   StorageConfig    `yaml:"storage" mapstructure:"storage"`
	Export    ExportConfig     `yaml:"export" mapstructure:"export"`
	Form      FormConfig       `yaml:"form" mapstructure:"form"`
	Providers []ProviderConfig `yaml:"providers" mapstructure:"providers"`
	UI        UIConfig         `yaml:"ui" mapstructure:"ui"`
	Log       LogConfig        `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures `portal serve`.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: ":8080"
	Addr string `yaml:"addr" mapstructure:"addr"`

	// Mode is the gin mode: "debug", "release" or "test".
	// Default: "release"
	Mode string `yaml:"mode" mapstructure:"mode"`

	// SiteDir is the generated static site served for non-API paths.
	// Leave empty to serve the API only.
	// Default: "./_site"
	SiteDir string `yaml:"site_dir" mapstructure:"site_dir"`

	// SessionCookie names the cookie that identifies a browser session.
	// Default: "portal_session"
	SessionCookie string `yaml:"session_cookie" mapstructure:"session_cookie"`

	// SessionTTL is how long an idle session is kept in memory.
	// Default: 30m
	SessionTTL time.Duration `yaml:"session_ttl" mapstructure:"session_ttl"`

	// SecureCookies marks the session cookie Secure (HTTPS only).
	SecureCookies bool `yaml:"secure_cookies" mapstructure:"secure_cookies"`
}

// StorageConfig selects the session storage backend.
type StorageConfig struct {
	// Driver is "memory" or "redis".
	// Default: "memory"
	Driver string `yaml:"driver" mapstructure:"driver"`

	// RedisURL is either "redis://..." or "host:port".
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`

	// KeyPrefix namespaces every key written by this application.
	// Default: "portal"
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix"`

	// TTL expires stored session values; matches the session lifetime.
	// Default: 30m
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ExportConfig controls export documents and where the CLI delivers them.
type ExportConfig struct {
	// Format is "csv" or "xlsx".
	// Default: "csv"
	Format string `yaml:"format" mapstructure:"format"`

	// Delivery is "local" or "s3".
	// Default: "local"
	Delivery string `yaml:"delivery" mapstructure:"delivery"`

	// Dir is the local export directory.
	// Default: "./exports"
	Dir string `yaml:"dir" mapstructure:"dir"`

	// DateSubdirs writes local exports under Dir/YYYY/MM/DD.
	DateSubdirs bool `yaml:"date_subdirs" mapstructure:"date_subdirs"`

	// S3 settings, used when Delivery is "s3".
	S3Region        string `yaml:"s3_region" mapstructure:"s3_region"`
	S3Bucket        string `yaml:"s3_bucket" mapstructure:"s3_bucket"`
	S3Prefix        string `yaml:"s3_prefix" mapstructure:"s3_prefix"`
	S3PublicBaseURL string `yaml:"s3_public_base_url" mapstructure:"s3_public_base_url"`

	// RetainFor is the age after which `portal exports prune` removes files.
	// Default: 720h (30 days)
	RetainFor time.Duration `yaml:"retain_for" mapstructure:"retain_for"`
}

// FormConfig holds the payment form rules that vary by office.
type FormConfig struct {
	// MatterTypes lists the selectable matter types.
	MatterTypes []string `yaml:"matter_types" mapstructure:"matter_types"`

	// MinAmountCents is the smallest acceptable payment.
	// Default: 100
	MinAmountCents int64 `yaml:"min_amount_cents" mapstructure:"min_amount_cents"`
}

// ProviderConfig configures one payment provider.
type ProviderConfig struct {
	// ID must be one of KnownProviders.
	ID string `yaml:"id" mapstructure:"id"`

	// Enabled providers can be selected.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// DisplayName overrides the capitalized id in the confirmation view.
	DisplayName string `yaml:"display_name,omitempty" mapstructure:"display_name"`

	// Account is the merchant id, handle, location id or cashtag.
	// Only shown to staff; no provider is contacted.
	Account string `yaml:"account,omitempty" mapstructure:"account"`
}

// UIConfig holds display-only timings.
type UIConfig struct {
	// SuccessBannerTimeout hides the contact success banner.
	// Default: 5s
	SuccessBannerTimeout time.Duration `yaml:"success_banner_timeout" mapstructure:"success_banner_timeout"`
}

// LogConfig configures log/slog.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error".
	// Default: "info"
	Level string `yaml:"level" mapstructure:"level"`

	// Format is "text" or "json".
	// Default: "text"
	Format string `yaml:"format" mapstructure:"format"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          ":8080",
			Mode:          "release",
			SiteDir:       "./_site",
			SessionCookie: "portal_session",
			SessionTTL:    30 * time.Minute,
		},
		Storage: StorageConfig{
			Driver:    StorageMemory,
			KeyPrefix: "portal",
			TTL:       30 * time.Minute,
		},
		Export: ExportConfig{
			Format:    FormatCSV,
			Delivery:  DeliveryLocal,
			Dir:       "./exports",
			S3Prefix:  "payments",
			RetainFor: 30 * 24 * time.Hour,
		},
		Form: FormConfig{
			MatterTypes: []string{
				"Criminal Defense",
				"Family Law",
				"Estate Planning",
				"Litigation",
				"Personal Injury",
				"Real Estate",
				"Business Law",
				"Other",
			},
			MinAmountCents: 100,
		},
		Providers: []ProviderConfig{
			{ID: "paypal", Enabled: true, DisplayName: "PayPal", Account: "YOUR_PAYPAL_ID"},
			{ID: "venmo", Enabled: true, Account: "YOUR_VENMO_HANDLE"},
			{ID: "square", Enabled: true, Account: "YOUR_SQUARE_LOC"},
			{ID: "cashapp", Enabled: true, DisplayName: "Cash App", Account: "$YourCashtag"},
		},
		UI: UIConfig{
			SuccessBannerTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// applyDefaults fills anything a config file left empty.
func applyDefaults(cfg *Config) {
	def := Default()

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = def.Server.Mode
	}
	if cfg.Server.SessionCookie == "" {
		cfg.Server.SessionCookie = def.Server.SessionCookie
	}
	if cfg.Server.SessionTTL <= 0 {
		cfg.Server.SessionTTL = def.Server.SessionTTL
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = def.Storage.Driver
	}
	if cfg.Storage.KeyPrefix == "" {
		cfg.Storage.KeyPrefix = def.Storage.KeyPrefix
	}
	if cfg.Export.Format == "" {
		cfg.Export.Format = def.Export.Format
	}
	if cfg.Export.Delivery == "" {
		cfg.Export.Delivery = def.Export.Delivery
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = def.Export.Dir
	}
	if cfg.Export.RetainFor <= 0 {
		cfg.Export.RetainFor = def.Export.RetainFor
	}
	if cfg.Form.MinAmountCents <= 0 {
		cfg.Form.MinAmountCents = def.Form.MinAmountCents
	}
	if len(cfg.Providers) == 0 {
		cfg.Providers = def.Providers
	}
	if cfg.UI.SuccessBannerTimeout <= 0 {
		cfg.UI.SuccessBannerTimeout = def.UI.SuccessBannerTimeout
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for values the application cannot use.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case StorageMemory:
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			errs = append(errs, fmt.Errorf("storage.redis_url is required when storage.driver is %q", StorageRedis))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be %q or %q, got %q", StorageMemory, StorageRedis, c.Storage.Driver))
	}

	switch c.Export.Format {
	case FormatCSV, FormatXLSX:
	default:
		errs = append(errs, fmt.Errorf("export.format must be %q or %q, got %q", FormatCSV, FormatXLSX, c.Export.Format))
	}

	switch c.Export.Delivery {
	case DeliveryLocal:
	case DeliveryS3:
		if c.Export.S3Region == "" || c.Export.S3Bucket == "" {
			errs = append(errs, errors.New("export.s3_region and export.s3_bucket are required for s3 delivery"))
		}
	default:
		errs = append(errs, fmt.Errorf("export.delivery must be %q or %q, got %q", DeliveryLocal, DeliveryS3, c.Export.Delivery))
	}

	seen := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if !IsKnownProvider(p.ID) {
			errs = append(errs, fmt.Errorf("providers: unknown provider id %q (known: %s)", p.ID, strings.Join(KnownProviders, ", ")))
			continue
		}
		if seen[p.ID] {
			errs = append(errs, fmt.Errorf("providers: duplicate provider id %q", p.ID))
		}
		seen[p.ID] = true
	}

	return errors.Join(errs...)
}

// IsKnownProvider reports whether id is in the fixed provider set.
func IsKnownProvider(id string) bool {
	for _, known := range KnownProviders {
		if id == known {
			return true
		}
	}
	return false
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration.
//
// PARAMETERS:
//   - configPath: Path to the YAML config file. A missing file is not an
//     error; defaults and environment variables still apply.
//
// RETURNS:
//   - The validated configuration.
//   - An error if the file cannot be parsed or the result is invalid.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Seed every scalar key so AutomaticEnv can override it.
	setDefaults(v, Default())

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, def *Config) {
	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.mode", def.Server.Mode)
	v.SetDefault("server.site_dir", def.Server.SiteDir)
	v.SetDefault("server.session_cookie", def.Server.SessionCookie)
	v.SetDefault("server.session_ttl", def.Server.SessionTTL)
	v.SetDefault("server.secure_cookies", def.Server.SecureCookies)

	v.SetDefault("storage.driver", def.Storage.Driver)
	v.SetDefault("storage.redis_url", def.Storage.RedisURL)
	v.SetDefault("storage.key_prefix", def.Storage.KeyPrefix)
	v.SetDefault("storage.ttl", def.Storage.TTL)

	v.SetDefault("export.format", def.Export.Format)
	v.SetDefault("export.delivery", def.Export.Delivery)
	v.SetDefault("export.dir", def.Export.Dir)
	v.SetDefault("export.date_subdirs", def.Export.DateSubdirs)
	v.SetDefault("export.s3_region", def.Export.S3Region)
	v.SetDefault("export.s3_bucket", def.Export.S3Bucket)
	v.SetDefault("export.s3_prefix", def.Export.S3Prefix)
	v.SetDefault("export.s3_public_base_url", def.Export.S3PublicBaseURL)
	v.SetDefault("export.retain_for", def.Export.RetainFor)

	v.SetDefault("form.matter_types", def.Form.MatterTypes)
	v.SetDefault("form.min_amount_cents", def.Form.MinAmountCents)

	v.SetDefault("ui.success_banner_timeout", def.UI.SuccessBannerTimeout)

	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
}

// WriteDefault writes the default configuration as YAML to path.
// An existing file is never overwritten.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}

	header := []byte("# Payments portal configuration.\n# Any key can be overridden with PORTAL_<SECTION>_<KEY>.\n")
	if err := os.WriteFile(path, append(header, data...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
