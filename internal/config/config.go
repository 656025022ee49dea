package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/j0lvera/cbtbot/internal/responder"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration from environment variables.
type Config struct {
	// Empty token disables the Telegram host
	TelegramToken string        `envconfig:"TELEGRAM_API_TOKEN"`
	TypingDelay   time.Duration `envconfig:"TYPING_DELAY" default:"900ms"`

	// Empty address disables the web host
	HTTPAddr       string   `envconfig:"HTTP_ADDR" default:":8080"`
	// Origins allowed to call /api with the session cookie; empty keeps the
	// API same-origin
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`
	CookieSecure   bool     `envconfig:"COOKIE_SECURE" default:"false"`

	SessionIdleTTL         time.Duration `envconfig:"SESSION_IDLE_TTL" default:"1h"`
	SessionCleanupInterval time.Duration `envconfig:"SESSION_CLEANUP_INTERVAL" default:"30m"`

	ServiceName    string `envconfig:"SERVICE_NAME" default:"cbtbot"`
	ServiceVersion string `envconfig:"SERVICE_VERSION" default:"dev"`

	Debug bool `envconfig:"DEBUG" default:"false"`

	// Path to the reply catalogue (.toml, .yaml or .yml)
	ConfigFile string `envconfig:"CONFIG_FILE" default:"config.toml"`

	// Replies loaded from the config file, merged over the defaults
	Replies responder.Replies `ignored:"true"`
}

// FileConfig represents the structure of the config file.
type FileConfig struct {
	Replies responder.Replies `toml:"replies" yaml:"replies"`
}

// LoadEnv loads the configuration from environment variables.
func (c Config) LoadEnv() (Config, error) {
	cfg := c

	if err := envconfig.Process("", &cfg); err != nil {
		return c, err
	}

	return cfg, nil
}

// LoadFile loads replies from the config file.
func (c *Config) LoadFile() error {
	configPath := c.ConfigFile
	if configPath == "" {
		c.Replies = responder.DefaultReplies
		return nil
	}

	if !filepath.IsAbs(configPath) {
		// Try current directory first
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			// Then the executable directory
			execPath, err := os.Executable()
			if err == nil {
				configPath = filepath.Join(filepath.Dir(execPath), c.ConfigFile)
			}
		}
	}

	f, err := os.Open(configPath)
	if os.IsNotExist(err) {
		c.Replies = responder.DefaultReplies
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: open %q: %w", configPath, err)
	}
	defer f.Close()

	fileConfig, err := Decode(f, filepath.Ext(configPath))
	if err != nil {
		return fmt.Errorf("config: parse %q: %w", configPath, err)
	}

	c.Replies = fileConfig.Replies.WithDefaults(responder.DefaultReplies)
	return nil
}

// Decode reads a config file in the format named by ext (".toml", ".yaml" or
// ".yml"). Unknown keys are rejected.
func Decode(r io.Reader, ext string) (FileConfig, error) {
	var fc FileConfig

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
			return FileConfig{}, fmt.Errorf("decode yaml: %w", err)
		}
	case ".toml", "":
		md, err := toml.NewDecoder(r).Decode(&fc)
		if err != nil {
			return FileConfig{}, fmt.Errorf("decode toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return FileConfig{}, fmt.Errorf("decode toml: unknown keys %s", strings.Join(keys, ", "))
		}
	default:
		return FileConfig{}, fmt.Errorf("unsupported config format %q", ext)
	}

	return fc, nil
}

// Validate checks that the configuration can run at least one host and that
// every reply link is usable.
func (c *Config) Validate() error {
	var errs []error

	if c.TelegramToken == "" && c.HTTPAddr == "" {
		errs = append(errs, errors.New("no host enabled: set TELEGRAM_API_TOKEN or HTTP_ADDR"))
	}
	if c.SessionIdleTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_IDLE_TTL must be positive, got %s", c.SessionIdleTTL))
	}
	if c.SessionCleanupInterval <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_CLEANUP_INTERVAL must be positive, got %s", c.SessionCleanupInterval))
	}
	if c.TypingDelay < 0 {
		errs = append(errs, fmt.Errorf("TYPING_DELAY must not be negative, got %s", c.TypingDelay))
	}
	if slices.Contains(c.AllowedOrigins, "*") {
		errs = append(errs, errors.New("ALLOWED_ORIGINS must list explicit origins, \"*\" cannot carry the session cookie"))
	}
	for _, r := range c.Replies.Entries() {
		if r.Reply.Link != nil && r.Reply.Link.URL == "" {
			errs = append(errs, fmt.Errorf("replies.%s.link: url is empty", r.Name))
		}
	}

	return errors.Join(errs...)
}

func NewConfig() (*Config, error) {
	// .env is optional, the variables may already be set
	_ = godotenv.Load()

	var cfg Config
	loadedCfg, err := cfg.LoadEnv()
	if err != nil {
		return nil, err
	}

	// Load replies from the config file
	if err := loadedCfg.LoadFile(); err != nil {
		return nil, err
	}

	if err := loadedCfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &loadedCfg, nil
}

func provideReplies(c *Config) responder.Replies {
	return c.Replies
}

func Module() fx.Option {
	return fx.Module(
		"config",
		fx.Provide(
			NewConfig,
			provideReplies,
		),
	)
}
