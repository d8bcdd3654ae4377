// Package config loads the editdiff configuration.
//
// Values are taken from command line flags, EDITDIFF_* environment variables, a config file and
// defaults, in that order of precedence. The config file is given by --config or, if that's not
// set, editdiff.yaml in the current directory is used if present.
package config

import (
	"errors"
	"fmt"
	"strings"

	"chat.znkr.io/editdiff/markup"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the configuration of the editdiff command.
type Config struct {
	Addr      string `mapstructure:"addr"`       // Address to listen on
	BaseURL   string `mapstructure:"base-url"`   // Base URL for absolute links, derived from addr if empty
	Store     string `mapstructure:"store"`      // Path of the transcript file
	Watch     bool   `mapstructure:"watch"`      // Reload the store when the transcript file changes
	MaxTokens int    `mapstructure:"max-tokens"` // Maximum number of tokens per text
	Markup    string `mapstructure:"markup"`     // Markup used by show
	Formatter string `mapstructure:"formatter"`  // Chroma formatter used by show
	Style     string `mapstructure:"style"`      // Chroma style used by show
}

var defaults = Config{
	Addr:      "localhost:8080",
	Store:     "messages.txt",
	Watch:     true,
	MaxTokens: 2000,
	Markup:    "html",
	Formatter: "terminal256",
	Style:     "github",
}

// AddFlags adds flags for all configuration values to fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default editdiff.yaml, if present)")
	fs.String("addr", defaults.Addr, "address to listen on")
	fs.String("base-url", defaults.BaseURL, "base URL for absolute links")
	fs.String("store", defaults.Store, "transcript file")
	fs.Bool("watch", defaults.Watch, "reload the store when the transcript file changes")
	fs.Int("max-tokens", defaults.MaxTokens, "maximum number of tokens per text")
	fs.String("markup", defaults.Markup, "change markup, one of "+strings.Join(markup.Names(), ", "))
	fs.String("formatter", defaults.Formatter, "chroma formatter for unified output")
	fs.String("style", defaults.Style, "chroma style for unified output")
}

// Load loads the configuration using the flags in fs that were added by [AddFlags].
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault("addr", defaults.Addr)
	v.SetDefault("base-url", defaults.BaseURL)
	v.SetDefault("store", defaults.Store)
	v.SetDefault("watch", defaults.Watch)
	v.SetDefault("max-tokens", defaults.MaxTokens)
	v.SetDefault("markup", defaults.Markup)
	v.SetDefault("formatter", defaults.Formatter)
	v.SetDefault("style", defaults.Style)

	cfgFile, err := fs.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("reading --config: %v", err)
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("editdiff")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %v", err)
		}
	}

	v.SetEnvPrefix("EDITDIFF")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("binding flags: %v", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %v", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.MaxTokens <= 0 {
		return fmt.Errorf("invalid config: max-tokens must be positive, got %d", cfg.MaxTokens)
	}
	if _, err := markup.ByName(cfg.Markup); err != nil {
		return fmt.Errorf("invalid config: %v", err)
	}
	if cfg.Store == "" {
		return fmt.Errorf("invalid config: store must not be empty")
	}
	return nil
}
