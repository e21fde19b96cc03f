// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the estate-search CLI. It drives the
// listing page coordination layer from a terminal: search with filters,
// type-ahead suggestions, shareable links and a local fixture backend.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/estate-search/internal/listing"
	"github.com/pdiddy/estate-search/internal/logging"
	"github.com/pdiddy/estate-search/internal/secrets"
	"github.com/pdiddy/estate-search/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds tokens loaded from .secrets/ at startup.
	loadedSecrets map[string]string

	logger = zap.NewNop()
)

// rootCmd is the base command for the estate-search CLI.
var rootCmd = &cobra.Command{
	Use:   "estate-search",
	Short: "Property discovery from the terminal",
	Long: `estate-search drives a property listing backend the way the listing page
does: filters are staged and applied in one step, every applied change
produces exactly one fetch, pagination stays inside the result set, and
every search has a canonical shareable link.

Use fixture serve to run a local backend from a YAML data set.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		l, err := logging.New(cfg.Logging, os.Stderr)
		if err != nil {
			return err
		}
		logger = l

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Info("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./estate-search.yaml or ~/.config/estate-search/config.yaml)")
	pf.String("base-url", "", "listing API root (default "+types.DefaultBaseURL+")")
	pf.String("token", "", "listing API bearer token (default: .secrets/"+secrets.ListingTokenKey+")")
	pf.String("log-level", "", "log level: debug, info, warn, error (default warn)")
	pf.String("log-format", "", "log format: console or json (default console)")

	_ = viper.BindPFlag("listing.base_url", pf.Lookup("base-url"))
	_ = viper.BindPFlag("listing.token", pf.Lookup("token"))
	_ = viper.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", pf.Lookup("log-format"))
}

func initConfig() {
	// A missing .env file is ignored.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "Warning: reading .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("estate-search")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "estate-search"))
		}
	}

	viper.SetEnvPrefix("ESTATE_SEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the typed configuration from viper (flags, env,
// config file) and fills defaults.
func loadConfig() types.Config {
	cfg := types.Config{
		Listing: types.ListingConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:    viper.GetDuration("listing.timeout"),
				UserAgent:  viper.GetString("listing.user_agent"),
				MaxRetries: viper.GetInt("listing.max_retries"),
			},
			BaseURL:  viper.GetString("listing.base_url"),
			PageSize: viper.GetInt("listing.page_size"),
		},
		Typeahead: types.TypeaheadConfig{
			Debounce:  viper.GetDuration("typeahead.debounce"),
			MinLength: viper.GetInt("typeahead.min_length"),
		},
		Cache: types.CacheConfig{
			Backend:       types.CacheBackend(viper.GetString("cache.backend")),
			TTL:           viper.GetDuration("cache.ttl"),
			RedisAddr:     viper.GetString("cache.redis_addr"),
			RedisPassword: viper.GetString("cache.redis_password"),
			RedisDB:       viper.GetInt("cache.redis_db"),
		},
		Fixture: types.FixtureConfig{
			Addr:           viper.GetString("fixture.addr"),
			DataFile:       viper.GetString("fixture.data_file"),
			AllowedOrigins: viper.GetStringSlice("fixture.allowed_origins"),
		},
		Logging: types.LoggingConfig{
			Level:  viper.GetString("logging.level"),
			Format: viper.GetString("logging.format"),
		},
	}
	if cfg.Cache.RedisPassword == "" {
		cfg.Cache.RedisPassword = loadedSecrets[secrets.RedisPasswordKey]
	}
	cfg.ApplyDefaults()
	return cfg
}

// newListingClient builds the API client with the configured token.
func newListingClient(cfg types.Config) *listing.Client {
	creds := secrets.FromSecrets(loadedSecrets, viper.GetString("listing.token"))
	if sub := creds.Subject(); sub != "" {
		logger.Debug("using listing token", zap.String("subject", sub))
	}
	return listing.NewClient(cfg.Listing, creds, logger.Named("listing"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
