// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/estate-search/internal/fixture"
)

var fixtureCmd = &cobra.Command{
	Use:   "fixture",
	Short: "Run a local listing backend for development",
	Long: `Fixture manages a local stand-in for the listing API. It serves the same
REST contract from listings loaded out of a YAML file into an in-memory
SQLite database. Nothing is persisted.`,
}

var fixtureServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve listings from a YAML data file",
	RunE:  runFixtureServe,
}

func init() {
	fixtureServeCmd.Flags().String("addr", "", "listen address (default :5000)")
	fixtureServeCmd.Flags().String("data", "", "YAML file of listings")
	fixtureServeCmd.Flags().StringSlice("allow-origin", nil, "CORS origin to allow (repeatable, default any)")

	fixtureCmd.AddCommand(fixtureServeCmd)
	rootCmd.AddCommand(fixtureCmd)
}

func runFixtureServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig().Fixture
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.Addr = v
	}
	if v, _ := cmd.Flags().GetString("data"); v != "" {
		cfg.DataFile = v
	}
	if v, _ := cmd.Flags().GetStringSlice("allow-origin"); len(v) > 0 {
		cfg.AllowedOrigins = v
	}
	if cfg.DataFile == "" {
		return fmt.Errorf("provide a data file with --data or fixture.data_file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := fixture.Open(ctx, cfg.DataFile)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Loaded %d listings from %s\n", n, cfg.DataFile)
	fmt.Fprintf(os.Stderr, "Serving the listing API under /api on %s\n", cfg.Addr)

	gin.SetMode(gin.ReleaseMode)
	router := fixture.NewRouter(store, cfg, logger.Named("fixture"))
	if err := fixture.Serve(ctx, cfg.Addr, router, logger.Named("fixture")); err != nil {
		logger.Error("fixture backend stopped", zap.Error(err))
		return err
	}
	return nil
}
