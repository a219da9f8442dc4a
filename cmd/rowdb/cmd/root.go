/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/rowdb/pkg/config"
	"github.com/ssargent/rowdb/pkg/di"
	"github.com/ssargent/rowdb/pkg/logging"
	"github.com/ssargent/rowdb/pkg/store"
)

var container *di.Container

// SetContainer injects the dependency container
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rowdb",
	Short: "rowdb - flat-file record store",
	Long: `rowdb stores records as ';'-delimited lines, one <table>.csv file per
table, addressed by an auto-incrementing id per table.

Examples:
  rowdb insert users alice 30
  rowdb select users 0
  rowdb serve --port 8080`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", `Data directory for table files (default "db")`)
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ~/.config/rowdb/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

// settings is the resolved configuration for one command run
type settings struct {
	cfg          *config.Config
	configPath   string
	configExists bool
	logger       *slog.Logger
}

// loadSettings resolves defaults, then the config file when present, then
// command line flags
func loadSettings(cmd *cobra.Command) (*settings, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	s := &settings{cfg: config.DefaultConfig(), configPath: configPath}
	if config.ConfigExists(configPath) {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		s.cfg = cfg
		s.configExists = true
	}

	if cmd.Flags().Changed("data-dir") {
		s.cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
	}
	if cmd.Flags().Changed("log-level") {
		s.cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:   s.cfg.Logging.Level,
		NoColor: s.cfg.Logging.NoColor,
	})
	if err != nil {
		return nil, err
	}
	s.logger = logger
	return s, nil
}

// openStore opens the record store in the configured data directory
func openStore(s *settings, observer store.OperationObserver) (*store.RecordStore, error) {
	if container == nil {
		return nil, errors.New("dependency container not initialized")
	}

	recordStore, recovery, err := container.GetStoreFactory().OpenStore(store.RecordStoreConfig{
		DataDir:  s.cfg.DataDir,
		Logger:   s.logger,
		Observer: observer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if recovery.DirectoryCreated {
		s.logger.Info("created data directory", "dir", s.cfg.DataDir)
	}
	return recordStore, nil
}

// withStore runs fn against a freshly opened store and closes it afterwards
func withStore(cmd *cobra.Command, fn func(*store.RecordStore) error) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	recordStore, err := openStore(s, nil)
	if err != nil {
		return err
	}
	defer recordStore.Close()

	return fn(recordStore)
}
