/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/rowdb/pkg/api"
	"github.com/ssargent/rowdb/pkg/config"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the rowdb REST API server.

Authentication is enabled when an API key is configured, either in the
config file (security.api_key) or with --api-key.

Examples:
  rowdb serve
  rowdb serve --api-key=mysecretkey --port=8080 --data-dir=./db`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		applyServerFlags(cmd, s.cfg)
		return runServer(cmd, s)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addServerFlags(serveCmd)
	serveCmd.Flags().String("api-key", "", "API key for authentication (overrides config)")
}

func addServerFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	cmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
}

// applyServerFlags overrides config values with flags that were set explicitly
func applyServerFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("bind") {
		cfg.Bind, _ = cmd.Flags().GetString("bind")
	}
	if cmd.Flags().Changed("api-key") {
		cfg.Security.APIKey, _ = cmd.Flags().GetString("api-key")
	}
}

// runServer opens the store and serves it until SIGINT or SIGTERM
func runServer(cmd *cobra.Command, s *settings) error {
	if container == nil {
		return errors.New("dependency container not initialized")
	}

	telemetry := api.NewTelemetry()
	recordStore, err := openStore(s, telemetry.Metrics)
	if err != nil {
		return err
	}
	defer recordStore.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if s.cfg.Security.APIKey == "" {
		s.logger.Warn("API key not set, authentication disabled")
	}
	s.logger.Info("serving", "addr", s.cfg.Address(), "data_dir", s.cfg.DataDir)

	starter := container.GetServerFactory().CreateServerStarter()
	return starter.StartServer(ctx, recordStore, api.ServerConfig{
		Bind:        s.cfg.Bind,
		Port:        s.cfg.Port,
		APIKey:      s.cfg.Security.APIKey,
		CORSOrigins: s.cfg.Security.CORSOrigins,
	}, telemetry, s.logger)
}
