/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/rowdb/pkg/config"
)

// upCmd represents the up command
var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Bootstrap and start the rowdb server",
	Long: `Bootstrap rowdb by creating a configuration file with a generated API key
if none exists, then start the REST API server. This is the recommended way
to get rowdb running.

Examples:
  rowdb up
  rowdb up --data-dir ./mydata --port 9000
  rowdb up --config ./custom-config.yaml --print-keys`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printKeys, _ := cmd.Flags().GetBool("print-keys")

		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		if s.configExists {
			cmd.Printf("✅ Loaded existing configuration from %s\n", s.configPath)
		} else {
			cmd.Printf("🔧 First run detected. Bootstrapping rowdb...\n")

			bootstrapped, err := config.BootstrapConfig(s.configPath, s.cfg.DataDir)
			if err != nil {
				return fmt.Errorf("failed to bootstrap config: %w", err)
			}
			s.cfg.Security.APIKey = bootstrapped.Security.APIKey

			cmd.Printf("✅ Configuration created at %s\n", s.configPath)
			if printKeys {
				cmd.Printf("\n🔑 API Key: %s\n", bootstrapped.Security.APIKey)
				cmd.Printf("⚠️  Store this key securely! It is also saved in %s\n", s.configPath)
			}
		}

		applyServerFlags(cmd, s.cfg)

		cmd.Printf("🚀 Starting rowdb server on %s\n", s.cfg.Address())
		cmd.Printf("📁 Data directory: %s\n", s.cfg.DataDir)
		return runServer(cmd, s)
	},
}

func init() {
	rootCmd.AddCommand(upCmd)
	addServerFlags(upCmd)
	upCmd.Flags().Bool("print-keys", false, "Print the generated API key to console")
}
