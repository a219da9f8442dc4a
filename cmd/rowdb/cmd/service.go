/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// serviceCmd represents the service command
var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Run rowdb as a systemd service",
	Long: `Helpers for running rowdb under systemd. Logs drop their timestamps when
journald is detected.`,
}

// serviceUnitCmd represents the service unit command
var serviceUnitCmd = &cobra.Command{
	Use:   "unit",
	Short: "Render a systemd unit file",
	Long: `Render a systemd unit that runs "rowdb up" with the resolved config file
and data directory.

Examples:
  rowdb service unit
  sudo rowdb service unit --user rowdb --output /etc/systemd/system/rowdb.service`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		binary, _ := cmd.Flags().GetString("binary")
		output, _ := cmd.Flags().GetString("output")

		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		unit := renderSystemdUnit(binary, user, s.configPath, s.cfg.DataDir)
		if output == "" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), unit)
			return err
		}
		if err := os.WriteFile(output, []byte(unit), 0600); err != nil {
			return fmt.Errorf("failed to write unit file: %w", err)
		}
		cmd.Printf("✅ Wrote %s\n", output)
		cmd.Printf("Enable it with: systemctl daemon-reload && systemctl enable --now %s\n", filepath.Base(output))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serviceCmd)
	serviceCmd.AddCommand(serviceUnitCmd)

	serviceUnitCmd.Flags().String("user", "rowdb", "User to run the service as")
	serviceUnitCmd.Flags().String("binary", "/usr/local/bin/rowdb", "Path to the rowdb binary")
	serviceUnitCmd.Flags().StringP("output", "o", "", "Write the unit to this path instead of stdout")
}

// renderSystemdUnit returns the unit file contents
func renderSystemdUnit(binary, user, configPath, dataDir string) string {
	absData, err := filepath.Abs(dataDir)
	if err != nil {
		absData = dataDir
	}
	return fmt.Sprintf(`[Unit]
Description=rowdb Server
After=network-online.target
Wants=network-online.target

[Service]
User=%s
Group=%s
ExecStart=%s up --config %s --data-dir %s
Restart=on-failure
NoNewPrivileges=true
UMask=0077
ReadWritePaths=%s
ReadWritePaths=%s

[Install]
WantedBy=multi-user.target
`, user, user, binary, configPath, absData, absData, filepath.Dir(configPath))
}
