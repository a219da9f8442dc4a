package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ssargent/rowdb/pkg/store"
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update <table> <id> [value...]",
	Short: "Replace the values of a record",
	Long: `Replace every value of a record. The table file is rewritten and the
record moves to the end of it.

Example:
  rowdb update users 0 alice 31`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseRecordID(args[1])
		if err != nil {
			return err
		}

		return withStore(cmd, func(s *store.RecordStore) error {
			found, err := s.Update(args[0], args[2:], id)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("record %d not found in table %s", id, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated record %d in table %s\n", id, args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func parseRecordID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid record id %q", raw)
	}
	return id, nil
}
