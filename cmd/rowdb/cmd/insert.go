package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/rowdb/pkg/store"
)

// insertCmd represents the insert command
var insertCmd = &cobra.Command{
	Use:   "insert <table> [value...]",
	Short: "Insert a record",
	Long: `Append a record to a table and print its id. The table file is created
on first insert.

Example:
  rowdb insert users alice 30`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.RecordStore) error {
			id, err := s.Insert(args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(insertCmd)
}
