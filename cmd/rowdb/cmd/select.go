package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/rowdb/pkg/codec"
	"github.com/ssargent/rowdb/pkg/store"
)

// selectCmd represents the select command
var selectCmd = &cobra.Command{
	Use:   "select <table> <id>",
	Short: "Look up a record by id",
	Long: `Look up a record by id and print it with the id as the first field.

Examples:
  rowdb select users 0
  rowdb select users 0 --json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		id, err := parseRecordID(args[1])
		if err != nil {
			return err
		}

		return withStore(cmd, func(s *store.RecordStore) error {
			fields, found, err := s.Select(args[0], id)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("record %d not found in table %s", id, args[0])
			}

			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(fields)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(fields, codec.Separator))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(selectCmd)
	selectCmd.Flags().Bool("json", false, "Print the fields as a JSON array")
}
