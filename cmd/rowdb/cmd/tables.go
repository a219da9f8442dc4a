package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ssargent/rowdb/pkg/store"
)

// tablesCmd represents the tables command
var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List tables",
	Long: `List the tables in the data directory with their last and next ids,
followed by the total size on disk.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.RecordStore) error {
			tables, err := s.Tables()
			if err != nil {
				return err
			}
			stats, err := s.Stats()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TABLE\tLAST ID\tNEXT ID")
			for _, t := range tables {
				fmt.Fprintf(w, "%s\t%d\t%d\n", t.Name, t.LastID, t.NextID)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d tables, %d bytes in %s\n", stats.Tables, stats.DataSize, stats.DataDir)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}
