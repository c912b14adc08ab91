package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"askdb/pkg/export"
	"askdb/pkg/models"
	"askdb/pkg/normalize"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <query-id> <out.xlsx>",
	Short: "Export a tabular answer to a spreadsheet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		doc, err := a.Client.Query(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		msgs := normalize.MessagesFromQuery(*doc, nil)
		for i := len(msgs) - 1; i >= 0; i-- {
			m := msgs[i]
			if m.Type != models.TypeTabular && m.Type != models.TypeTable {
				continue
			}
			if err := export.WriteXLSX(args[1], m.RawAnswer); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[1])
			return nil
		}
		return fmt.Errorf("query %s has no tabular answer", args[0])
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
