package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"askdb/pkg/normalize"
)

// tablesCmd represents the tables command group
var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Browse AI-table folders",
}

var tablesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your folders",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.Client.ListAITables(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		defer tw.Flush()
		for _, it := range items {
			fmt.Fprintf(tw, "%s\t%s\n", it.TableID, it.Name)
		}
		return nil
	},
}

var tablesShowCmd = &cobra.Command{
	Use:   "show <table-id>",
	Short: "Print the exchanges filed in a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		doc, err := a.Client.AITable(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, m := range normalize.MessagesFromTable(*doc) {
			renderMessage(os.Stdout, m)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
	tablesCmd.AddCommand(tablesListCmd)
	tablesCmd.AddCommand(tablesShowCmd)
}
