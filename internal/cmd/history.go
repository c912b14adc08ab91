package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List your threads, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.Client.History(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		defer tw.Flush()
		for _, it := range items {
			name := it.Name
			if name == "" {
				name = "(untitled)"
			}
			when := ""
			if it.UpdatedTS > 0 {
				when = humanize.Time(time.Unix(it.UpdatedTS, 0))
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ThreadID, name, when)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
