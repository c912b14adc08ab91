package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"askdb/pkg/normalize"
)

// threadsCmd represents the threads command group
var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "Inspect and manage threads",
}

var threadsShowCmd = &cobra.Command{
	Use:   "show <thread-id>",
	Short: "Print a thread transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		doc, err := a.Client.Thread(ctx, args[0])
		if err != nil {
			return err
		}
		bms, err := a.Client.Bookmarks(ctx)
		if err != nil {
			bms = nil
		}
		for _, m := range normalize.MessagesFromThread(*doc, bms) {
			renderMessage(os.Stdout, m)
		}
		return nil
	},
}

var threadsRenameCmd = &cobra.Command{
	Use:   "rename <thread-id> <name>",
	Short: "Rename a thread",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Client.RenameThread(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("renamed %s\n", args[0])
		return nil
	},
}

var threadsRmCmd = &cobra.Command{
	Use:   "rm <thread-id>",
	Short: "Delete a thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Client.DeleteThread(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(threadsCmd)
	threadsCmd.AddCommand(threadsShowCmd)
	threadsCmd.AddCommand(threadsRenameCmd)
	threadsCmd.AddCommand(threadsRmCmd)
}
