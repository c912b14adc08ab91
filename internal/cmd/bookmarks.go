package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// bookmarksCmd represents the bookmarks command group
var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "Manage saved query collections",
}

var bookmarksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookmarks",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.Client.Bookmarks(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		defer tw.Flush()
		for _, bm := range items {
			fmt.Fprintf(tw, "%s\t%s\t%d queries\n", bm.ID, bm.Name, len(bm.Queries))
		}
		return nil
	},
}

var bookmarksOpenCmd = &cobra.Command{
	Use:   "open <bookmark-id>",
	Short: "Print every exchange a bookmark references",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		items, err := a.Client.Bookmarks(ctx)
		if err != nil {
			return err
		}
		for _, bm := range items {
			if bm.ID != args[0] {
				continue
			}
			if err := a.Session.OpenBookmark(ctx, bm); err != nil {
				return err
			}
			for _, m := range a.Session.Messages() {
				renderMessage(os.Stdout, m)
			}
			return nil
		}
		return fmt.Errorf("bookmark %s not found", args[0])
	},
}

var bookmarksAddCmd = &cobra.Command{
	Use:   "add <name> <query-id>...",
	Short: "Create a bookmark over one or more queries",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		bm, err := a.Client.CreateBookmark(cmd.Context(), args[0], args[1:])
		if err != nil {
			return err
		}
		fmt.Printf("created %s\n", bm.ID)
		return nil
	},
}

var bookmarksRmCmd = &cobra.Command{
	Use:   "rm <bookmark-id>",
	Short: "Delete a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Client.DeleteBookmark(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bookmarksCmd)
	bookmarksCmd.AddCommand(bookmarksListCmd)
	bookmarksCmd.AddCommand(bookmarksOpenCmd)
	bookmarksCmd.AddCommand(bookmarksAddCmd)
	bookmarksCmd.AddCommand(bookmarksRmCmd)
}
