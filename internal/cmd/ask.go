package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"askdb/pkg/models"
	"askdb/pkg/normalize"
)

var (
	askDB     bool
	askAudio  string
	askThread string
	askTable  string
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question and print the answer",
	Args:  cobra.ArbitraryArgs,
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().BoolVar(&askDB, "db", false, "run a database query instead of chat")
	askCmd.Flags().StringVar(&askAudio, "audio", "", "attach an audio file; the question text may be empty")
	askCmd.Flags().StringVar(&askThread, "thread", "", "continue an existing thread")
	askCmd.Flags().StringVar(&askTable, "table", "", "file the exchange under an AI-table folder")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" && askAudio == "" {
		return fmt.Errorf("a question or --audio is required")
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	qt := models.QueryChat
	if askDB {
		qt = models.QueryDB
	}
	req := models.AskRequest{
		Question:  question,
		ThreadID:  askThread,
		QueryType: qt,
		AITable:   askTable,
	}

	ctx := cmd.Context()
	var ex *models.Exchange
	if askAudio != "" {
		ex, err = a.Client.AskAudio(ctx, req, askAudio)
	} else {
		ex, err = a.Client.Ask(ctx, req)
	}
	if err != nil {
		return err
	}

	renderMessage(os.Stdout, normalize.MessageFromExchange(*ex))
	if ex.ThreadID != "" {
		fmt.Fprintf(os.Stderr, "thread: %s  query: %s\n", ex.ThreadID, ex.QueryID)
	}
	return nil
}
