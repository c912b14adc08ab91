package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"askdb/pkg/models"
	"askdb/pkg/session"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Open a REPL against the ask_db service. Plain input is sent as a
chat question; slash commands switch context:

  /db <question>        run a database query instead of chat
  /reply <id> <text>    reply to an earlier message by id
  /thread <id>          switch to a thread
  /table <id>           open an AI-table folder
  /new                  start a fresh conversation
  /exit                 leave`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("chat needs an interactive terminal; use 'askdb ask' for scripted queries")
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	sess := a.Session
	for _, m := range sess.Messages() {
		renderMessage(os.Stdout, m)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if tid := sess.ThreadID(); tid != "" {
			fmt.Printf("[%s] ", tid)
		}
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/exit" {
			break
		}
		if err := dispatchLine(ctx, sess, line); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		if banner := sess.BannerError(); banner != "" {
			fmt.Fprintf(os.Stderr, "! %s\n", banner)
			sess.ClearBanner()
		}
	}
	return scanner.Err()
}

func dispatchLine(ctx context.Context, sess *session.Session, line string) error {
	switch {
	case line == "/new":
		sess.Reset()
		fmt.Println("(new conversation)")
		return nil
	case strings.HasPrefix(line, "/thread "):
		id := strings.TrimSpace(strings.TrimPrefix(line, "/thread "))
		if err := sess.SwitchThread(ctx, id); err != nil {
			return err
		}
		for _, m := range sess.Messages() {
			renderMessage(os.Stdout, m)
		}
		return nil
	case strings.HasPrefix(line, "/table "):
		id := strings.TrimSpace(strings.TrimPrefix(line, "/table "))
		if err := sess.OpenTable(ctx, id); err != nil {
			return err
		}
		for _, m := range sess.Messages() {
			renderMessage(os.Stdout, m)
		}
		return nil
	case strings.HasPrefix(line, "/reply "):
		rest := strings.TrimSpace(strings.TrimPrefix(line, "/reply "))
		id, text, ok := strings.Cut(rest, " ")
		if !ok {
			return fmt.Errorf("usage: /reply <message-id> <text>")
		}
		return sendAndRender(ctx, sess, text, id, models.QueryChat)
	case strings.HasPrefix(line, "/db "):
		return sendAndRender(ctx, sess, strings.TrimPrefix(line, "/db "), "", models.QueryDB)
	case strings.HasPrefix(line, "/"):
		return fmt.Errorf("unknown command %q", strings.Fields(line)[0])
	default:
		return sendAndRender(ctx, sess, line, "", models.QueryChat)
	}
}

func sendAndRender(ctx context.Context, sess *session.Session, text, replyTo string, qt models.QueryType) error {
	bot, err := sess.Send(ctx, text, replyTo, qt)
	if errors.Is(err, session.ErrSendInFlight) {
		fmt.Fprintln(os.Stderr, "(still waiting on the previous question)")
		return nil
	}
	if errors.Is(err, session.ErrStaleSend) {
		return nil
	}
	if err != nil {
		// the session already appended the synthetic error reply and
		// set the banner
		return nil
	}
	renderMessage(os.Stdout, *bot)
	return nil
}
