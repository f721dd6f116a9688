package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ediscovery/chatbox/internal/dispatch"
	"github.com/ediscovery/chatbox/internal/session"
)

var askCmd = &cobra.Command{
	Use:   "ask QUESTION...",
	Short: "Ask one question and print the reply",
	Long: `Sends a single question to the backend in a fresh session and prints the
reply. The command exits non-zero when the request fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath, backendURL, requestFormat)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	client, err := newClient(cfg)
	if err != nil {
		return fmt.Errorf("error creating chat client: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return ask(ctx, cmd.OutOrStdout(), client, strings.Join(args, " "))
}

// ask runs one question through a throwaway session and writes the reply.
func ask(ctx context.Context, out io.Writer, client dispatch.Client, question string) error {
	store := session.NewStore()
	store.Create()
	d := dispatch.New(store, client)

	ticket, ok := d.Begin(question)
	if !ok {
		return fmt.Errorf("question is empty")
	}
	outcome := d.Exchange(ctx, ticket)
	msg, err := d.Settle(outcome)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, msg.Content)
	if outcome.Failed() {
		if outcome.Err == nil {
			return fmt.Errorf("request failed: backend sent no reply")
		}
		return fmt.Errorf("request failed: %w", outcome.Err)
	}
	return nil
}
