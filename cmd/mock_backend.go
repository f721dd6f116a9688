package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ediscovery/chatbox/internal/mockbackend"
)

var mockAddr string

var mockBackendCmd = &cobra.Command{
	Use:   "mock-backend",
	Short: "Serve a canned chat backend for local use",
	Long: `Serves POST /chat with the reply shapes of the real backend: person
clarifications, reframed counting questions, query results after a "yes",
and natural answers otherwise. Point chatbox at it with --backend-url.`,
	RunE: runMockBackend,
}

func init() {
	mockBackendCmd.Flags().StringVar(&mockAddr, "addr", mockbackend.DefaultAddr, "Listen address")
	rootCmd.AddCommand(mockBackendCmd)
}

func runMockBackend(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Mock backend listening on %s (ctrl+c to stop)\n", mockAddr)
	return mockbackend.New().Run(ctx, mockAddr)
}
