package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ediscovery/chatbox/internal/logger"
)

var skipConfirm bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove chatbox log files",
	Long: `Removes every chatbox log file from /tmp.
It will prompt for confirmation before proceeding unless the --yes flag is used.`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	return runCleanWithReader(os.Stdin, cmd.OutOrStdout())
}

// runCleanWithReader allows injecting a reader for testing
func runCleanWithReader(input io.Reader, out io.Writer) error {
	if !skipConfirm {
		if !confirm(input, "Remove all chatbox log files?") {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	// Release our own handle before deleting
	logger.Close()

	removed, err := logger.ClearLogs()
	if err != nil {
		return fmt.Errorf("error clearing logs: %w", err)
	}
	if removed == 0 {
		fmt.Fprintln(out, "Nothing to clean.")
		return nil
	}
	fmt.Fprintf(out, "Removed %d log file(s).\n", removed)
	return nil
}

// confirm prompts the user for y/n confirmation
func confirm(input io.Reader, prompt string) bool {
	reader := bufio.NewReader(input)
	fmt.Printf("%s [y/N]: ", prompt)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
