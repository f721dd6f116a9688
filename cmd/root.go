package cmd

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/ediscovery/chatbox/internal/app"
	"github.com/ediscovery/chatbox/internal/chatapi"
	"github.com/ediscovery/chatbox/internal/config"
	"github.com/ediscovery/chatbox/internal/logger"
)

var (
	debugMode             bool
	configPath            string
	backendURL            string
	requestFormat         string
	version, commit, date string
)

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "chatbox",
	Short: "Terminal chat client for a case-review question answering backend",
	Long: `chatbox is a terminal chat client for a question answering backend.
Each conversation lives in its own session in the sidebar; questions are sent
with the session's history and replies are shown as they arrive, even while
you work in another session.`,
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.chatbox/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend-url", "", "Chat backend base URL (overrides config and environment)")
	rootCmd.PersistentFlags().StringVar(&requestFormat, "format", "", "Request body format: history, input or message")
}

func initConfig() {
	logger.SetDebug(debugMode)
}

// Execute runs the root command
func Execute() error {
	// Set version dynamically
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	return rootCmd.Execute()
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("chatbox %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("chatbox %s\n", version)
}

// loadConfig layers the config file, .env, the environment and flags, in
// that order. Empty flag values leave the lower layers alone.
func loadConfig(path, urlFlag, formatFlag string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.LoadDotEnv(""); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if urlFlag != "" {
		cfg.SetBackendURL(urlFlag)
	}
	if formatFlag != "" {
		cfg.SetRequestFormat(formatFlag)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newClient builds the chat client described by cfg.
func newClient(cfg *config.Config) (*chatapi.Client, error) {
	return chatapi.New(chatapi.Config{
		BaseURL: cfg.GetBackendURL(),
		Format:  cfg.GetRequestFormat(),
		Timeout: cfg.GetTimeout(),
	})
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath, backendURL, requestFormat)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if err := logger.Init(cfg.GetLogPath()); err != nil {
		return fmt.Errorf("error opening log file: %w", err)
	}
	// Ensure logger is closed on exit
	defer logger.Close()

	client, err := newClient(cfg)
	if err != nil {
		return fmt.Errorf("error creating chat client: %w", err)
	}
	logger.WithComponent("cmd").Info("starting chatbox",
		"version", version,
		"endpoint", client.Endpoint(),
		"format", client.Format())

	// Create and run the app
	m := app.New(cfg, client, version)
	defer m.Close()
	p := tea.NewProgram(m)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}
