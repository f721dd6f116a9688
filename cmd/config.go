package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	huh "charm.land/huh/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ediscovery/chatbox/internal/chatapi"
	"github.com/ediscovery/chatbox/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit the config file",
	Long: `Opens a form to edit the backend URL, request format, timeout, sidebar
width and notifications, then saves them to the config file.`,
	RunE: runConfigEdit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	Long:  `Prints the config after the file, .env, environment and flags are applied.`,
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

// formValues holds the editable fields as the form sees them.
type formValues struct {
	BackendURL     string
	Format         string
	Timeout        string
	SidebarPercent string
	Notifications  bool
}

func valuesFromConfig(cfg *config.Config) formValues {
	return formValues{
		BackendURL:     cfg.GetBackendURL(),
		Format:         string(cfg.GetRequestFormat()),
		Timeout:        cfg.GetTimeout().String(),
		SidebarPercent: strconv.FormatFloat(cfg.GetSidebarPercent(), 'f', -1, 64),
		Notifications:  cfg.GetNotificationsEnabled(),
	}
}

// apply copies v into cfg and validates the result.
func (v formValues) apply(cfg *config.Config) error {
	timeout, err := time.ParseDuration(strings.TrimSpace(v.Timeout))
	if err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	percent, err := strconv.ParseFloat(strings.TrimSpace(v.SidebarPercent), 64)
	if err != nil {
		return fmt.Errorf("sidebar width: %w", err)
	}

	cfg.SetBackendURL(strings.TrimSpace(v.BackendURL))
	cfg.SetRequestFormat(v.Format)
	cfg.SetTimeout(timeout)
	cfg.SetSidebarPercent(percent)
	cfg.SetNotificationsEnabled(v.Notifications)
	return cfg.Validate()
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("use a duration like 30s or 2m")
	}
	if d < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

func validatePercent(s string) error {
	p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("enter a number")
	}
	if p < config.MinSidebarPercent || p > config.MaxSidebarPercent {
		return fmt.Errorf("must be between %g and %g", config.MinSidebarPercent, config.MaxSidebarPercent)
	}
	return nil
}

func validateBackendURL(s string) error {
	_, err := chatapi.New(chatapi.Config{BaseURL: strings.TrimSpace(s)})
	return err
}

// newConfigForm builds the editing form bound to v.
func newConfigForm(v *formValues) *huh.Form {
	formatOptions := make([]huh.Option[string], len(chatapi.Formats))
	for i, f := range chatapi.Formats {
		formatOptions[i] = huh.NewOption(string(f), string(f))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend URL").
				Description("Root of the chat backend; requests go to /chat").
				Placeholder(config.DefaultBackendURL).
				Validate(validateBackendURL).
				Value(&v.BackendURL),
			huh.NewSelect[string]().
				Title("Request format").
				Description("history sends prior messages; message suits the earliest backends").
				Options(formatOptions...).
				Value(&v.Format),
			huh.NewInput().
				Title("Request timeout").
				Description("0 waits forever").
				Validate(validateDuration).
				Value(&v.Timeout),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Sidebar width (%)").
				Validate(validatePercent).
				Value(&v.SidebarPercent),
			huh.NewConfirm().
				Title("Desktop notifications").
				Description("Notify when a reply arrives in a chat you are not viewing").
				Value(&v.Notifications),
		),
	)
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	values := valuesFromConfig(cfg)
	if err := newConfigForm(&values).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
		return err
	}

	if err := values.apply(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", cfg.Path())
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath, backendURL, requestFormat)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", cfg.Path(), data)
	return nil
}
