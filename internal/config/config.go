package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ediscovery/chatbox/internal/chatapi"
	cerrors "github.com/ediscovery/chatbox/internal/errors"
	"github.com/ediscovery/chatbox/internal/logger"
)

const (
	// DirName is the directory under $HOME holding the config file.
	DirName = ".chatbox"
	// FileName is the config file inside DirName.
	FileName = "config.yaml"
	// EnvFile is read from the working directory before the environment.
	EnvFile = ".env"

	DefaultBackendURL     = "http://localhost:5000"
	DefaultTimeout        = 2 * time.Minute
	DefaultSidebarPercent = 20.0

	// MinSidebarPercent and MaxSidebarPercent bound the sidebar width.
	MinSidebarPercent = 10.0
	MaxSidebarPercent = 40.0
)

// Environment variables read by ApplyEnv. ViteBackendURLEnv is honored so
// an existing frontend .env keeps working.
const (
	BackendURLEnv     = "CHATBOX_BACKEND_URL"
	ViteBackendURLEnv = "VITE_BACKEND_URL"
	RequestFormatEnv  = "CHATBOX_REQUEST_FORMAT"
	TimeoutEnv        = "CHATBOX_TIMEOUT"
	NotificationsEnv  = "CHATBOX_NOTIFICATIONS"
)

// Config holds the application configuration
type Config struct {
	BackendURL     string        `yaml:"backend_url"`
	RequestFormat  string        `yaml:"request_format"`
	Timeout        time.Duration `yaml:"timeout"`         // 0 disables the request timeout
	SidebarPercent float64       `yaml:"sidebar_percent"` // Initial sidebar width
	Notifications  bool          `yaml:"notifications"`   // Desktop notification for background replies
	LogPath        string        `yaml:"log_path,omitempty"`

	mu       sync.RWMutex
	filePath string
}

// Default returns a config with every field at its default.
func Default() *Config {
	return &Config{
		BackendURL:     DefaultBackendURL,
		RequestFormat:  string(chatapi.FormatHistory),
		Timeout:        DefaultTimeout,
		SidebarPercent: DefaultSidebarPercent,
		LogPath:        logger.DefaultLogPath,
	}
}

// DefaultPath returns ~/.chatbox/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DirName, FileName), nil
}

// Load reads the config file at path on top of the defaults. An empty path
// means DefaultPath. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, cerrors.ConfigLoadFailed("home directory", err)
		}
		path = p
	}

	cfg := Default()
	cfg.filePath = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.WithComponent("config").Debug("no config file, using defaults", "path", path)
		return cfg, nil
	}
	if err != nil {
		return nil, cerrors.ConfigLoadFailed(path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, cerrors.ConfigLoadFailed(path, err)
	}
	cfg.fillBlanks()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillBlanks restores defaults for fields a config file left empty. Not
// thread-safe; only called from Load before the config is shared.
func (c *Config) fillBlanks() {
	if c.BackendURL == "" {
		c.BackendURL = DefaultBackendURL
	}
	if c.RequestFormat == "" {
		c.RequestFormat = string(chatapi.FormatHistory)
	}
	if c.SidebarPercent == 0 {
		c.SidebarPercent = DefaultSidebarPercent
	}
	if c.LogPath == "" {
		c.LogPath = logger.DefaultLogPath
	}
}

// LoadDotEnv loads path (EnvFile when empty) into the process environment.
// Variables already set are not overridden. A missing file is ignored.
func LoadDotEnv(path string) error {
	if path == "" {
		path = EnvFile
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return cerrors.ConfigLoadFailed(path, err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment. Malformed values are
// reported and leave the field unchanged.
func (c *Config) ApplyEnv() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v := os.Getenv(BackendURLEnv); v != "" {
		c.BackendURL = v
	} else if v := os.Getenv(ViteBackendURLEnv); v != "" {
		c.BackendURL = v
	}
	if v := os.Getenv(RequestFormatEnv); v != "" {
		c.RequestFormat = v
	}
	if v := os.Getenv(TimeoutEnv); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cerrors.ConfigInvalid(fmt.Sprintf("%s: %v", TimeoutEnv, err))
		}
		c.Timeout = d
	}
	if v := os.Getenv(NotificationsEnv); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cerrors.ConfigInvalid(fmt.Sprintf("%s: %v", NotificationsEnv, err))
		}
		c.Notifications = b
	}
	return nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return cerrors.ConfigInvalid(fmt.Sprintf("backend_url: %v", err))
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return cerrors.ConfigInvalid(fmt.Sprintf("backend_url must be an absolute http(s) URL, got %q", c.BackendURL))
	}
	if _, err := chatapi.ParseFormat(c.RequestFormat); err != nil {
		return cerrors.ConfigInvalid(fmt.Sprintf("request_format: %v", err))
	}
	if c.SidebarPercent < MinSidebarPercent || c.SidebarPercent > MaxSidebarPercent {
		return cerrors.ConfigInvalid(fmt.Sprintf("sidebar_percent must be within [%g, %g], got %g",
			MinSidebarPercent, MaxSidebarPercent, c.SidebarPercent))
	}
	if c.Timeout < 0 {
		return cerrors.ConfigInvalid(fmt.Sprintf("timeout must not be negative, got %s", c.Timeout))
	}
	return nil
}

// Save writes the config to its file, creating the directory if needed.
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	path := c.filePath
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cerrors.ConfigSaveFailed("home directory", err)
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return cerrors.ConfigSaveFailed(path, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return cerrors.ConfigSaveFailed(path, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return cerrors.ConfigSaveFailed(path, err)
	}
	return nil
}

// Path returns the file the config was loaded from and saves to.
func (c *Config) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filePath
}

// SetPath changes the file Save writes to.
func (c *Config) SetPath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filePath = path
}

// GetBackendURL returns the chat backend base URL
func (c *Config) GetBackendURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.BackendURL
}

// SetBackendURL sets the chat backend base URL
func (c *Config) SetBackendURL(u string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.BackendURL = u
}

// GetRequestFormat returns the request format, falling back to the default
// when the stored value is unknown.
func (c *Config) GetRequestFormat() chatapi.Format {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, err := chatapi.ParseFormat(c.RequestFormat)
	if err != nil {
		return chatapi.FormatHistory
	}
	return f
}

// SetRequestFormat sets the request format
func (c *Config) SetRequestFormat(f string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RequestFormat = f
}

// GetTimeout returns the per-request timeout
func (c *Config) GetTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Timeout
}

// SetTimeout sets the per-request timeout
func (c *Config) SetTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Timeout = d
}

// GetSidebarPercent returns the initial sidebar width in percent
func (c *Config) GetSidebarPercent() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.SidebarPercent
}

// SetSidebarPercent sets the initial sidebar width in percent
func (c *Config) SetSidebarPercent(p float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SidebarPercent = p
}

// GetNotificationsEnabled returns whether desktop notifications are enabled
func (c *Config) GetNotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Notifications
}

// SetNotificationsEnabled sets whether desktop notifications are enabled
func (c *Config) SetNotificationsEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Notifications = enabled
}

// GetLogPath returns the debug log file path
func (c *Config) GetLogPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.LogPath
}
