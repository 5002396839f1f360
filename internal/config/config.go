package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/reportbot/internal/errors"
)

// defaultMaxReminders applies when max_reminders is absent from the
// config file.
const defaultMaxReminders = 3

// Config represents the application configuration
type Config struct {
	Enabled      bool            `yaml:"enabled"`
	Timezone     string          `yaml:"timezone"`
	CheckTimes   []string        `yaml:"check_times"`
	MaxReminders *int            `yaml:"max_reminders"`
	Source       SourceConfig    `yaml:"source"`
	State        StateConfig     `yaml:"state"`
	Archive      ArchiveConfig   `yaml:"archive"`
	Generator    GeneratorConfig `yaml:"generator"`
	Notify       NotifyConfig    `yaml:"notify"`
	Server       ServerConfig    `yaml:"server"`
	Logging      LoggingConfig   `yaml:"logging"`
}

// SourceConfig configures the spreadsheet CSV source.
type SourceConfig struct {
	URL          string `yaml:"url"`
	FetchTimeout string `yaml:"fetch_timeout"`
}

// FetchTimeoutDuration parses the configured fetch timeout. Validate has
// already rejected unparseable values, so this falls back to 30s only for
// zero-value configs constructed in code.
func (sc SourceConfig) FetchTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(sc.FetchTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// StateConfig configures the daily state store.
type StateConfig struct {
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// ArchiveConfig configures the generated-report archive database.
type ArchiveConfig struct {
	Path string `yaml:"path"`
}

// GeneratorConfig configures the report text generator.
type GeneratorConfig struct {
	APIKey          string `yaml:"api_key"`
	Model           string `yaml:"model"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
}

// NotifyConfig selects and configures the notification transport.
type NotifyConfig struct {
	Transport string      `yaml:"transport"` // "slack" or "nats"
	Slack     SlackConfig `yaml:"slack"`
	NATS      NATSConfig  `yaml:"nats"`
}

// SlackConfig configures Slack chat.postMessage delivery.
type SlackConfig struct {
	BotToken string `yaml:"bot_token"`
	Channel  string `yaml:"channel"`
	APIURL   string `yaml:"api_url,omitempty"` // override for testing
}

// NATSConfig configures NATS subject publishing.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// ServerConfig configures the status/control HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env/.env.local if present; existing environment wins.
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				fmt.Fprintf(os.Stderr, "Note: %s couldn't be loaded: %v\n", envPath, err)
			}
			break
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if len(c.CheckTimes) == 0 {
		c.CheckTimes = []string{"10:00", "12:00", "15:00"}
	}
	if c.MaxReminders == nil {
		// An explicit 0 disables reminders; only absence gets the default.
		v := defaultMaxReminders
		c.MaxReminders = &v
	}
	if c.Source.FetchTimeout == "" {
		c.Source.FetchTimeout = "30s"
	}
	if c.State.Path == "" {
		c.State.Path = "./data/daily_state.json"
	}
	if c.State.RetentionDays == 0 {
		c.State.RetentionDays = 30
	}
	if c.Archive.Path == "" {
		c.Archive.Path = "./data/archive.db"
	}
	if c.Generator.Model == "" {
		c.Generator.Model = "gemini-2.0-flash"
	}
	if c.Generator.MaxOutputTokens == 0 {
		c.Generator.MaxOutputTokens = 1024
	}
	if c.Notify.Transport == "" {
		c.Notify.Transport = "slack"
	}
	if c.Notify.NATS.Subject == "" {
		c.Notify.NATS.Subject = "reportbot.notifications"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	c.Logging.applyDefaults()
}

// Validate checks the configuration for errors that would prevent startup.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return errors.ValidationFailed("timezone", fmt.Sprintf("unknown timezone %q", c.Timezone))
	}
	for _, ct := range c.CheckTimes {
		if _, _, err := ParseCheckTime(ct); err != nil {
			return errors.ValidationFailed("check_times", err.Error())
		}
	}
	if c.MaxReminders != nil && *c.MaxReminders < 0 {
		return errors.ValidationFailed("max_reminders",
			fmt.Sprintf("must not be negative, got %d", *c.MaxReminders))
	}
	if _, err := time.ParseDuration(c.Source.FetchTimeout); err != nil {
		return errors.ValidationFailed("source.fetch_timeout",
			fmt.Sprintf("unparseable duration %q", c.Source.FetchTimeout))
	}
	if c.State.RetentionDays < 1 {
		return errors.ValidationFailed("state.retention_days",
			fmt.Sprintf("must be at least 1, got %d", c.State.RetentionDays))
	}
	switch c.Notify.Transport {
	case "slack", "nats":
	default:
		return errors.ValidationFailed("notify.transport",
			fmt.Sprintf("must be slack or nats, got %q", c.Notify.Transport))
	}
	return nil
}

// ReminderCap resolves the reminder limit, distinguishing an explicit 0
// (no reminders, report-or-wait only) from an absent setting.
func (c *Config) ReminderCap() int {
	if c.MaxReminders == nil {
		return defaultMaxReminders
	}
	return *c.MaxReminders
}

// Location resolves the configured IANA timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseCheckTime parses an HH:MM string into hour and minute components.
func ParseCheckTime(s string) (hour, minute int, err error) {
	if _, err := time.Parse("15:04", s); err != nil {
		return 0, 0, fmt.Errorf("invalid check time %q (want HH:MM): %w", s, err)
	}
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid check time %q: %w", s, err)
	}
	return hour, minute, nil
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := `# reportbot configuration
enabled: true
timezone: "UTC"
check_times: ["10:00", "12:00", "15:00"]
max_reminders: 3

source:
  url: "${DEFAULT_SHEET_URL}"
  fetch_timeout: 30s

state:
  path: "./data/daily_state.json"
  retention_days: 30

archive:
  path: "./data/archive.db"

generator:
  api_key: "${GEMINI_API_KEY}"
  model: "gemini-2.0-flash"
  max_output_tokens: 1024

notify:
  transport: "slack"
  slack:
    bot_token: "${SLACK_BOT_TOKEN}"
    channel: "${SLACK_CHANNEL_ID}"
  nats:
    url: "nats://127.0.0.1:4222"
    subject: "reportbot.notifications"

server:
  addr: ":8080"

logging:
  level: info
  format: text
`
	if err := os.WriteFile(configPath, []byte(example), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
