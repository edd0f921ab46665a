// Package config loads the bot's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spiffcs/issuebot/internal/constants"
	"github.com/spiffcs/issuebot/internal/ghclient"
	"github.com/spiffcs/issuebot/internal/model"
	"github.com/spiffcs/issuebot/internal/policy"
)

// EnvConfigPath names the environment variable that points at a config file.
const EnvConfigPath = "GITISSUEBOT_CONFIG"

// EnvToken is the fallback for api_key.
const EnvToken = "GITHUB_TOKEN"

const redacted = "********"

// Config represents the application configuration
type Config struct {
	APIEndpoint  string `yaml:"api_endpoint,omitempty" json:"api_endpoint,omitempty"`
	RESTEndpoint string `yaml:"rest_endpoint,omitempty" json:"rest_endpoint,omitempty"`
	APIKey       string `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	SSLVerify    *bool  `yaml:"ssl_verify,omitempty" json:"ssl_verify,omitempty"`
	SSLCAFile    string `yaml:"ssl_ca_file,omitempty" json:"ssl_ca_file,omitempty"`

	Owner      string `yaml:"owner,omitempty" json:"owner,omitempty"`
	Repository string `yaml:"repository,omitempty" json:"repository,omitempty"`
	BotLogin   string `yaml:"bot_login,omitempty" json:"bot_login,omitempty"`
	BatchSize  int    `yaml:"batch_size,omitempty" json:"batch_size,omitempty"`

	LabelIDs model.LabelIDs `yaml:"label_ids" json:"label_ids"`

	FirstMessage  string `yaml:"first_message,omitempty" json:"first_message,omitempty"`
	SecondMessage string `yaml:"second_message,omitempty" json:"second_message,omitempty"`
	FinalMessage  string `yaml:"final_message,omitempty" json:"final_message,omitempty"`
}

// ValidationError lists every required key missing from the configuration.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

// Validate checks that every key the bot cannot run without is set.
func (c *Config) Validate() error {
	var missing []string
	check := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}

	check("owner", c.Owner)
	check("repository", c.Repository)
	check("label_ids.inactive", c.LabelIDs.Inactive)
	check("label_ids.pending_closure", c.LabelIDs.PendingClosure)
	check("label_ids.automatically_closed", c.LabelIDs.AutomaticallyClosed)
	check("first_message", c.FirstMessage)
	check("second_message", c.SecondMessage)
	check("final_message", c.FinalMessage)

	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	if c.BatchSize < 0 || c.BatchSize > constants.MaxBatchSize {
		return fmt.Errorf("batch_size must be between 1 and %d, got %d", constants.MaxBatchSize, c.BatchSize)
	}
	return nil
}

// Token returns api_key, falling back to the GITHUB_TOKEN environment variable.
func (c *Config) Token() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	return os.Getenv(EnvToken)
}

// VerifySSL reports whether TLS certificates are verified. Defaults to true.
func (c *Config) VerifySSL() bool {
	return c.SSLVerify == nil || *c.SSLVerify
}

// Endpoint returns the GraphQL endpoint, defaulting to api.github.com.
func (c *Config) Endpoint() string {
	if c.APIEndpoint == "" {
		return constants.DefaultGraphQLEndpoint
	}
	return c.APIEndpoint
}

// Batch returns the configured batch size, defaulted and capped.
func (c *Config) Batch() int {
	switch {
	case c.BatchSize <= 0:
		return constants.DefaultBatchSize
	case c.BatchSize > constants.MaxBatchSize:
		return constants.MaxBatchSize
	default:
		return c.BatchSize
	}
}

// FullName returns owner/repository.
func (c *Config) FullName() string {
	return c.Owner + "/" + c.Repository
}

// ClientOptions builds the GitHub client options for this configuration.
func (c *Config) ClientOptions() ghclient.Options {
	return ghclient.Options{
		Endpoint:     c.Endpoint(),
		RESTEndpoint: c.RESTEndpoint,
		Token:        c.Token(),
		SSLVerify:    c.VerifySSL(),
		CAFile:       c.SSLCAFile,
		Owner:        c.Owner,
		Repo:         c.Repository,
		BatchSize:    c.Batch(),
	}
}

// PolicyConfig builds the engine configuration. botLogin overrides
// bot_login when the latter is empty.
func (c *Config) PolicyConfig(botLogin string) policy.Config {
	login := c.BotLogin
	if login == "" {
		login = botLogin
	}
	return policy.Config{
		BotLogin:      login,
		LabelIDs:      c.LabelIDs,
		FirstMessage:  c.FirstMessage,
		SecondMessage: c.SecondMessage,
		FinalMessage:  c.FinalMessage,
	}
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	cp := *c
	if cp.APIKey != "" {
		cp.APIKey = redacted
	}
	return &cp
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".issuebot"
	}
	return filepath.Join(configDir, "issuebot")
}

// ConfigPath returns the path to the global config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".issuebot.yaml"
}

// Load loads the configuration. An explicit path wins, then the
// GITISSUEBOT_CONFIG environment variable; either must exist. Otherwise the
// global config is loaded and any local .issuebot.yaml is merged on top
// (local values take precedence).
func Load(explicit string) (*Config, error) {
	if explicit == "" {
		explicit = os.Getenv(EnvConfigPath)
	}
	if explicit != "" {
		return LoadFile(explicit)
	}

	cfg := &Config{}

	global, err := loadIfExists(ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("global config: %w", err)
	}
	if global != nil {
		cfg = global
	}

	local, err := loadIfExists(LocalConfigPath())
	if err != nil {
		return nil, fmt.Errorf("local config: %w", err)
	}
	if local != nil {
		cfg = mergeConfig(cfg, local)
	}

	return cfg, nil
}

// LoadFile reads a single config file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

func loadIfExists(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return cfg, err
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	pick := func(l, g string) string {
		if l != "" {
			return l
		}
		return g
	}

	result := &Config{
		APIEndpoint:   pick(local.APIEndpoint, global.APIEndpoint),
		RESTEndpoint:  pick(local.RESTEndpoint, global.RESTEndpoint),
		APIKey:        pick(local.APIKey, global.APIKey),
		SSLCAFile:     pick(local.SSLCAFile, global.SSLCAFile),
		Owner:         pick(local.Owner, global.Owner),
		Repository:    pick(local.Repository, global.Repository),
		BotLogin:      pick(local.BotLogin, global.BotLogin),
		FirstMessage:  pick(local.FirstMessage, global.FirstMessage),
		SecondMessage: pick(local.SecondMessage, global.SecondMessage),
		FinalMessage:  pick(local.FinalMessage, global.FinalMessage),
		LabelIDs: model.LabelIDs{
			Inactive:            pick(local.LabelIDs.Inactive, global.LabelIDs.Inactive),
			PendingClosure:      pick(local.LabelIDs.PendingClosure, global.LabelIDs.PendingClosure),
			AutomaticallyClosed: pick(local.LabelIDs.AutomaticallyClosed, global.LabelIDs.AutomaticallyClosed),
		},
		SSLVerify: global.SSLVerify,
		BatchSize: global.BatchSize,
	}

	if local.SSLVerify != nil {
		result.SSLVerify = local.SSLVerify
	}
	if local.BatchSize != 0 {
		result.BatchSize = local.BatchSize
	}

	return result
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	EnvPath      string
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for every config location
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		EnvPath:      os.Getenv(EnvConfigPath),
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a starter config template with comments
func MinimalConfig() string {
	return `# issuebot configuration file

# Repository to police
owner: my-org
repository: my-repo

# GraphQL endpoint; change for GitHub Enterprise
# api_endpoint: https://api.github.com/graphql
# rest_endpoint: https://github.example.com/api/v3/

# Token; falls back to the GITHUB_TOKEN environment variable
# api_key: ghp_...

# ssl_verify: true
# ssl_ca_file: /etc/ssl/certs/corp-ca.pem

# Login whose comments never count as activity. Defaults to the token's user.
# bot_login: my-bot

# Issues evaluated per run (max 100)
# batch_size: 100

# Label node ids; run 'issuebot labels' to list them
label_ids:
  inactive: ""
  pending_closure: ""
  automatically_closed: ""

first_message: |
  This issue has had no activity for six months. It will be closed in six
  months unless there is new activity.
second_message: |
  This issue has had no activity for eleven months. It will be closed in
  one month unless there is new activity.
final_message: |
  This issue has had no activity for a year and has been closed. Comment
  if it is still relevant.
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
