package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Slack    SlackConfig    `yaml:"slack"`
	App      AppConfig      `yaml:"app"`
	Render   RenderConfig   `yaml:"render"`
	Delivery DeliveryConfig `yaml:"delivery"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// StorageConfig holds persistence storage settings.
type StorageConfig struct {
	Type   string       `yaml:"type"` // "memory", "sqlite", or "mysql"
	SQLite SQLiteConfig `yaml:"sqlite"`
	MySQL  MySQLConfig  `yaml:"mysql"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path"` // Database file path, use ":memory:" for in-memory
}

// MySQLConfig holds MySQL-specific settings.
type MySQLConfig struct {
	// DSN, when set, replaces the primary instance fields. Accepts a driver DSN
	// or a mysql:// URI.
	DSN       string              `yaml:"dsn"`
	Primary   MySQLInstanceConfig `yaml:"primary"`
	Replica   MySQLReplicaConfig  `yaml:"replica"`
	Pool      MySQLPoolConfig     `yaml:"pool"`
	Timeout   time.Duration       `yaml:"timeout"`
	ParseTime bool                `yaml:"parse_time"`
	Charset   string              `yaml:"charset"`
}

// MySQLInstanceConfig holds MySQL instance connection settings.
type MySQLInstanceConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MySQLReplicaConfig holds MySQL replica settings.
type MySQLReplicaConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MySQLPoolConfig holds MySQL connection pool settings.
type MySQLPoolConfig struct {
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SlackConfig holds Slack integration settings.
type SlackConfig struct {
	SigningSecret string           `yaml:"signing_secret"`
	APIURL        string           `yaml:"api_url"` // Override for tests and proxies
	SocketMode    SocketModeConfig `yaml:"socket_mode"`
}

// SocketModeConfig holds Slack Socket Mode settings.
type SocketModeConfig struct {
	Enabled  bool   `yaml:"enabled"`
	AppToken string `yaml:"app_token"` // xapp-...
	Debug    bool   `yaml:"debug"`
}

// AppConfig holds public project information.
type AppConfig struct {
	Name      string `yaml:"name"`
	FullName  string `yaml:"full_name"`
	Version   string `yaml:"version"`
	AuthorURL string `yaml:"author_url"`
	BaseURL   string `yaml:"base_url"`
}

// AuthURL is where a team installs the app.
func (a AppConfig) AuthURL() string {
	return strings.TrimRight(a.BaseURL, "/") + "/authenticate"
}

// ValidURL is where the install flow lands after authorization.
func (a AppConfig) ValidURL() string {
	return strings.TrimRight(a.BaseURL, "/") + "/validate"
}

// RenderConfig holds table flip rendering settings.
type RenderConfig struct {
	MaxTextLength int `yaml:"max_text_length"`
}

// DeliveryConfig holds chat.postMessage retry and circuit breaker settings.
type DeliveryConfig struct {
	Timeout          time.Duration `yaml:"timeout"`
	MaxAttempts      int           `yaml:"max_attempts"`
	InitialBackoff   time.Duration `yaml:"initial_backoff"`
	MaxBackoff       time.Duration `yaml:"max_backoff"`
	BreakerThreshold int           `yaml:"breaker_threshold"`
	BreakerTimeout   time.Duration `yaml:"breaker_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// envBindings maps config keys to the environment variables that override them.
// Later names are legacy aliases.
var envBindings = map[string][]string{
	"server.port":                     {"SERVER_PORT", "PORT"},
	"server.request_timeout":          {"SERVER_REQUEST_TIMEOUT"},
	"storage.type":                    {"STORAGE_TYPE"},
	"storage.sqlite.path":             {"SQLITE_DATABASE_PATH"},
	"storage.mysql.dsn":               {"MYSQL_DSN", "EMST_DATABASE_URI"},
	"storage.mysql.primary.host":      {"MYSQL_HOST"},
	"storage.mysql.primary.port":      {"MYSQL_PORT"},
	"storage.mysql.primary.database":  {"MYSQL_DATABASE"},
	"storage.mysql.primary.username":  {"MYSQL_USERNAME"},
	"storage.mysql.primary.password":  {"MYSQL_PASSWORD"},
	"storage.mysql.pool.max_open":     {"MYSQL_MAX_OPEN_CONNS"},
	"storage.mysql.pool.max_idle":     {"MYSQL_MAX_IDLE_CONNS"},
	"storage.mysql.pool.max_lifetime": {"MYSQL_CONN_MAX_LIFETIME"},
	"storage.mysql.replica.enabled":   {"MYSQL_REPLICA_ENABLED"},
	"storage.mysql.replica.host":      {"MYSQL_REPLICA_HOST"},
	"storage.mysql.replica.port":      {"MYSQL_REPLICA_PORT"},
	"storage.mysql.replica.database":  {"MYSQL_REPLICA_DATABASE"},
	"storage.mysql.replica.username":  {"MYSQL_REPLICA_USERNAME"},
	"storage.mysql.replica.password":  {"MYSQL_REPLICA_PASSWORD"},
	"slack.signing_secret":            {"SLACK_SIGNING_SECRET"},
	"slack.api_url":                   {"SLACK_API_URL"},
	"slack.socket_mode.enabled":       {"SLACK_SOCKET_MODE_ENABLED"},
	"slack.socket_mode.app_token":     {"SLACK_APP_TOKEN"},
	"app.base_url":                    {"APP_BASE_URL"},
	"render.max_text_length":          {"RENDER_MAX_TEXT_LENGTH"},
	"logging.level":                   {"LOG_LEVEL"},
	"logging.format":                  {"LOG_FORMAT"},
}

// Load reads configuration from file and environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	// Load from file if exists
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			// Expand environment variables in YAML
			expandedData := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	// Override with environment variables
	if err := cfg.overrideFromEnv(); err != nil {
		return nil, fmt.Errorf("binding environment: %w", err)
	}

	// Apply defaults
	cfg.applyDefaults()

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// overrideFromEnv overrides config values from environment variables.
func (c *Config) overrideFromEnv() error {
	v := viper.New()
	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}

	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setInt := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	setBool := func(key string, dst *bool) {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v.IsSet(key) {
			*dst = v.GetDuration(key)
		}
	}

	// Server
	setInt("server.port", &c.Server.Port)
	setDuration("server.request_timeout", &c.Server.RequestTimeout)

	// Storage
	setString("storage.type", &c.Storage.Type)
	setString("storage.sqlite.path", &c.Storage.SQLite.Path)

	// MySQL
	mysql := &c.Storage.MySQL
	setString("storage.mysql.dsn", &mysql.DSN)
	setString("storage.mysql.primary.host", &mysql.Primary.Host)
	setInt("storage.mysql.primary.port", &mysql.Primary.Port)
	setString("storage.mysql.primary.database", &mysql.Primary.Database)
	setString("storage.mysql.primary.username", &mysql.Primary.Username)
	setString("storage.mysql.primary.password", &mysql.Primary.Password)
	setInt("storage.mysql.pool.max_open", &mysql.Pool.MaxOpenConns)
	setInt("storage.mysql.pool.max_idle", &mysql.Pool.MaxIdleConns)
	setDuration("storage.mysql.pool.max_lifetime", &mysql.Pool.ConnMaxLifetime)

	// MySQL Replica (optional)
	setBool("storage.mysql.replica.enabled", &mysql.Replica.Enabled)
	setString("storage.mysql.replica.host", &mysql.Replica.Host)
	setInt("storage.mysql.replica.port", &mysql.Replica.Port)
	setString("storage.mysql.replica.database", &mysql.Replica.Database)
	setString("storage.mysql.replica.username", &mysql.Replica.Username)
	setString("storage.mysql.replica.password", &mysql.Replica.Password)

	// Slack
	setString("slack.signing_secret", &c.Slack.SigningSecret)
	setString("slack.api_url", &c.Slack.APIURL)
	setBool("slack.socket_mode.enabled", &c.Slack.SocketMode.Enabled)
	setString("slack.socket_mode.app_token", &c.Slack.SocketMode.AppToken)

	// App
	setString("app.base_url", &c.App.BaseURL)

	// Render
	setInt("render.max_text_length", &c.Render.MaxTextLength)

	// Logging
	setString("logging.level", &c.Logging.Level)
	setString("logging.format", &c.Logging.Format)

	return nil
}

// applyDefaults sets default values for unset config options.
func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 5 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.RequestTimeout == 0 {
		// Slack expects a reply to a slash command within 3 seconds
		c.Server.RequestTimeout = 3 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}

	// App defaults
	if c.App.Name == "" {
		c.App.Name = "slack-tableflip"
	}
	if c.App.FullName == "" {
		c.App.FullName = "Slack Tableflip"
	}
	if c.App.Version == "" {
		c.App.Version = "dev"
	}
	if c.App.BaseURL == "" {
		c.App.BaseURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}

	// Render defaults
	if c.Render.MaxTextLength == 0 {
		c.Render.MaxTextLength = 4000
	}

	// Delivery defaults
	if c.Delivery.Timeout == 0 {
		c.Delivery.Timeout = 2 * time.Second
	}
	if c.Delivery.MaxAttempts == 0 {
		c.Delivery.MaxAttempts = 3
	}
	if c.Delivery.InitialBackoff == 0 {
		c.Delivery.InitialBackoff = 100 * time.Millisecond
	}
	if c.Delivery.MaxBackoff == 0 {
		c.Delivery.MaxBackoff = 1 * time.Second
	}
	if c.Delivery.BreakerThreshold == 0 {
		c.Delivery.BreakerThreshold = 5
	}
	if c.Delivery.BreakerTimeout == 0 {
		c.Delivery.BreakerTimeout = 30 * time.Second
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	// Storage defaults
	if c.Storage.Type == "" {
		c.Storage.Type = "memory"
	}
	if c.Storage.SQLite.Path == "" {
		c.Storage.SQLite.Path = "./data/slack-tableflip.db"
	}

	// MySQL defaults
	if c.Storage.MySQL.Pool.MaxOpenConns == 0 {
		c.Storage.MySQL.Pool.MaxOpenConns = 25
	}
	if c.Storage.MySQL.Pool.MaxIdleConns == 0 {
		c.Storage.MySQL.Pool.MaxIdleConns = 5
	}
	if c.Storage.MySQL.Pool.ConnMaxLifetime == 0 {
		c.Storage.MySQL.Pool.ConnMaxLifetime = 3 * time.Minute
	}
	if c.Storage.MySQL.Pool.ConnMaxIdleTime == 0 {
		c.Storage.MySQL.Pool.ConnMaxIdleTime = 1 * time.Minute
	}
	if c.Storage.MySQL.Timeout == 0 {
		c.Storage.MySQL.Timeout = 5 * time.Second
	}
	if !c.Storage.MySQL.ParseTime {
		c.Storage.MySQL.ParseTime = true
	}
	if c.Storage.MySQL.Charset == "" {
		c.Storage.MySQL.Charset = "utf8mb4"
	}
	if c.Storage.MySQL.Primary.Port == 0 {
		c.Storage.MySQL.Primary.Port = 3306
	}
	if c.Storage.MySQL.Replica.Port == 0 {
		c.Storage.MySQL.Replica.Port = 3306
	}
}

// IsSocketModeEnabled returns true if slash commands arrive over Socket Mode.
func (c *Config) IsSocketModeEnabled() bool {
	return c.Slack.SocketMode.Enabled
}
