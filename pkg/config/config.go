package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/doodlesbykumbi/inscricao/pkg/crypt"
)

const (
	DefaultConfigPath = "/etc/inscricao"
	ConfigFileName    = "inscricao.yml"

	DefaultWikiBaseURL  = "https://pt.wikiversity.org"
	DefaultSupportEmail = "wikilovesbahia@wmnobrasil.org"
)

// ValidTraceExporters lists the accepted values of trace_exporter.
var ValidTraceExporters = []string{"", "none", "stdout"}

// Config holds the settings loaded once at process start. It is built by
// Load and then only read.
type Config struct {
	// WikiBaseURL is the MediaWiki instance users authenticate against
	WikiBaseURL string `yaml:"wiki_base_url" json:"wiki_base_url"`

	// ConsumerKey and ConsumerSecret identify this tool to the wiki's OAuth extension
	ConsumerKey    string `yaml:"consumer_key" json:"consumer_key"`
	ConsumerSecret string `yaml:"consumer_secret" json:"-"`

	// DataKey is the base64 256-bit key for encrypted columns and cookies
	DataKey string `yaml:"data_key" json:"-"`

	// DatabaseURL is the default database for every table
	DatabaseURL string `yaml:"database_url" json:"database_url"`

	// ReferenceDatabaseURL overrides DatabaseURL for cities and schools
	ReferenceDatabaseURL string `yaml:"reference_database_url" json:"reference_database_url"`

	// UsersDatabaseURL overrides DatabaseURL for registrations
	UsersDatabaseURL string `yaml:"users_database_url" json:"users_database_url"`

	// SupportEmail is shown to users when a database write fails
	SupportEmail string `yaml:"support_email" json:"support_email"`

	// ReferenceCacheTTL is how long city and school lookups are cached, in seconds
	ReferenceCacheTTL int `yaml:"reference_cache_ttl" json:"reference_cache_ttl"`

	// SessionTTL is the lifetime of the login cookie, in seconds
	SessionTTL int `yaml:"session_ttl" json:"session_ttl"`

	// SecureCookies marks cookies Secure (HTTPS only)
	SecureCookies bool `yaml:"secure_cookies" json:"secure_cookies"`

	// TraceExporter selects where spans go: "", "none" or "stdout"
	TraceExporter string `yaml:"trace_exporter" json:"trace_exporter"`

	// AuditEnabled turns the RFC5424 audit log on or off
	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	// AuditDatabaseURL, when set, also persists audit events
	AuditDatabaseURL string `yaml:"audit_database_url" json:"audit_database_url"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// fileConfig mirrors Config for YAML decoding; pointers distinguish an
// explicit false from an absent key.
type fileConfig struct {
	WikiBaseURL          string `yaml:"wiki_base_url"`
	ConsumerKey          string `yaml:"consumer_key"`
	ConsumerSecret       string `yaml:"consumer_secret"`
	DataKey              string `yaml:"data_key"`
	DatabaseURL          string `yaml:"database_url"`
	ReferenceDatabaseURL string `yaml:"reference_database_url"`
	UsersDatabaseURL     string `yaml:"users_database_url"`
	SupportEmail         string `yaml:"support_email"`
	ReferenceCacheTTL    int    `yaml:"reference_cache_ttl"`
	SessionTTL           int    `yaml:"session_ttl"`
	SecureCookies        *bool  `yaml:"secure_cookies"`
	TraceExporter        string `yaml:"trace_exporter"`
	AuditEnabled         *bool  `yaml:"audit_enabled"`
	AuditDatabaseURL     string `yaml:"audit_database_url"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Default returns a config with default values
func Default() *Config {
	c := &Config{
		WikiBaseURL:       DefaultWikiBaseURL,
		SupportEmail:      DefaultSupportEmail,
		ReferenceCacheTTL: 600,
		SessionTTL:        7 * 24 * 60 * 60,
		SecureCookies:     false,
		AuditEnabled:      true,
		sources:           make(map[string]string),
	}
	for _, name := range attributeNames() {
		c.sources[name] = "default"
	}
	return c
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	configPath := os.Getenv("INSCRICAO_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return LoadFile(filepath.Join(configPath, ConfigFileName))
}

// LoadFile is Load with an explicit config file. A missing file is not an
// error.
func LoadFile(path string) (*Config, error) {
	config := Default()
	config.configFilePath = path

	if data, err := os.ReadFile(path); err == nil {
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		config.applyFileConfig(&file)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"wiki_base_url", "consumer_key", "consumer_secret", "data_key",
		"database_url", "reference_database_url", "users_database_url",
		"support_email", "reference_cache_ttl", "session_ttl",
		"secure_cookies", "trace_exporter", "audit_enabled", "audit_database_url",
	}
}

func (c *Config) setString(name string, dst *string, value, source string) {
	if value == "" {
		return
	}
	*dst = value
	c.sources[name] = source
}

func (c *Config) setInt(name string, dst *int, value int, source string) {
	if value == 0 {
		return
	}
	*dst = value
	c.sources[name] = source
}

func (c *Config) applyFileConfig(file *fileConfig) {
	const src = "file"
	c.setString("wiki_base_url", &c.WikiBaseURL, file.WikiBaseURL, src)
	c.setString("consumer_key", &c.ConsumerKey, file.ConsumerKey, src)
	c.setString("consumer_secret", &c.ConsumerSecret, file.ConsumerSecret, src)
	c.setString("data_key", &c.DataKey, file.DataKey, src)
	c.setString("database_url", &c.DatabaseURL, file.DatabaseURL, src)
	c.setString("reference_database_url", &c.ReferenceDatabaseURL, file.ReferenceDatabaseURL, src)
	c.setString("users_database_url", &c.UsersDatabaseURL, file.UsersDatabaseURL, src)
	c.setString("support_email", &c.SupportEmail, file.SupportEmail, src)
	c.setInt("reference_cache_ttl", &c.ReferenceCacheTTL, file.ReferenceCacheTTL, src)
	c.setInt("session_ttl", &c.SessionTTL, file.SessionTTL, src)
	c.setString("trace_exporter", &c.TraceExporter, file.TraceExporter, src)
	c.setString("audit_database_url", &c.AuditDatabaseURL, file.AuditDatabaseURL, src)
	if file.SecureCookies != nil {
		c.SecureCookies = *file.SecureCookies
		c.sources["secure_cookies"] = src
	}
	if file.AuditEnabled != nil {
		c.AuditEnabled = *file.AuditEnabled
		c.sources["audit_enabled"] = src
	}
}

func (c *Config) applyEnvConfig() {
	const src = "environment"
	c.setString("wiki_base_url", &c.WikiBaseURL, os.Getenv("INSCRICAO_WIKI_BASE_URL"), src)
	c.setString("consumer_key", &c.ConsumerKey, os.Getenv("INSCRICAO_CONSUMER_KEY"), src)
	c.setString("consumer_secret", &c.ConsumerSecret, os.Getenv("INSCRICAO_CONSUMER_SECRET"), src)
	c.setString("data_key", &c.DataKey, os.Getenv("INSCRICAO_DATA_KEY"), src)
	c.setString("database_url", &c.DatabaseURL, os.Getenv("DATABASE_URL"), src)
	c.setString("reference_database_url", &c.ReferenceDatabaseURL, os.Getenv("INSCRICAO_REFERENCE_DATABASE_URL"), src)
	c.setString("users_database_url", &c.UsersDatabaseURL, os.Getenv("INSCRICAO_USERS_DATABASE_URL"), src)
	c.setString("support_email", &c.SupportEmail, os.Getenv("INSCRICAO_SUPPORT_EMAIL"), src)
	c.setString("trace_exporter", &c.TraceExporter, os.Getenv("INSCRICAO_TRACE_EXPORTER"), src)

	if val := os.Getenv("INSCRICAO_REFERENCE_CACHE_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.setInt("reference_cache_ttl", &c.ReferenceCacheTTL, i, src)
		}
	}
	if val := os.Getenv("INSCRICAO_SESSION_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.setInt("session_ttl", &c.SessionTTL, i, src)
		}
	}
	if val := os.Getenv("INSCRICAO_SECURE_COOKIES"); val != "" {
		c.SecureCookies = val == "true" || val == "1"
		c.sources["secure_cookies"] = src
	}
	c.setString("audit_database_url", &c.AuditDatabaseURL, os.Getenv("AUDIT_DATABASE_URL"), src)
	if val := os.Getenv("INSCRICAO_AUDIT_ENABLED"); val != "" {
		c.AuditEnabled = val != "false" && val != "0" && val != "no"
		c.sources["audit_enabled"] = src
	}
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// ReferenceURL is the database holding cities and schools.
func (c *Config) ReferenceURL() string {
	if c.ReferenceDatabaseURL != "" {
		return c.ReferenceDatabaseURL
	}
	return c.DatabaseURL
}

// UsersURL is the database holding registrations.
func (c *Config) UsersURL() string {
	if c.UsersDatabaseURL != "" {
		return c.UsersDatabaseURL
	}
	return c.DatabaseURL
}

// DataKeyBytes decodes DataKey.
func (c *Config) DataKeyBytes() ([]byte, error) {
	if c.DataKey == "" {
		return nil, fmt.Errorf("data_key is required (INSCRICAO_DATA_KEY)")
	}
	return crypt.DecodeDataKey(c.DataKey)
}

// CacheTTL returns the reference cache TTL as a duration
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.ReferenceCacheTTL) * time.Second
}

// SessionLifetime returns the session TTL as a duration
func (c *Config) SessionLifetime() time.Duration {
	return time.Duration(c.SessionTTL) * time.Second
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if _, err := c.DataKeyBytes(); err != nil {
		return err
	}
	if c.ReferenceURL() == "" || c.UsersURL() == "" {
		return fmt.Errorf("database_url is required (DATABASE_URL)")
	}
	if c.ConsumerKey == "" || c.ConsumerSecret == "" {
		return fmt.Errorf("consumer_key and consumer_secret are required")
	}
	if u, err := url.Parse(c.WikiBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid wiki_base_url: %q", c.WikiBaseURL)
	}
	if c.ReferenceCacheTTL < 0 || c.SessionTTL <= 0 {
		return fmt.Errorf("reference_cache_ttl must be >= 0 and session_ttl > 0")
	}

	valid := false
	for _, e := range ValidTraceExporters {
		if c.TraceExporter == e {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid trace_exporter: %s", c.TraceExporter)
	}

	return nil
}

func mask(value string) string {
	if value == "" {
		return ""
	}
	return "********"
}

// Attributes returns all configuration attributes with their values and
// sources. Secrets are masked.
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "wiki_base_url", Value: c.WikiBaseURL, Source: c.Source("wiki_base_url")},
		{Name: "consumer_key", Value: c.ConsumerKey, Source: c.Source("consumer_key")},
		{Name: "consumer_secret", Value: mask(c.ConsumerSecret), Source: c.Source("consumer_secret")},
		{Name: "data_key", Value: mask(c.DataKey), Source: c.Source("data_key")},
		{Name: "database_url", Value: redactURL(c.DatabaseURL), Source: c.Source("database_url")},
		{Name: "reference_database_url", Value: redactURL(c.ReferenceDatabaseURL), Source: c.Source("reference_database_url")},
		{Name: "users_database_url", Value: redactURL(c.UsersDatabaseURL), Source: c.Source("users_database_url")},
		{Name: "support_email", Value: c.SupportEmail, Source: c.Source("support_email")},
		{Name: "reference_cache_ttl", Value: strconv.Itoa(c.ReferenceCacheTTL), Source: c.Source("reference_cache_ttl")},
		{Name: "session_ttl", Value: strconv.Itoa(c.SessionTTL), Source: c.Source("session_ttl")},
		{Name: "secure_cookies", Value: strconv.FormatBool(c.SecureCookies), Source: c.Source("secure_cookies")},
		{Name: "trace_exporter", Value: c.TraceExporter, Source: c.Source("trace_exporter")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
		{Name: "audit_database_url", Value: redactURL(c.AuditDatabaseURL), Source: c.Source("audit_database_url")},
	}
}

// redactURL hides the password of a database URL.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-30s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-30s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-30s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
