package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/metastore"
	ConfigFileName    = "metastore.yml"
)

// Attribute sources
const (
	SourceDefault     = "default"
	SourceFile        = "file"
	SourceEnvironment = "environment"
)

// ValidLogFormats is the list of supported log formats
var ValidLogFormats = []string{"text", "json"}

// MetastoreConfig holds all metastore configuration settings
type MetastoreConfig struct {
	// DatabaseURL is the metadata database (postgres:// or sqlite://)
	DatabaseURL string `yaml:"database_url" json:"database_url"`

	// BindAddress and Port are where the HTTP server listens
	BindAddress string `yaml:"bind_address" json:"bind_address"`
	Port        int    `yaml:"port" json:"port"`

	// LogLevel is a logrus level name
	LogLevel string `yaml:"log_level" json:"log_level"`

	// LogFormat is "text" or "json"
	LogFormat string `yaml:"log_format" json:"log_format"`

	// DefaultProject is used when a request names no project
	DefaultProject string `yaml:"default_project" json:"default_project"`

	// Kinds restricts the taggable kinds served; empty means all
	Kinds []string `yaml:"kinds" json:"kinds"`

	// TrustedProxies is a list of CIDR ranges whose X-Forwarded-For is honoured
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	// AuditEnabled turns audit logging on or off
	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	// AuditDatabaseURL is where audit messages are persisted; empty disables persistence
	AuditDatabaseURL string `yaml:"audit_database_url" json:"audit_database_url"`

	// HTTPReadTimeout and HTTPWriteTimeout are in seconds
	HTTPReadTimeout  int `yaml:"http_read_timeout" json:"http_read_timeout"`
	HTTPWriteTimeout int `yaml:"http_write_timeout" json:"http_write_timeout"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// fileConfig mirrors MetastoreConfig with pointers so that explicit zero
// values in the file are distinguishable from absent keys
type fileConfig struct {
	DatabaseURL      *string  `yaml:"database_url"`
	BindAddress      *string  `yaml:"bind_address"`
	Port             *int     `yaml:"port"`
	LogLevel         *string  `yaml:"log_level"`
	LogFormat        *string  `yaml:"log_format"`
	DefaultProject   *string  `yaml:"default_project"`
	Kinds            []string `yaml:"kinds"`
	TrustedProxies   []string `yaml:"trusted_proxies"`
	AuditEnabled     *bool    `yaml:"audit_enabled"`
	AuditDatabaseURL *string  `yaml:"audit_database_url"`
	HTTPReadTimeout  *int     `yaml:"http_read_timeout"`
	HTTPWriteTimeout *int     `yaml:"http_write_timeout"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *MetastoreConfig
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *MetastoreConfig {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			logrus.WithError(err).Warn("failed to load configuration, using defaults")
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Set replaces the global configuration
func Set(cfg *MetastoreConfig) {
	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
}

// Reload reloads the configuration from file and environment
func Reload() (*MetastoreConfig, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	Set(cfg)
	return cfg, nil
}

// newDefault returns a config with default values
func newDefault() *MetastoreConfig {
	return &MetastoreConfig{
		BindAddress:      "127.0.0.1",
		Port:             8080,
		LogLevel:         "info",
		LogFormat:        "text",
		DefaultProject:   "default",
		Kinds:            []string{},
		TrustedProxies:   []string{},
		AuditEnabled:     true,
		HTTPReadTimeout:  15,
		HTTPWriteTimeout: 15,
		sources:          make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*MetastoreConfig, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = SourceDefault
	}

	configPath := os.Getenv("METASTORE_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&file)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}
	return config, nil
}

func attributeNames() []string {
	return []string{
		"database_url", "bind_address", "port", "log_level", "log_format",
		"default_project", "kinds", "trusted_proxies", "audit_enabled",
		"audit_database_url", "http_read_timeout", "http_write_timeout",
	}
}

func setString(dst *string, src *string, sources map[string]string, name string) {
	if src != nil {
		*dst = *src
		sources[name] = SourceFile
	}
}

func setInt(dst *int, src *int, sources map[string]string, name string) {
	if src != nil {
		*dst = *src
		sources[name] = SourceFile
	}
}

func (c *MetastoreConfig) applyFileConfig(file *fileConfig) {
	setString(&c.DatabaseURL, file.DatabaseURL, c.sources, "database_url")
	setString(&c.BindAddress, file.BindAddress, c.sources, "bind_address")
	setInt(&c.Port, file.Port, c.sources, "port")
	setString(&c.LogLevel, file.LogLevel, c.sources, "log_level")
	setString(&c.LogFormat, file.LogFormat, c.sources, "log_format")
	setString(&c.DefaultProject, file.DefaultProject, c.sources, "default_project")
	setString(&c.AuditDatabaseURL, file.AuditDatabaseURL, c.sources, "audit_database_url")
	setInt(&c.HTTPReadTimeout, file.HTTPReadTimeout, c.sources, "http_read_timeout")
	setInt(&c.HTTPWriteTimeout, file.HTTPWriteTimeout, c.sources, "http_write_timeout")
	if len(file.Kinds) > 0 {
		c.Kinds = file.Kinds
		c.sources["kinds"] = SourceFile
	}
	if len(file.TrustedProxies) > 0 {
		c.TrustedProxies = file.TrustedProxies
		c.sources["trusted_proxies"] = SourceFile
	}
	if file.AuditEnabled != nil {
		c.AuditEnabled = *file.AuditEnabled
		c.sources["audit_enabled"] = SourceFile
	}
}

func (c *MetastoreConfig) applyEnvConfig() error {
	stringVars := []struct {
		env  []string
		dst  *string
		name string
	}{
		{[]string{"METASTORE_DATABASE_URL", "DATABASE_URL"}, &c.DatabaseURL, "database_url"},
		{[]string{"METASTORE_BIND_ADDRESS", "BIND_ADDRESS"}, &c.BindAddress, "bind_address"},
		{[]string{"METASTORE_LOG_LEVEL"}, &c.LogLevel, "log_level"},
		{[]string{"METASTORE_LOG_FORMAT"}, &c.LogFormat, "log_format"},
		{[]string{"METASTORE_DEFAULT_PROJECT"}, &c.DefaultProject, "default_project"},
		{[]string{"METASTORE_AUDIT_DATABASE_URL"}, &c.AuditDatabaseURL, "audit_database_url"},
	}
	for _, s := range stringVars {
		if val, ok := lookupEnv(s.env...); ok {
			*s.dst = val
			c.sources[s.name] = SourceEnvironment
		}
	}

	intVars := []struct {
		env  []string
		dst  *int
		name string
	}{
		{[]string{"METASTORE_PORT", "PORT"}, &c.Port, "port"},
		{[]string{"METASTORE_HTTP_READ_TIMEOUT"}, &c.HTTPReadTimeout, "http_read_timeout"},
		{[]string{"METASTORE_HTTP_WRITE_TIMEOUT"}, &c.HTTPWriteTimeout, "http_write_timeout"},
	}
	for _, i := range intVars {
		if val, ok := lookupEnv(i.env...); ok {
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid %s value %q: %w", i.name, val, err)
			}
			*i.dst = n
			c.sources[i.name] = SourceEnvironment
		}
	}

	if val, ok := lookupEnv("METASTORE_KINDS"); ok {
		c.Kinds = splitAndTrim(val)
		c.sources["kinds"] = SourceEnvironment
	}
	if val, ok := lookupEnv("METASTORE_TRUSTED_PROXIES"); ok {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = SourceEnvironment
	}
	if val, ok := lookupEnv("METASTORE_AUDIT_ENABLED"); ok {
		c.AuditEnabled = val != "false" && val != "0" && val != "no"
		c.sources["audit_enabled"] = SourceEnvironment
	}
	return nil
}

// lookupEnv returns the first non-empty variable of names
func lookupEnv(names ...string) (string, bool) {
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			return val, true
		}
	}
	return "", false
}

// ConfigFilePath returns the path to the config file
func (c *MetastoreConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *MetastoreConfig) Source(name string) string {
	if c.sources == nil {
		return SourceDefault
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return SourceDefault
}

// ListenAddress returns host:port for the HTTP server
func (c *MetastoreConfig) ListenAddress() string {
	return net.JoinHostPort(c.BindAddress, strconv.Itoa(c.Port))
}

// ReadTimeout returns the HTTP read timeout as a duration
func (c *MetastoreConfig) ReadTimeout() time.Duration {
	return time.Duration(c.HTTPReadTimeout) * time.Second
}

// WriteTimeout returns the HTTP write timeout as a duration
func (c *MetastoreConfig) WriteTimeout() time.Duration {
	return time.Duration(c.HTTPWriteTimeout) * time.Second
}

// IsTrustedProxy checks if an IP is from a trusted proxy
func (c *MetastoreConfig) IsTrustedProxy(ip string) bool {
	if len(c.TrustedProxies) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			if net.ParseIP(cidr) != nil && cidr == ip {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate validates the configuration. knownKinds, when given, are the
// kind names Kinds may select from.
func (c *MetastoreConfig) Validate(knownKinds ...string) error {
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	if !contains(ValidLogFormats, c.LogFormat) {
		return fmt.Errorf("invalid log_format: %s", c.LogFormat)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.DefaultProject == "" {
		return fmt.Errorf("default_project must not be empty")
	}
	if c.HTTPReadTimeout < 0 || c.HTTPWriteTimeout < 0 {
		return fmt.Errorf("http timeouts must not be negative")
	}

	if len(knownKinds) > 0 {
		for _, kind := range c.Kinds {
			if !contains(knownKinds, kind) {
				return fmt.Errorf("invalid kind: %s", kind)
			}
		}
	}
	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *MetastoreConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "database_url", Value: RedactURL(c.DatabaseURL), Source: c.Source("database_url")},
		{Name: "bind_address", Value: c.BindAddress, Source: c.Source("bind_address")},
		{Name: "port", Value: strconv.Itoa(c.Port), Source: c.Source("port")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "log_format", Value: c.LogFormat, Source: c.Source("log_format")},
		{Name: "default_project", Value: c.DefaultProject, Source: c.Source("default_project")},
		{Name: "kinds", Value: strings.Join(c.Kinds, ","), Source: c.Source("kinds")},
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
		{Name: "audit_database_url", Value: RedactURL(c.AuditDatabaseURL), Source: c.Source("audit_database_url")},
		{Name: "http_read_timeout", Value: strconv.Itoa(c.HTTPReadTimeout), Source: c.Source("http_read_timeout")},
		{Name: "http_write_timeout", Value: strconv.Itoa(c.HTTPWriteTimeout), Source: c.Source("http_write_timeout")},
	}
}

// FormatText returns a text representation of the configuration
func (c *MetastoreConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *MetastoreConfig) FormatJSON() (string, error) {
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

// RedactURL hides the password of a URL with credentials
func RedactURL(u string) string {
	at := strings.LastIndex(u, "@")
	scheme := strings.Index(u, "://")
	if at < 0 || scheme < 0 || scheme > at {
		return u
	}
	creds := u[scheme+3 : at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		return u[:scheme+3] + creds[:colon] + ":***" + u[at:]
	}
	return u
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
