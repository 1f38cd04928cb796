package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/swapdex/internal/domain"
)

// Config holds the swapdex configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Engine  EngineConfig  `yaml:"engine"`
	Lock    LockConfig    `yaml:"lock"`
	Events  EventsConfig  `yaml:"events"`
	Source  SourceConfig  `yaml:"source"`
	Indexes []IndexConfig `yaml:"indexes"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// EngineConfig holds search engine connection settings.
type EngineConfig struct {
	URLs                []string `yaml:"urls"`
	Username            string   `yaml:"username"`
	Password            string   `yaml:"password"`
	MaxWriteConnections int      `yaml:"max_write_connections"` // bulk cap per swap; 0 = one per partition
	MaxConnections      int      `yaml:"max_connections"`       // read pool size (default: 16)
	RequestTimeoutSec   int      `yaml:"request_timeout_sec"`
	ReadinessTimeoutSec int      `yaml:"readiness_timeout_sec"`
}

// RequestTimeout returns the per-request engine timeout.
func (e EngineConfig) RequestTimeout() time.Duration {
	return time.Duration(e.RequestTimeoutSec) * time.Second
}

// LockConfig selects how hot swaps on one alias are serialized.
type LockConfig struct {
	Driver   string   `yaml:"driver"` // local, redis (default: local)
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	TTLSec   int      `yaml:"ttl_sec"`
}

// TTL returns the distributed lock lease.
func (l LockConfig) TTL() time.Duration {
	return time.Duration(l.TTLSec) * time.Second
}

// EventsConfig holds swap notification settings. An empty NATSURL disables
// publishing.
type EventsConfig struct {
	NATSURL       string `yaml:"nats_url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// SourceConfig holds the bulk source connection.
type SourceConfig struct {
	MongoURI   string `yaml:"mongo_uri"`
	Database   string `yaml:"database"`
	Partitions int    `yaml:"partitions"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Enabled reports whether a source store is configured.
func (s SourceConfig) Enabled() bool {
	return s.MongoURI != ""
}

// IndexConfig describes one managed alias.
type IndexConfig struct {
	Alias      string          `yaml:"alias"`
	DocType    string          `yaml:"doc_type"`
	Collection string          `yaml:"collection"`
	IDField    string          `yaml:"id_field"`
	Fields     []string        `yaml:"fields"`
	Mappings   domain.Mappings `yaml:"mappings"`
}

// Index returns the configuration for alias.
func (c *Config) Index(alias string) (IndexConfig, bool) {
	for _, ic := range c.Indexes {
		if ic.Alias == alias {
			return ic, true
		}
	}
	return IndexConfig{}, false
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.Engine.URLs) == 0 {
		c.Engine.URLs = []string{"http://localhost:9200"}
	}
	if c.Engine.MaxWriteConnections < 0 {
		c.Engine.MaxWriteConnections = 0
	}
	if c.Engine.MaxConnections <= 0 {
		c.Engine.MaxConnections = 16
	}
	if c.Engine.RequestTimeoutSec <= 0 {
		c.Engine.RequestTimeoutSec = 30
	}
	if c.Engine.ReadinessTimeoutSec <= 0 {
		c.Engine.ReadinessTimeoutSec = 30
	}
	if c.Lock.Driver == "" {
		c.Lock.Driver = "local"
	}
	if c.Lock.TTLSec <= 0 {
		c.Lock.TTLSec = 600
	}
	if c.Events.SubjectPrefix == "" {
		c.Events.SubjectPrefix = "swapdex"
	}
	if c.Source.Partitions <= 0 {
		c.Source.Partitions = 4
	}
	if c.Source.TimeoutSec <= 0 {
		c.Source.TimeoutSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Lock.Driver {
	case "local":
	case "redis":
		if len(c.Lock.Addrs) == 0 {
			return fmt.Errorf("lock.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("lock.driver must be \"local\" or \"redis\", got %q", c.Lock.Driver)
	}
	if c.Source.Enabled() && c.Source.Database == "" {
		return fmt.Errorf("source.database is required with source.mongo_uri")
	}
	seen := make(map[string]struct{}, len(c.Indexes))
	for i, ic := range c.Indexes {
		if ic.Alias == "" {
			return fmt.Errorf("indexes[%d].alias is required", i)
		}
		if ic.Alias != strings.ToLower(ic.Alias) {
			return fmt.Errorf("indexes[%d].alias %q must be lowercase", i, ic.Alias)
		}
		if _, dup := seen[ic.Alias]; dup {
			return fmt.Errorf("indexes[%d].alias %q is declared twice", i, ic.Alias)
		}
		seen[ic.Alias] = struct{}{}
		if ic.DocType == "" {
			return fmt.Errorf("indexes.%s.doc_type is required", ic.Alias)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
