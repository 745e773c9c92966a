package txui

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm/txui/internal/logging"
	"github.com/pthm/txui/lib/backend"
	"github.com/pthm/txui/lib/backend/bolt"
	"github.com/pthm/txui/lib/backend/memory"
	"github.com/pthm/txui/lib/backend/redis"
)

// Backend names accepted in StoreConfig.Backend.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBolt   = "bolt"
)

// Config is the file-based configuration of an App.
type Config struct {
	Listen         string      `yaml:"listen"`
	SecretKey      string      `yaml:"secret_key"`
	StaticPrefix   string      `yaml:"static_prefix"`
	StaticDir      string      `yaml:"static_dir,omitempty"`
	PerformanceLog bool        `yaml:"performance_log"`
	LogLevel       string      `yaml:"log_level"`
	Store          StoreConfig `yaml:"store"`
}

// StoreConfig selects and configures the transaction backend.
type StoreConfig struct {
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
	// Encrypt stores transactions encrypted instead of signed. Requires
	// a secret key.
	Encrypt bool        `yaml:"encrypt"`
	Redis   RedisConfig `yaml:"redis"`
	Bolt    BoltConfig  `yaml:"bolt"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// BoltConfig configures the bolt backend.
type BoltConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns the configuration used for absent keys.
func DefaultConfig() *Config {
	return &Config{
		Listen:       ":8080",
		StaticPrefix: "/static",
		LogLevel:     "info",
		Store: StoreConfig{
			Backend: BackendMemory,
			TTL:     30 * time.Minute,
			Redis: RedisConfig{
				Address: "localhost:6379",
				Prefix:  "txui:tx:",
			},
			Bolt: BoltConfig{
				Path: "txui.db",
			},
		},
	}
}

// LoadConfig reads a YAML file over the defaults. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendRedis, BackendBolt:
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	if c.Store.TTL < 0 {
		return fmt.Errorf("config: negative store ttl %s", c.Store.TTL)
	}
	if c.Store.Encrypt && c.SecretKey == "" {
		return errors.New("config: store.encrypt requires secret_key")
	}
	if c.Store.Backend == BackendBolt && c.Store.Bolt.Path == "" {
		return errors.New("config: store.bolt.path is required")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// YAML returns the configuration as a YAML document.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// OpenBackend creates the configured backend.
func (c *Config) OpenBackend() (backend.Backend, error) {
	switch c.Store.Backend {
	case BackendMemory:
		return memory.New(), nil
	case BackendRedis:
		r := c.Store.Redis
		return redis.New(r.Address, r.Password, r.DB, redis.WithPrefix(r.Prefix)), nil
	case BackendBolt:
		return bolt.Open(c.Store.Bolt.Path)
	default:
		return nil, fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
}

// OpenStore creates the configured backend and wraps it in a Store with the
// configured TTL and, when a secret key is set, its encoder. Closing the
// store's backend is up to the caller.
func (c *Config) OpenStore() (*Store, error) {
	b, err := c.OpenBackend()
	if err != nil {
		return nil, err
	}

	opts := []StoreOption{WithTTL(c.Store.TTL)}
	if c.SecretKey != "" {
		enc, err := NewEncoder([]byte(c.SecretKey))
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("config: %w", err)
		}
		opts = append(opts, WithEncoder(enc, c.Store.Encrypt))
	}
	return NewStore(b, opts...), nil
}

// NewAppFromConfig builds an App whose store, logger and asset settings
// come from cfg. Options are applied after the configured ones.
func NewAppFromConfig(cfg *Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)

	store, err := cfg.OpenStore()
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithStore(store),
		WithLogger(logging.New(level)),
		WithStaticPrefix(cfg.StaticPrefix),
		WithPerformanceLog(cfg.PerformanceLog),
	}
	return NewApp(append(base, opts...)...), nil
}
