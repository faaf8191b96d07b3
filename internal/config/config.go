// Package config loads service configuration in layers: built-in defaults,
// an optional YAML file named by CONFIG_FILE, then environment variables.
// A .env file in the working directory is loaded into the environment first.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	AI     AIConfig     `yaml:"ai"`
	Blob   BlobConfig   `yaml:"blob"`
	Admin  AdminConfig  `yaml:"admin"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	// AllowedOrigins is a comma-separated CORS allowlist.
	AllowedOrigins string `yaml:"allowed_origins"`
	JWTSecret      string `yaml:"jwt_secret"`
}

type StoreConfig struct {
	// Driver is one of file, postgres, memory.
	Driver      string `yaml:"driver"`
	DataFile    string `yaml:"data_file"`
	DraftDir    string `yaml:"draft_dir"`
	DatabaseURL string `yaml:"database_url"`
}

type AIConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type BlobConfig struct {
	SupabaseURL    string `yaml:"supabase_url"`
	ServiceRoleKey string `yaml:"service_role_key"`
	Bucket         string `yaml:"bucket"`
}

// AdminConfig names the account created on startup when it does not exist.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Store: StoreConfig{
			Driver:   DriverFile,
			DataFile: "data/quotes.json",
			DraftDir: "data/drafts",
		},
		AI: AIConfig{
			Model:   "gpt-4o-mini",
			Timeout: 60 * time.Second,
		},
		Blob: BlobConfig{Bucket: "logos"},
		Log:  LogConfig{Level: "info"},
	}
}

// Load reads .env, CONFIG_FILE and the environment, then validates.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MergeFile overlays the keys present in a YAML file onto c.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides c with every non-empty variable that getenv reports.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	str(&c.Server.Port, "SERVER_PORT")
	str(&c.Server.AllowedOrigins, "ALLOWED_ORIGINS")
	str(&c.Server.JWTSecret, "JWT_SECRET")
	str(&c.Store.Driver, "STORE_DRIVER")
	str(&c.Store.DataFile, "DATA_FILE")
	str(&c.Store.DraftDir, "DRAFT_DIR")
	str(&c.Store.DatabaseURL, "DATABASE_URL")
	str(&c.AI.APIKey, "OPENAI_API_KEY")
	str(&c.AI.Model, "OPENAI_MODEL")
	str(&c.AI.BaseURL, "OPENAI_BASE_URL")
	str(&c.Blob.SupabaseURL, "SUPABASE_URL")
	str(&c.Blob.ServiceRoleKey, "SUPABASE_SERVICE_ROLE_KEY")
	str(&c.Blob.Bucket, "STORAGE_BUCKET")
	str(&c.Admin.Username, "ADMIN_USERNAME")
	str(&c.Admin.Password, "ADMIN_PASSWORD")
	str(&c.Log.Level, "LOG_LEVEL")

	if v := getenv("AI_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("AI_TIMEOUT: %w", err)
		}
		c.AI.Timeout = d
	}
	if v := getenv("LOG_PRETTY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_PRETTY: %w", err)
		}
		c.Log.Pretty = b
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	switch c.Store.Driver {
	case DriverFile:
		if c.Store.DataFile == "" {
			return fmt.Errorf("store.data_file is required for the file driver")
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("store.database_url is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("store.driver must be one of file, postgres, memory, got %q", c.Store.Driver)
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive")
	}
	return nil
}

// Origins splits AllowedOrigins into a trimmed list.
func (s ServerConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(s.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
