package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ADMINAPI_"

const (
	defaultBaseURL   = "http://localhost:8080/web"
	defaultTimeout   = 600 * time.Second
	defaultLoginPath = "/login"
	defaultLogLevel  = "info"
	appDir           = "adminapi"
)

// Config captures everything adminctl needs to reach the admin API.
type Config struct {
	BaseURL     string        `yaml:"base_url" validate:"required,url"`
	Timeout     time.Duration `yaml:"timeout" validate:"gte=0"`
	UserAgent   string        `yaml:"user_agent"`
	RPS         int           `yaml:"rps" validate:"gte=0"`
	Burst       int           `yaml:"burst" validate:"required_with=RPS,gte=0"`
	SessionFile string        `yaml:"session_file" validate:"required"`
	LoginPath   string        `yaml:"login_path" validate:"required,startswith=/"`
	LogLevel    string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFile     string        `yaml:"log_file"`
	LogMaxSize  int           `yaml:"log_max_size_mb" validate:"gte=0"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		BaseURL:     defaultBaseURL,
		Timeout:     defaultTimeout,
		SessionFile: filepath.Join(userDir(), "session.json"),
		LoginPath:   defaultLoginPath,
		LogLevel:    defaultLogLevel,
		LogMaxSize:  10,
	}
}

// DefaultPath is where Load looks when no config file is named.
func DefaultPath() string {
	return filepath.Join(userDir(), "config.yaml")
}

// Load builds a Config from path and envFile. An empty path means
// [DefaultPath], which may be absent; a named file must exist. An absent
// envFile is skipped.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultPath()
	}

	if err := cfg.readFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	dotenv := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			dotenv = m
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("read env file: %w", err)
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
		if v, ok := dotenv[EnvPrefix+key]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
		return "", false
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}

	cfg.SessionFile = expandHome(cfg.SessionFile)
	cfg.LogFile = expandHome(cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) readFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"BASE_URL":     &c.BaseURL,
		"USER_AGENT":   &c.UserAgent,
		"SESSION_FILE": &c.SessionFile,
		"LOGIN_PATH":   &c.LoginPath,
		"LOG_LEVEL":    &c.LogLevel,
		"LOG_FILE":     &c.LogFile,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"RPS":             &c.RPS,
		"BURST":           &c.Burst,
		"LOG_MAX_SIZE_MB": &c.LogMaxSize,
	}
	for key, dst := range ints {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
	}

	if v, ok := lookup("TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		c.Timeout = d
	}

	return nil
}

// Validate checks the settings against their tags.
func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// Level returns LogLevel as a slog level.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}

	return l
}

func userDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + appDir
	}

	return filepath.Join(dir, appDir)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
