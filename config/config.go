package config

import (
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	AI      AIConfig      `yaml:"ai"`
	Chat    ChatConfig    `yaml:"chat"`
	Storage StorageConfig `yaml:"storage"`
}

type ServerConfig struct {
	Port         int    `yaml:"port"`
	Host         string `yaml:"host"`
	LogLevel     string `yaml:"log_level"`
	ClientOrigin string `yaml:"client_origin"`
}

type AuthConfig struct {
	JWTSecret         string `yaml:"jwt_secret"`
	JWTExpiresHours   int    `yaml:"jwt_expires_hours"`
	AdminEmail        string `yaml:"admin_email"`
	AdminPassword     string `yaml:"admin_password"`
	GoogleClientID    string `yaml:"google_client_id"`
	RequireGoogleAuth bool   `yaml:"require_google_auth"`
	GmailOnly         bool   `yaml:"gmail_only"`
}

type AIConfig struct {
	Provider string `yaml:"provider"` // openai or openrouter
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  int    `yaml:"timeout"`
	SiteURL  string `yaml:"site_url"`
	AppName  string `yaml:"app_name"`
}

type ChatConfig struct {
	DailyLimit    int `yaml:"daily_limit"`
	ContextWindow int `yaml:"context_window"`
	HistoryLimit  int `yaml:"history_limit"`
}

type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

var (
	cfg  *Config
	once sync.Once
)

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         5000,
			Host:         "0.0.0.0",
			LogLevel:     "info",
			ClientOrigin: "http://localhost:5173",
		},
		Auth: AuthConfig{
			JWTSecret:       "dev_secret_change_me",
			JWTExpiresHours: 168,
		},
		AI: AIConfig{
			Provider: "openai",
			Timeout:  60,
		},
		Chat: ChatConfig{
			DailyLimit:    40,
			ContextWindow: 12,
			HistoryLimit:  200,
		},
		Storage: StorageConfig{
			DBPath: "./data/companion.db",
		},
	}
}

// Load loads configuration from file, then applies environment overrides
// so secrets never need to live in the config file.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		cfg = DefaultConfig()

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			if os.IsNotExist(readErr) {
				// Create default config file
				err = Save(path, cfg)
				applyEnv(cfg)
				return
			}
			err = readErr
			return
		}

		if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
			err = unmarshalErr
			return
		}

		applyEnv(cfg)
	})

	return cfg, err
}

func applyEnv(c *Config) {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("ADMIN_EMAIL"); v != "" {
		c.Auth.AdminEmail = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		c.Auth.AdminPassword = v
	}
	if v := os.Getenv("AI_API_KEY"); v != "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv("AI_PROVIDER"); v != "" {
		c.AI.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("AI_MODEL"); v != "" {
		c.AI.Model = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		c.Auth.GoogleClientID = v
	}

	// Credential comparisons expect the canonical form, wherever the
	// value came from
	c.Auth.AdminEmail = strings.ToLower(strings.TrimSpace(c.Auth.AdminEmail))
}

// Save saves configuration to file
func Save(path string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return cfg
}
