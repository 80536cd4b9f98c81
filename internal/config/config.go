package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Dynamo    DynamoConfig    `yaml:"dynamo"`
	Credit    CreditConfig    `yaml:"credit"`
	Identity  IdentityConfig  `yaml:"identity"`
	Email     EmailConfig     `yaml:"email"`
	Events    EventsConfig    `yaml:"events"`
	Search    SearchConfig    `yaml:"search"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DynamoConfig contains DynamoDB connection settings
type DynamoConfig struct {
	Region    string `yaml:"region"`
	TableName string `yaml:"table_name"`
	Endpoint  string `yaml:"endpoint"` // Optional, for dynamodb-local
	InMemory  bool   `yaml:"in_memory"`
}

// CreditConfig contains credit ledger settings
type CreditConfig struct {
	MaxBalance      int `yaml:"max_balance"`
	HistoryLimit    int `yaml:"history_limit"`
	ConflictRetries int `yaml:"conflict_retries"`
}

// IdentityConfig contains token verification settings
type IdentityConfig struct {
	Provider            string `yaml:"provider"` // "firebase" or "jwt"
	FirebaseProjectID   string `yaml:"firebase_project_id"`
	FirebaseCredentials string `yaml:"firebase_credentials_file"`
	JWTSecret           string `yaml:"jwt_secret"`
	JWTExpiryMinutes    int    `yaml:"jwt_expiry_minutes"`
}

// EmailConfig contains SendGrid settings
type EmailConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
}

// EventsConfig contains SNS publishing settings
type EventsConfig struct {
	TopicARN string `yaml:"topic_arn"` // Empty disables publishing
}

// SearchConfig contains the search index settings
type SearchConfig struct {
	Endpoint string `yaml:"endpoint"` // Empty disables search
	Index    string `yaml:"index"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ReconcileCounters string `yaml:"reconcile_counters"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Dynamo
	if val := os.Getenv("AWS_REGION"); val != "" {
		c.Dynamo.Region = val
	}
	if val := os.Getenv("DYNAMO_TABLE"); val != "" {
		c.Dynamo.TableName = val
	}
	if val := os.Getenv("DYNAMO_ENDPOINT"); val != "" {
		c.Dynamo.Endpoint = val
	}

	// Identity
	if val := os.Getenv("FIREBASE_PROJECT_ID"); val != "" {
		c.Identity.FirebaseProjectID = val
	}
	if val := os.Getenv("FIREBASE_CREDENTIALS_FILE"); val != "" {
		c.Identity.FirebaseCredentials = val
	}
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.Identity.JWTSecret = val
	}

	// Email
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.SendGridAPIKey = val
	}

	// Events
	if val := os.Getenv("SNS_TOPIC_ARN"); val != "" {
		c.Events.TopicARN = val
	}

	// Search
	if val := os.Getenv("SEARCH_ENDPOINT"); val != "" {
		c.Search.Endpoint = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Dynamo validation
	if !c.Dynamo.InMemory {
		if c.Dynamo.Region == "" {
			return fmt.Errorf("dynamo region is required")
		}
		if c.Dynamo.TableName == "" {
			return fmt.Errorf("dynamo table name is required")
		}
	}

	// Identity validation
	switch c.Identity.Provider {
	case "firebase":
		if c.Identity.FirebaseProjectID == "" {
			return fmt.Errorf("firebase project id is required")
		}
	case "jwt":
		if c.Identity.JWTSecret == "" {
			return fmt.Errorf("JWT secret is required")
		}
		if len(c.Identity.JWTSecret) < 32 {
			return fmt.Errorf("JWT secret must be at least 32 characters")
		}
	default:
		return fmt.Errorf("unknown identity provider: %q", c.Identity.Provider)
	}
	if c.Identity.JWTExpiryMinutes == 0 {
		c.Identity.JWTExpiryMinutes = 60
	}

	// Credit defaults
	if c.Credit.MaxBalance == 0 {
		c.Credit.MaxBalance = 100_000_000
	}
	if c.Credit.HistoryLimit == 0 {
		c.Credit.HistoryLimit = 50
	}
	if c.Credit.ConflictRetries == 0 {
		c.Credit.ConflictRetries = 3
	}

	// Scheduler defaults
	if c.Scheduler.ReconcileCounters == "" {
		c.Scheduler.ReconcileCounters = "0 0 4 * * *" // 4 AM UTC
	}

	return nil
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
