package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// DatabasePath enables the sqlite message archive. Empty keeps history in memory only.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	UploadDir       string `mapstructure:"upload_dir" yaml:"upload_dir"`
	MaxUploadBytes  int64  `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
	MaxMessageBytes int64  `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`

	HistoryLimit int `mapstructure:"history_limit" yaml:"history_limit"`
	RecentCount  int `mapstructure:"recent_count" yaml:"recent_count"`
	// RateLimit caps inbound events per connection per minute; 0 disables it.
	RateLimit    int `mapstructure:"rate_limit" yaml:"rate_limit"`
	ClientBuffer int `mapstructure:"client_buffer" yaml:"client_buffer"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":5000",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		UploadDir:         "uploads",
		MaxUploadBytes:    10 << 20,
		MaxMessageBytes:   1 << 20,
		HistoryLimit:      1000,
		RecentCount:       50,
		RateLimit:         600,
		ClientBuffer:      64,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.UploadDir != "" {
		c.UploadDir = other.UploadDir
	}
	if other.MaxUploadBytes != 0 {
		c.MaxUploadBytes = other.MaxUploadBytes
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.HistoryLimit != 0 {
		c.HistoryLimit = other.HistoryLimit
	}
	if other.RecentCount != 0 {
		c.RecentCount = other.RecentCount
	}
	if other.RateLimit != 0 {
		c.RateLimit = other.RateLimit
	}
	if other.ClientBuffer != 0 {
		c.ClientBuffer = other.ClientBuffer
	}
}
