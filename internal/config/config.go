// Package config loads the service configuration from data/server.yaml.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/rosterforge/server/internal/database"
	"github.com/lawnchairsociety/rosterforge/server/internal/rosz"
)

// ServerConfig holds server-wide configuration settings.
type ServerConfig struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Storage     StorageConfig     `yaml:"storage"`
	Parsing     ParsingConfig     `yaml:"parsing"`
	Display     DisplayConfig     `yaml:"display"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Connections ConnectionsConfig `yaml:"connections"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Scripts     ScriptsConfig     `yaml:"scripts"`
}

// HTTPConfig holds listener settings.
type HTTPConfig struct {
	Address string `yaml:"address"`

	// MaxUploadBytes caps the request body of upload endpoints.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	ReadTimeoutSeconds int `yaml:"read_timeout_seconds"`

	// StaticDir is served at / when set.
	StaticDir string `yaml:"static_dir"`
}

// StorageConfig holds roster store settings.
type StorageConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver     string         `yaml:"driver"`
	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`

	// ExpiryMinutes is how long a stored roster can be fetched by code.
	ExpiryMinutes int `yaml:"expiry_minutes"`

	// CleanupIntervalSeconds is how often expired rosters are deleted.
	CleanupIntervalSeconds int `yaml:"cleanup_interval_seconds"`
}

// PostgresConfig mirrors database.PostgresConfig in YAML form.
type PostgresConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	User                   string `yaml:"user"`
	Password               string `yaml:"password"`
	Database               string `yaml:"database"`
	SSLMode                string `yaml:"sslmode"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSeconds int    `yaml:"conn_max_lifetime_seconds"`
}

// ParsingConfig holds defaults for roster parsing.
type ParsingConfig struct {
	// AllocationMode is used when a request does not name one.
	AllocationMode  string `yaml:"allocation_mode"`
	MaxTreeDepth    int    `yaml:"max_tree_depth"`
	DecorativeNames string `yaml:"decorative_names"`
}

// DisplayConfig holds defaults for the stored roster document.
type DisplayConfig struct {
	UIHeight    string   `yaml:"ui_height"`
	UIWidth     string   `yaml:"ui_width"`
	Modules     []string `yaml:"modules"`
	PalettePath string   `yaml:"palette_path"`
}

// ConnectionsConfig limits concurrent uploads.
type ConnectionsConfig struct {
	// MaxPerIP is the maximum concurrent uploads from a single IP address.
	// 0 means unlimited.
	MaxPerIP int `yaml:"max_per_ip"`

	// MaxTotal is the maximum concurrent uploads overall. 0 means unlimited.
	MaxTotal int `yaml:"max_total"`
}

// RateLimitConfig locks out clients that keep sending unreadable uploads.
type RateLimitConfig struct {
	// MaxRejects is the number of rejected uploads before lockout.
	MaxRejects int `yaml:"max_rejects"`

	// LockoutSeconds is the first lockout; it doubles on each repeat.
	LockoutSeconds int `yaml:"lockout_seconds"`

	MaxLockoutSeconds int `yaml:"max_lockout_seconds"`
}

// ScriptsConfig locates the Lua modules.
type ScriptsConfig struct {
	ModulePath string `yaml:"module_path"`
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins (not recommended for production).
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum WebSocket message size in bytes. The
	// upload arrives base64 encoded in a single message.
	MaxMessageSize int64 `yaml:"max_message_size"`
}

// DefaultConfig returns a ServerConfig with defaults matching the hosted service.
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		HTTP: HTTPConfig{
			Address:            ":8080",
			MaxUploadBytes:     10 << 20,
			ReadTimeoutSeconds: 30,
		},
		Storage: StorageConfig{
			Driver:                 "sqlite",
			SQLitePath:             "data/rosters.db",
			Postgres:               PostgresConfig{Host: "localhost", Port: 5432, SSLMode: "disable"},
			ExpiryMinutes:          10,
			CleanupIntervalSeconds: 60,
		},
		Parsing: ParsingConfig{
			AllocationMode: string(rosz.AllModels),
			MaxTreeDepth:   64,
		},
		Display: DisplayConfig{
			UIHeight: "700",
			UIWidth:  "1200",
			Modules:  []string{"MatchedPlay"},
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins: []string{}, // Same-origin only by default
			MaxMessageSize: 16 << 20,
		},
		Connections: ConnectionsConfig{
			MaxPerIP: 4,
			MaxTotal: 64,
		},
		RateLimit: RateLimitConfig{
			MaxRejects:        5,
			LockoutSeconds:    30,
			MaxLockoutSeconds: 300,
		},
		Scripts: ScriptsConfig{
			ModulePath: "lua_modules",
		},
	}
}

// LoadConfig loads server configuration from a YAML file.
// A missing file yields the defaults; a malformed one is an error.
func LoadConfig(path string) (*ServerConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return config, nil
}

// Validate checks values that would otherwise fail at first use.
func (c *ServerConfig) Validate() error {
	if _, err := c.Parsing.Mode(); err != nil {
		return fmt.Errorf("invalid parsing.allocation_mode: %w", err)
	}
	switch database.DialectType(c.Storage.Driver) {
	case database.DialectSQLite, database.DialectPostgres:
	default:
		return fmt.Errorf("invalid storage.driver %q: want sqlite or postgres", c.Storage.Driver)
	}
	if c.Storage.ExpiryMinutes <= 0 {
		return fmt.Errorf("invalid storage.expiry_minutes %d: must be positive", c.Storage.ExpiryMinutes)
	}
	return nil
}

// Mode returns the default allocation mode.
func (p ParsingConfig) Mode() (rosz.AllocationMode, error) {
	return rosz.ParseAllocationMode(p.AllocationMode)
}

// Expiry returns how long stored rosters live.
func (s StorageConfig) Expiry() time.Duration {
	return time.Duration(s.ExpiryMinutes) * time.Minute
}

// CleanupInterval returns the period of the expiry sweep.
func (s StorageConfig) CleanupInterval() time.Duration {
	if s.CleanupIntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(s.CleanupIntervalSeconds) * time.Second
}

// Database converts the storage settings for database.OpenWithConfig.
func (s StorageConfig) Database() database.Config {
	pg := database.DefaultPostgresConfig()
	if s.Postgres.Host != "" {
		pg.Host = s.Postgres.Host
	}
	if s.Postgres.Port != 0 {
		pg.Port = s.Postgres.Port
	}
	if s.Postgres.SSLMode != "" {
		pg.SSLMode = s.Postgres.SSLMode
	}
	if s.Postgres.MaxOpenConns != 0 {
		pg.MaxOpenConns = s.Postgres.MaxOpenConns
	}
	if s.Postgres.MaxIdleConns != 0 {
		pg.MaxIdleConns = s.Postgres.MaxIdleConns
	}
	if s.Postgres.ConnMaxLifetimeSeconds != 0 {
		pg.ConnMaxLifetime = time.Duration(s.Postgres.ConnMaxLifetimeSeconds) * time.Second
	}
	pg.User = s.Postgres.User
	pg.Password = s.Postgres.Password
	pg.Database = s.Postgres.Database

	return database.Config{Driver: s.Driver, SQLitePath: s.SQLitePath, Postgres: pg}
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// isSameOrigin checks if the origin matches the request host.
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // non-browser client
	}

	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
