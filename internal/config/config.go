package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	dirName  = ".items"
	fileName = "config.json"
)

// Defaults used when neither file nor environment say otherwise.
const (
	DefaultAPIURL      = "http://localhost:8000"
	DefaultAddr        = ":8000"
	DefaultStore       = "sqlite"
	DefaultDatabaseURL = "items.sqlite"
	DefaultJSONPath    = "items.json"
	DefaultMongoDB     = "items"
)

// Config is shared by the client commands and the server.
type Config struct {
	APIURL        string `json:"api_url,omitempty"`
	Addr          string `json:"addr,omitempty"`
	Store         string `json:"store,omitempty"` // "sqlite" | "mongo" | "json"
	DatabaseURL   string `json:"database_url,omitempty"`
	MongoURI      string `json:"mongo_uri,omitempty"`
	MongoDatabase string `json:"mongo_database,omitempty"`
	RedisAddr     string `json:"redis_addr,omitempty"`
	RedisPassword string `json:"redis_password,omitempty"`
	Theme         string `json:"theme,omitempty"`
	LogLevel      string `json:"log_level,omitempty"`
}

// envKeys maps config keys to the environment variables that override them.
var envKeys = map[string]string{
	"api_url":        "ITEMS_API_URL",
	"addr":           "ITEMS_ADDR",
	"store":          "ITEMS_STORE",
	"database_url":   "DATABASE_URL",
	"mongo_uri":      "MONGO_URI",
	"mongo_database": "MONGO_DATABASE",
	"redis_addr":     "REDIS_ADDR",
	"redis_password": "REDIS_PASSWORD",
	"theme":          "ITEMS_THEME",
	"log_level":      "ITEMS_LOG_LEVEL",
}

// Dir is ~/.items, or $ITEMS_CONFIG_DIR when set.
func Dir() (string, error) {
	if d := strings.TrimSpace(os.Getenv("ITEMS_CONFIG_DIR")); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Path is the config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Keys lists the settable keys in a stable order.
func Keys() []string {
	out := make([]string, 0, len(envKeys))
	for k := range envKeys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ReadFile returns what is stored on disk; a missing file is an empty Config.
func ReadFile() (Config, error) {
	var c Config
	p, err := Path()
	if err != nil {
		return c, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// WriteFile persists c, owner-only.
func WriteFile(c Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	p, _ := Path()
	if err := os.WriteFile(p, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Load resolves file, then environment, then defaults. Flags are applied by
// the caller on top.
func Load() (Config, error) {
	c, err := ReadFile()
	if err != nil {
		return c, err
	}
	for _, k := range Keys() {
		if v := strings.TrimSpace(os.Getenv(envKeys[k])); v != "" {
			_ = c.Set(k, v)
		}
	}
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Store == "" {
		c.Store = DefaultStore
	}
	if c.DatabaseURL == "" && c.Store != "mongo" {
		c.DatabaseURL = DefaultDatabaseURL
		if c.Store == "json" {
			c.DatabaseURL = DefaultJSONPath
		}
	}
	if c.MongoDatabase == "" {
		c.MongoDatabase = DefaultMongoDB
	}
}

// Get reads a key by its file name.
func (c Config) Get(key string) (string, error) {
	p, err := c.field(key)
	if err != nil {
		return "", err
	}
	return *p, nil
}

// Set writes a key by its file name.
func (c *Config) Set(key, value string) error {
	p, err := c.field(key)
	if err != nil {
		return err
	}
	*p = strings.TrimSpace(value)
	return nil
}

func (c *Config) field(key string) (*string, error) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "api_url":
		return &c.APIURL, nil
	case "addr":
		return &c.Addr, nil
	case "store":
		return &c.Store, nil
	case "database_url":
		return &c.DatabaseURL, nil
	case "mongo_uri":
		return &c.MongoURI, nil
	case "mongo_database":
		return &c.MongoDatabase, nil
	case "redis_addr":
		return &c.RedisAddr, nil
	case "redis_password":
		return &c.RedisPassword, nil
	case "theme":
		return &c.Theme, nil
	case "log_level":
		return &c.LogLevel, nil
	}
	return nil, fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys(), ", "))
}
