// Package config loads the tutorial's runtime settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/on-the-ground/composable_ive_go/internal/model"
)

var ErrUnknownKey = errors.New("unknown config key")

type Config struct {
	Log    LogConfig    `yaml:"log"`
	Store  StoreConfig  `yaml:"store"`
	Shared SharedConfig `yaml:"shared"`
	Fact   FactConfig   `yaml:"fact"`
	Server ServerConfig `yaml:"server"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	Encoding    string `yaml:"encoding"`
}

type StoreConfig struct {
	BufferSize     int  `yaml:"buffer_size"`
	ChangePrinting bool `yaml:"change_printing"`
}

type SharedConfig struct {
	Backend string       `yaml:"backend"`
	Notify  NotifyConfig `yaml:"notify"`
	File    FileConfig   `yaml:"file"`
	SQLite  SQLiteConfig `yaml:"sqlite"`
	S3      S3Config     `yaml:"s3"`
}

type NotifyConfig struct {
	BufferSize int `yaml:"buffer_size"`
	NumWorkers int `yaml:"num_workers"`
}

type FileConfig struct {
	Dir          string        `yaml:"dir"`
	PollInterval time.Duration `yaml:"poll_interval"`
	CacheMaxCost int64         `yaml:"cache_max_cost"`
}

type SQLiteConfig struct {
	Path         string        `yaml:"path"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

type S3Config struct {
	Bucket       string        `yaml:"bucket"`
	Prefix       string        `yaml:"prefix"`
	Region       string        `yaml:"region"`
	Endpoint     string        `yaml:"endpoint"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

type FactConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Encoding: "json"},
		Store: StoreConfig{
			BufferSize: 64,
		},
		Shared: SharedConfig{
			Backend: "memory",
			Notify:  NotifyConfig{BufferSize: 16, NumWorkers: 4},
			File: FileConfig{
				Dir:          ".tutorial",
				PollInterval: time.Second,
				CacheMaxCost: 1 << 20,
			},
			SQLite: SQLiteConfig{Path: ".tutorial/shared.db", PollInterval: time.Second},
			S3:     S3Config{Prefix: "shared/", Region: "us-east-1", PollInterval: 5 * time.Second},
		},
		Fact:   FactConfig{BaseURL: "http://numbersapi.com", Timeout: 5 * time.Second},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// Unknown fields are rejected so typos surface early.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Parse decodes YAML data into cfg, keeping the values data does not mention.
func Parse(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// NotifyScope is the queue shape of shared-state change notifications.
func (c Config) NotifyScope() model.EffectScopeConfig {
	return model.NewEffectScopeConfig(c.Shared.Notify.BufferSize, c.Shared.Notify.NumWorkers)
}

// Set overrides one setting addressed by its dotted key, as in "--set shared.backend=file".
func (c *Config) Set(key, value string) error {
	var err error
	switch key {
	case LogLevel:
		c.Log.Level = value
	case LogDevelopment:
		c.Log.Development, err = strconv.ParseBool(value)
	case LogEncoding:
		c.Log.Encoding = value
	case StoreBufferSize:
		c.Store.BufferSize, err = strconv.Atoi(value)
	case StoreChangePrinting:
		c.Store.ChangePrinting, err = strconv.ParseBool(value)
	case SharedBackend:
		c.Shared.Backend = value
	case SharedNotifyBufferSize:
		c.Shared.Notify.BufferSize, err = strconv.Atoi(value)
	case SharedNotifyNumWorkers:
		c.Shared.Notify.NumWorkers, err = strconv.Atoi(value)
	case SharedFileDir:
		c.Shared.File.Dir = value
	case SharedFilePollInterval:
		c.Shared.File.PollInterval, err = time.ParseDuration(value)
	case SharedFileCacheMaxCost:
		c.Shared.File.CacheMaxCost, err = strconv.ParseInt(value, 10, 64)
	case SharedSQLitePath:
		c.Shared.SQLite.Path = value
	case SharedSQLitePollInterval:
		c.Shared.SQLite.PollInterval, err = time.ParseDuration(value)
	case SharedS3Bucket:
		c.Shared.S3.Bucket = value
	case SharedS3KeyPrefix:
		c.Shared.S3.Prefix = value
	case SharedS3Region:
		c.Shared.S3.Region = value
	case SharedS3Endpoint:
		c.Shared.S3.Endpoint = value
	case SharedS3PollInterval:
		c.Shared.S3.PollInterval, err = time.ParseDuration(value)
	case FactBaseURL:
		c.Fact.BaseURL = value
	case FactTimeout:
		c.Fact.Timeout, err = time.ParseDuration(value)
	case ServerAddr:
		c.Server.Addr = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}
