package config

import "time"

type (
	Config struct {
		Server   ServerConfig   `mapstructure:"server"`
		Log      LogConfig      `mapstructure:"log"`
		Database DatabaseConfig `mapstructure:"database"`
		Redis    RedisConfig    `mapstructure:"redis"`
		Storage  StorageConfig  `mapstructure:"storage"`
		Omaha    OmahaConfig    `mapstructure:"omaha"`
	}

	ServerConfig struct {
		Port int `mapstructure:"port"`
	}

	LogConfig struct {
		Level      string `mapstructure:"level"`
		MaxSize    int    `mapstructure:"max_size"`
		MaxBackups int    `mapstructure:"max_backups"`
		MaxAge     int    `mapstructure:"max_age"`
		Compress   bool   `mapstructure:"compress"`
	}

	DatabaseConfig struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		Debug    bool   `mapstructure:"debug"`
	}

	RedisConfig struct {
		Addr     string `mapstructure:"addr"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	}

	StorageConfig struct {
		Root         string        `mapstructure:"root"`
		BaseURL      string        `mapstructure:"base_url"`
		Secret       string        `mapstructure:"secret"`
		SignedURLTTL time.Duration `mapstructure:"signed_url_ttl"`
	}

	// OmahaConfig drives the update endpoint. Mirrors is a flat list
	// of url,weight pairs; all mirrors are emitted in the response,
	// weighted round robin picks which one leads.
	OmahaConfig struct {
		Mirrors        []string `mapstructure:"mirrors"`
		StatsQueueSize int      `mapstructure:"stats_queue_size"`
		StatsWorkers   int      `mapstructure:"stats_workers"`
	}
)
