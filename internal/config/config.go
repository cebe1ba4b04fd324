package config

import (
	"log"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	GConfig *Config

	vp *viper.Viper
)

func New() *Config {
	vp = viper.New()
	vp.SetDefault(ServerPortKey, DefaultPort)
	vp.SetDefault("omaha.stats_queue_size", DefaultStatsQueueSize)
	vp.SetDefault("omaha.stats_workers", DefaultStatsWorkers)
	vp.SetConfigName(DefaultConfigName)
	vp.SetConfigType(DefaultConfigType)
	vp.AddConfigPath(".")
	vp.AddConfigPath("config")

	if err := vp.ReadInConfig(); err != nil {
		log.Fatalf("Failed to read config file, %v", err)
	}

	vp.OnConfigChange(func(fsnotify.Event) {
		NotifyKeyListeners()
	})
	vp.WatchConfig()

	var c = new(Config)
	if err := vp.Unmarshal(c); err != nil {
		log.Fatalf("Failed to unmarshal config file, %v", err)
	}
	return c
}
