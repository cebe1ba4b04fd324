package config

const (
	DefaultPort       = 8000
	DefaultConfigName = "config"
	DefaultConfigType = "yaml"

	DefaultStatsQueueSize = 1024
	DefaultStatsWorkers   = 2

	ServerPortKey = "server.port"
)
