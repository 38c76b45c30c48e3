package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	AdminAPIKey string `env:"ADMIN_API_KEY"`

	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	UseMemoryStore bool   `env:"USE_MEMORY_STORE" envDefault:"false"`

	AnnounceEnabled   bool   `env:"ANNOUNCE_ENABLED" envDefault:"false"`
	DiscordWebhookURL string `env:"DISCORD_WEBHOOK_URL"`

	PlayerCSV  string `env:"PLAYER_CSV"`
	CaptainCSV string `env:"CAPTAIN_CSV"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
