package config

import "github.com/caarlos0/env/v11"

type DraftConfig struct {
	League   string `env:"DRAFT_LEAGUE" envDefault:"PST"`
	TeamSize int    `env:"DRAFT_TEAM_SIZE" envDefault:"4"`

	StartSeconds      int `env:"DRAFT_START_SECONDS" envDefault:"10"`
	NominationSeconds int `env:"DRAFT_NOMINATION_SECONDS" envDefault:"30"`
	LotSeconds        int `env:"DRAFT_LOT_SECONDS" envDefault:"60"`
}

func LoadDraft() (DraftConfig, error) {
	var cfg DraftConfig
	err := env.Parse(&cfg)
	return cfg, err
}
