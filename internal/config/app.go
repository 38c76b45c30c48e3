package config

type AppConfig struct {
	Server ServerConfig
	Draft  DraftConfig
	Log    LogConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	draftCfg, err := LoadDraft()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server: serverCfg,
		Draft:  draftCfg,
		Log:    logCfg,
	}, nil
}
