package cfg

type LogCfg struct {
	Level string `json:"level"`
}

type JsonConfig struct {
	Key         string   `json:"api_key"`
	EndpointUrl string   `json:"endpoint"`
	Version     string   `json:"application_version"`
	UserName    string   `json:"user"`
	TagList     []string `json:"tags"`
	Log         *LogCfg  `json:"log"`
}

func (cfg *JsonConfig) ApiKey() string {
	return cfg.Key
}

func (cfg *JsonConfig) Endpoint() string {
	return cfg.EndpointUrl
}

func (cfg *JsonConfig) ApplicationVersion() string {
	return cfg.Version
}

func (cfg *JsonConfig) User() string {
	return cfg.UserName
}

func (cfg *JsonConfig) Tags() []string {
	return cfg.TagList
}

func (cfg *JsonConfig) LogLevel() string {
	if cfg.Log == nil {
		return ""
	}
	return cfg.Log.Level
}
