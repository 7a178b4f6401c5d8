package cfg

type WebServerCfg struct {
	Port uint   `json:"port"`
	Host string `json:"host"`
}

type RabbitCfg struct {
	Server string `json:"server"`
	Queue  string `json:"queue"`
}

type RedisCfg struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

type CacheCfg struct {
	Memcached []string `json:"memcache"`
	Redis     RedisCfg `json:"redis"`
}

type QuotaCfg struct {
	Daily int64 `json:"daily"`
}

type LogCfg struct {
	Level string `json:"level"`
}

type JsonConfig struct {
	Server     *WebServerCfg `json:"web_server"`
	Keys       []string      `json:"api_keys"`
	MaxPayload int64         `json:"max_payload_bytes"`
	Quota      *QuotaCfg     `json:"quota"`
	Rabbit     *RabbitCfg    `json:"rabbit_cfg"`
	Cache      *CacheCfg     `json:"cache"`
	Log        *LogCfg       `json:"log"`
	SkipFrame  []string      `json:"skip_frames"`
}

func (cfg *JsonConfig) Port() uint {
	return cfg.Server.Port
}

func (cfg *JsonConfig) Host() string {
	return cfg.Server.Host
}

func (cfg *JsonConfig) ApiKeys() []string {
	return cfg.Keys
}

func (cfg *JsonConfig) MaxPayloadBytes() int64 {
	if cfg.MaxPayload <= 0 {
		return DefaultMaxPayloadBytes
	}
	return cfg.MaxPayload
}

// DailyQuota is the number of entries accepted per api key and day. Zero disables the quota.
func (cfg *JsonConfig) DailyQuota() int64 {
	if cfg.Quota == nil {
		return 0
	}
	return cfg.Quota.Daily
}

func (cfg *JsonConfig) RabbitServer() string {
	if cfg.Rabbit == nil {
		return ""
	}
	return cfg.Rabbit.Server
}

func (cfg *JsonConfig) RabbitQueue() string {
	if cfg.Rabbit == nil {
		return ""
	}
	return cfg.Rabbit.Queue
}

func (cfg *JsonConfig) Memcache() []string {
	if cfg.Cache == nil {
		return nil
	}
	return cfg.Cache.Memcached
}

func (cfg *JsonConfig) RedisAddres() string {
	if cfg.Cache == nil {
		return ""
	}
	return cfg.Cache.Redis.Address
}

func (cfg *JsonConfig) RedisPassword() string {
	if cfg.Cache == nil {
		return ""
	}
	return cfg.Cache.Redis.Password
}

func (cfg *JsonConfig) LogLevel() string {
	if cfg.Log == nil {
		return ""
	}
	return cfg.Log.Level
}

func (cfg *JsonConfig) SkipFrames() []string {
	return cfg.SkipFrame
}
