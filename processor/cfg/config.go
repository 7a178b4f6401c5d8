package cfg

import (
	"encoding/json"
	"os"

	"github.com/go-errors/errors"
	log "github.com/sirupsen/logrus"
)

type Config interface {
	RabbitServer() string
	RabbitQueue() string
	RabbitPostExchange() string
	RabbitPostType() string
	ElasticUrl() string
	Memcache() []string
	RedisAddres() string
	RedisPassword() string
	LogLevel() string
	SkipFrames() []string
}

var GlobalConfig Config
var GlobalConfigPath string

func FromJson(pathTo string) (Config, error) {
	file, err := os.Open(pathTo)
	if err != nil {
		log.WithError(err).Error("Get config failed")
		return nil, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	var jconf JsonConfig
	err = decoder.Decode(&jconf)
	if err != nil {
		log.WithError(err).Error("Error at cfg parsing")
		return nil, err
	}

	if jconf.Rabbit == nil || len(jconf.Rabbit.Server) == 0 {
		return nil, errors.New("rabbit_cfg.server can't is empty")
	}

	if len(jconf.Elastic) == 0 {
		return nil, errors.New("elastic can't is empty")
	}

	return &jconf, nil
}
