package cfg

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/go-errors/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultMaxPayloadBytes matches the limit of the hosted entries endpoint.
const DefaultMaxPayloadBytes = 128000

type Config interface {
	Port() uint
	Host() string
	ApiKeys() []string
	MaxPayloadBytes() int64
	DailyQuota() int64
	RabbitServer() string
	RabbitQueue() string
	Memcache() []string
	RedisAddres() string
	RedisPassword() string
	LogLevel() string
	SkipFrames() []string
}

var GlobalConfigMutex sync.Mutex
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

	if jconf.Server == nil {
		return nil, errors.New("The web server address is not set")
	}

	if len(jconf.Keys) == 0 {
		return nil, errors.New("The list of api keys is empty")
	}

	return &jconf, nil
}
