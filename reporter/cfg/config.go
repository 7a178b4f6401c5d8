// Package cfg loads the reporting client configuration.
package cfg

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/go-errors/errors"
	log "github.com/sirupsen/logrus"

	"crashes/reporter"
	"crashes/reporter/delivery"
)

const (
	ApiKeyEnv   = "CRASHES_API_KEY"
	EndpointEnv = "CRASHES_ENDPOINT"
)

var ErrNoApiKey = errors.New("The api key is not set")

type Config interface {
	ApiKey() string
	Endpoint() string
	ApplicationVersion() string
	User() string
	Tags() []string
	LogLevel() string
}

var GlobalConfigMutex sync.Mutex
var GlobalConfig Config
var GlobalConfigPath string

// logger tags entries so the global hook does not report the client's own failures.
func logger() *log.Entry {
	return log.WithField(delivery.ComponentKey, delivery.Component)
}

// FromJson reads the configuration at pathTo. Environment variables override the api key
// and the endpoint of the file.
func FromJson(pathTo string) (Config, error) {
	file, err := os.Open(pathTo)
	if err != nil {
		logger().WithError(err).Warn("Get config failed")
		return nil, err
	}
	defer file.Close()

	var jconf JsonConfig
	if err = json.NewDecoder(file).Decode(&jconf); err != nil {
		logger().WithError(err).Warn("Error at cfg parsing")
		return nil, err
	}

	if key := os.Getenv(ApiKeyEnv); key != "" {
		jconf.Key = key
	}
	if endpoint := os.Getenv(EndpointEnv); endpoint != "" {
		jconf.EndpointUrl = endpoint
	}

	if len(jconf.Key) == 0 {
		return nil, ErrNoApiKey
	}

	return &jconf, nil
}

// Options converts conf into client options.
func Options(conf Config) []reporter.Option {
	return []reporter.Option{
		reporter.WithEndpoint(conf.Endpoint()),
		reporter.WithApplicationVersion(conf.ApplicationVersion()),
		reporter.WithUser(conf.User()),
		reporter.WithTags(conf.Tags()...),
	}
}

// NewClient builds a client from conf.
func NewClient(conf Config, opts ...reporter.Option) *reporter.Client {
	return reporter.NewClient(conf.ApiKey(), append(Options(conf), opts...)...)
}
