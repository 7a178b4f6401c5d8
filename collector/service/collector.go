package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-errors/errors"
	logger "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"crashes/collector/cfg"
	"crashes/common/data/base"
	"crashes/common/task"
	processor "crashes/processor/service"
)

// Publisher hands an entry task to the processing side.
type Publisher interface {
	Publish(msg []byte) error
}

type PublisherFunc func(msg []byte) error

func (f PublisherFunc) Publish(msg []byte) error {
	return f(msg)
}

type RabbitClient struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	queue      amqp.Queue
}

type CollectorService struct {
	cfg       cfg.Config
	cache     base.Cashe
	publisher Publisher
	now       func() time.Time
}

// Allow counts an entry against the daily quota of apiKey.
func (s *CollectorService) Allow(apiKey string) (bool, error) {
	quota := s.cfg.DailyQuota()
	if quota <= 0 {
		return true, nil
	}

	key := fmt.Sprintf("quota:%s:%s", apiKey, s.now().UTC().Format("20060102"))
	count, err := s.cache.Incr(key)
	if err != nil {
		return true, err
	}
	return count <= quota, nil
}

func (s *CollectorService) AddEntry(apiKey string, payload []byte) error {
	t := task.CreateEntryTask(apiKey, payload)
	msg, err := json.Marshal(t)
	if err != nil {
		logger.WithError(err).Error("Can't serialize message")
		return err
	}
	return s.publisher.Publish(msg)
}

func (r *RabbitClient) Publish(msg []byte) error {
	return r.channel.Publish("",
		r.queue.Name,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         msg,
		})
}

func newRabbitClient(conf cfg.Config) *RabbitClient {
	conn, err := amqp.Dial(conf.RabbitServer())
	if err != nil {
		logger.WithError(err).Error("Failed to connect to RabbitMQ")
		return nil
	}

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Error("Failed to open a channel")
		conn.Close()
		return nil
	}

	q, err := ch.QueueDeclare(
		conf.RabbitQueue(),
		true,
		false,
		false,
		false,
		nil,
	)

	if err != nil {
		logger.WithError(err).Error("Failed to declare a queue")
		conn.Close()
		return nil
	}

	return &RabbitClient{conn, ch, q}
}

// inProcess processes entries inside the collector when no broker is configured.
func inProcess(conf cfg.Config) Publisher {
	p := processor.NewEntryProcessor(conf.SkipFrames(), nil)
	return PublisherFunc(func(msg []byte) error {
		_, err := p.HandleTask(msg)
		if errors.Is(err, processor.ErrSkipped) {
			return nil
		}
		return err
	})
}

func NewCollector(c cfg.Config) (*CollectorService, error) {
	cache := base.NewCashe(c.Memcache(), c.RedisAddres(), c.RedisPassword())

	if len(c.RabbitServer()) == 0 {
		logger.Warn("Rabbit server is not set, entries are processed in place")
		return NewCollectorService(c, cache, inProcess(c)), nil
	}

	client := newRabbitClient(c)
	if client == nil {
		logger.Error("Can't connect to rabbit")
		return nil, errors.New("Can't connect to rabbit")
	}

	return NewCollectorService(c, cache, client), nil
}

func NewCollectorService(c cfg.Config, cache base.Cashe, publisher Publisher) *CollectorService {
	return &CollectorService{
		cfg:       c,
		cache:     cache,
		publisher: publisher,
		now:       time.Now,
	}
}
