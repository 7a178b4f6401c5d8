package service

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-errors/errors"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"crashes/common/data/base"
	"crashes/common/format/report"
	"crashes/processor/cfg"
)

const (
	SIGHUP            = syscall.SIGHUP
	SIGTERM           = syscall.SIGTERM
	DEVELOPER_VERSION = "999.999.999"
)

type RabbitClient struct {
	connection  *amqp.Connection
	taskChannel *amqp.Channel
	taskQueue   amqp.Queue
	messages    <-chan amqp.Delivery
	postChannel *amqp.Channel
}

type ProcessorService struct {
	*EntryProcessor
	config     cfg.Config
	rabbit     *RabbitClient
	sig        <-chan os.Signal
	repository *base.Repository
}

func newRabbitClient(conf cfg.Config) *RabbitClient {
	conn, err := amqp.Dial(conf.RabbitServer())
	failOnError(err, "Failed to connect to RabbitMQ")

	ch, err := conn.Channel()
	failOnError(err, "Failed to open a taskChannel")

	q, err := ch.QueueDeclare(
		conf.RabbitQueue(),
		true,
		false,
		false,
		false,
		nil,
	)
	failOnError(err, "Failed to declare a taskQueue")

	err = ch.Qos(
		1,
		0,
		false,
	)
	failOnError(err, "Failed to set QoS")

	msgs, err := ch.Consume(
		q.Name, // taskQueue
		"",     // consumer
		false,  // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	failOnError(err, "Failed to register a consumer")

	return &RabbitClient{connection: conn,
		taskChannel: ch,
		taskQueue:   q,
		messages:    msgs,
	}
}

func (p *ProcessorService) Init(config cfg.Config) error {
	p.config = config

	rabbit := newRabbitClient(p.config)
	if rabbit == nil {
		return errors.New("Can't connect to rabbit")
	}

	p.rabbit = rabbit
	p.createPostProcessingExchange()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, SIGHUP, SIGTERM)
	p.sig = sig

	cache := base.NewCashe(p.config.Memcache(),
		p.config.RedisAddres(),
		p.config.RedisPassword())

	rep, err := base.NewRepository(p.config.ElasticUrl(), cache)
	if err != nil {
		log.WithError(err).Error("Can't create repository")
		return err
	}
	p.repository = rep
	p.EntryProcessor = NewEntryProcessor(p.config.SkipFrames(), rep)

	return nil
}

var ErrConsumerClosed = errors.New("Consumer channel closed")

// Loop consumes tasks until SIGTERM or until the broker closes the consumer channel.
func (p *ProcessorService) Loop() error {
	err := p.consume(p.rabbit.messages, p.sig)
	p.rabbit.connection.Close()
	return err
}

func (p *ProcessorService) consume(messages <-chan amqp.Delivery, signals <-chan os.Signal) error {
	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				log.Error("Consumer channel closed")
				return ErrConsumerClosed
			}
			p.settle(msg)
		case sig := <-signals:
			if sig == SIGTERM {
				log.Info("Stop processing")
				return nil
			}
			p.handleSignal(sig)
		}
	}
}

// settle acks processed tasks. Failed tasks are requeued unless they can never be processed.
func (p *ProcessorService) settle(msg amqp.Delivery) {
	var err error
	taskErr := p.handleTask(msg.Body)
	switch {
	case taskErr == nil:
		err = msg.Ack(false)
	case errors.Is(taskErr, ErrMalformed):
		err = msg.Nack(false, false)
	default:
		err = msg.Nack(false, true)
	}

	if err != nil {
		log.WithError(err).
			WithField("delivery_tag", msg.DeliveryTag).
			Error("Can't acknowledge task")
	}
}

func (p *ProcessorService) handleTask(message []byte) error {
	entry, err := p.HandleTask(message)
	switch {
	case err == nil:
		p.sendNext(entry)
		return nil
	case errors.Is(err, ErrSkipped):
		return nil
	default:
		log.WithError(err).Error("Can't process entry task")
		return err
	}
}

func (p *ProcessorService) handleSignal(sig os.Signal) {
	log.WithField("signal", sig.String()).
		Info("Catch")

	if sig == SIGHUP {
		p.reloadConfiguration()
	}
}

func (p *ProcessorService) createPostProcessingExchange() {
	if len(p.config.RabbitPostExchange()) == 0 {
		p.rabbit.postChannel = nil
		return
	}

	ch, err := p.rabbit.connection.Channel()
	failOnError(err, "Failed to open a taskChannel")
	err = ch.ExchangeDeclare(
		p.config.RabbitPostExchange(),
		p.config.RabbitPostType(),
		true,
		true,
		false,
		false,
		nil,
	)
	failOnError(err, "Failed to declare an exchange")
	p.rabbit.postChannel = ch
}

func (p *ProcessorService) sendNext(entry *report.Entry) {
	if p.rabbit == nil || p.rabbit.postChannel == nil {
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.WithError(err).
			Error("Can't serialize processed entry")
		return
	}

	err = p.rabbit.postChannel.Publish(
		p.config.RabbitPostExchange(),
		"",
		false,
		false,
		amqp.Publishing{
			ContentType: "text/json",
			Body:        data,
		})
	if err != nil {
		log.WithError(err).
			Error("Can't send entry to next stage")
	}
}

func (p *ProcessorService) reloadConfiguration() {
	log.Info("Try to reload configuration")
	if len(cfg.GlobalConfigPath) != 0 {
		conf, err := cfg.FromJson(cfg.GlobalConfigPath)
		if err != nil {
			log.WithError(err).
				Error("Error reading configuration file")
			return
		}
		noErrors := true

		if conf.LogLevel() != p.config.LogLevel() {
			err := p.changeLevel(conf.LogLevel())
			if err != nil {
				noErrors = false
			}
		}

		p.SetSkipFrames(conf.SkipFrames())

		if noErrors {
			cfg.GlobalConfig = conf
			p.config = conf
			log.Info("Reloaded configuration")
		}
	}
}

func (p *ProcessorService) changeLevel(l string) error {
	level, err := log.ParseLevel(l)
	if err != nil {
		log.WithError(err).
			Warn("Can't parse level")
		return err
	}

	log.WithFields(log.Fields{
		"old level": p.config.LogLevel(),
		"new level": l,
	}).
		Info("Change log level")
	log.SetLevel(level)
	return nil
}

func failOnError(err error, msg string) {
	if err != nil {
		log.Fatalf("%s: %s", msg, err)
		panic(fmt.Sprintf("%s: %s", msg, err))
	}
}
