// Package reporter is the entry point of the crash reporting SDK.
package reporter

import (
	"encoding/json"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"crashes/common/format/report"
	"crashes/reporter/builder"
	"crashes/reporter/delivery"
	"crashes/reporter/environment"
)

// Poster transmits a serialized report. Implementations must not block the caller.
type Poster interface {
	Post(endpoint, apiKey string, payload []byte)
}

// Flusher is implemented by posters that can wait for in-flight deliveries.
type Flusher interface {
	Flush(timeout time.Duration) bool
}

// SendingMessageEvent is passed to handlers right before a message is serialized.
// Handlers may adjust the message or set Cancel to drop it.
type SendingMessageEvent struct {
	Message *report.Message
	Cancel  bool
}

type SendingMessageHandler func(c *Client, e *SendingMessageEvent)

type Client struct {
	apiKey   string
	endpoint string
	tags     []string
	host     environment.Host
	clock    environment.Clock
	logger   log.FieldLogger
	poster   Poster

	mu                 sync.RWMutex
	user               string
	userInfo           *report.Identifier
	applicationVersion string
	handlers           []SendingMessageHandler
}

// NewClient creates a client reporting with apiKey. An empty key is accepted:
// every send then logs a diagnostic and does nothing.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		endpoint: delivery.DefaultEndpoint,
		host:     environment.RuntimeHost{},
		clock:    environment.RealClock{},
		logger:   log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithField(delivery.ComponentKey, delivery.Component)
	return c
}

func (c *Client) ApiKey() string {
	return c.apiKey
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) SetUser(user string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = user
}

func (c *Client) SetUserInfo(info *report.Identifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userInfo = info
}

func (c *Client) SetApplicationVersion(version string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applicationVersion = version
}

// OnSendingMessage registers a handler run before every send, in registration order.
func (c *Client) OnSendingMessage(handler SendingMessageHandler) {
	if handler == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// SendMessage reports a log message with its raw stack trace.
func (c *Client) SendMessage(message, stackTrace string, tags []string, customData map[string]interface{}) {
	defer c.recoverSend()

	msg, err := c.BuildMessage(message, stackTrace, tags, customData)
	if err != nil {
		c.logger.WithError(err).Warn("Can't build message")
		return
	}
	c.Send(msg)
}

// SendError reports err and its chain of causes.
func (c *Client) SendError(err error, tags []string, customData map[string]interface{}) {
	defer c.recoverSend()

	msg, buildErr := c.BuildErrorMessage(err, tags, customData)
	if buildErr != nil {
		c.logger.WithError(buildErr).Warn("Can't build message")
		return
	}
	c.Send(msg)
}

func (c *Client) BuildMessage(message, stackTrace string, tags []string, customData map[string]interface{}) (*report.Message, error) {
	return c.newBuilder(tags, customData).
		SetExceptionDetails(message, stackTrace).
		Build()
}

func (c *Client) BuildErrorMessage(err error, tags []string, customData map[string]interface{}) (*report.Message, error) {
	return c.newBuilder(tags, customData).
		SetErrorDetails(err).
		Build()
}

// Send posts msg to the entries endpoint. Nothing is returned: every failure is
// logged and the message is dropped.
func (c *Client) Send(msg *report.Message) {
	defer c.recoverSend()

	if msg == nil {
		return
	}
	if c.apiKey == "" {
		c.logger.Warn("ApiKey has not been provided, exception will not be logged")
		return
	}
	if !c.onSendingMessage(msg) {
		c.logger.Debug("Sending canceled by handler")
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		c.logger.WithError(err).Warn("Error serializing message")
		return
	}

	poster := c.resolvePoster()
	if poster == nil {
		c.logger.Warn("Delivery worker is unavailable, report dropped")
		return
	}
	poster.Post(c.endpoint, c.apiKey, payload)
}

// Flush waits for in-flight deliveries when the poster supports it.
func (c *Client) Flush(timeout time.Duration) bool {
	if f, ok := c.resolvePoster().(Flusher); ok {
		return f.Flush(timeout)
	}
	return true
}

func (c *Client) newBuilder(tags []string, customData map[string]interface{}) *builder.MessageBuilder {
	c.mu.RLock()
	version := c.applicationVersion
	user := builder.UserFor(c.userInfo, c.user)
	c.mu.RUnlock()

	return builder.New().
		SetOccurredOn(c.clock.Now()).
		SetEnvironmentDetails(environment.Capture(c.host, c.clock, c.logger)).
		SetMachineName(c.machineName()).
		SetClientDetails().
		SetVersion(version).
		SetTags(c.mergeTags(tags)).
		SetUserCustomData(customData).
		SetUser(user)
}

func (c *Client) mergeTags(tags []string) []string {
	if len(c.tags) == 0 {
		return tags
	}
	merged := make([]string, 0, len(c.tags)+len(tags))
	merged = append(merged, c.tags...)
	return append(merged, tags...)
}

func (c *Client) machineName() (name string) {
	defer func() {
		if recover() != nil {
			name = ""
		}
	}()
	name, err := c.host.DeviceName()
	if err != nil {
		return ""
	}
	return name
}

// onSendingMessage returns false when a handler canceled the send.
func (c *Client) onSendingMessage(msg *report.Message) bool {
	c.mu.RLock()
	handlers := append([]SendingMessageHandler(nil), c.handlers...)
	c.mu.RUnlock()

	if len(handlers) == 0 {
		return true
	}
	e := &SendingMessageEvent{Message: msg}
	for _, handler := range handlers {
		handler(c, e)
	}
	return !e.Cancel
}

func (c *Client) resolvePoster() Poster {
	if c.poster != nil {
		return c.poster
	}
	if s := delivery.Instance(); s != nil {
		return s
	}
	return nil
}

func (c *Client) recoverSend() {
	if r := recover(); r != nil {
		c.logger.WithField("panic", r).Warn("Error sending message")
	}
}
