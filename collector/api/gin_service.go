package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"crashes/collector/cfg"
	"crashes/collector/service"
	"crashes/common/format/report"
	"crashes/reporter/delivery"
)

type BaseReply struct {
	Status string `json:"status"`
}

type GinCollectorService struct {
	engine   *gin.Engine
	conf     cfg.Config
	service  *service.CollectorService
	registry *prometheus.Registry
	metrics  *metrics
	apiKeys  map[string]bool
}

// entryShape detects a missing error object, which report.Message cannot tell from an empty one.
type entryShape struct {
	Details *struct {
		Error *report.ErrorDetail `json:"error"`
	} `json:"details"`
}

func (m *GinCollectorService) Init() error {
	cfg.GlobalConfigMutex.Lock()
	defer cfg.GlobalConfigMutex.Unlock()

	s, err := service.NewCollector(cfg.GlobalConfig)
	if err != nil {
		return err
	}
	m.InitWith(cfg.GlobalConfig, s)
	return nil
}

// InitWith sets up routes around an existing collector service.
func (m *GinCollectorService) InitWith(conf cfg.Config, s *service.CollectorService) {
	m.conf = conf
	m.service = s
	m.apiKeys = make(map[string]bool, len(conf.ApiKeys()))
	for _, key := range conf.ApiKeys() {
		m.apiKeys[key] = true
	}

	m.registry = prometheus.NewRegistry()
	m.metrics = newMetrics(m.registry)

	m.engine = gin.New()
	m.engine.Use(gin.Recovery(), m.metrics.Middleware())
	m.applyRoutes()
}

func (m *GinCollectorService) Handler() http.Handler {
	return m.engine
}

func (m *GinCollectorService) reply(status int, descr string, c *gin.Context) {
	rMsg := &BaseReply{fmt.Sprintf("error: %s", descr)}
	c.JSON(status, rMsg)
}

func (m *GinCollectorService) setAccepted(c *gin.Context) {
	rMsg := &BaseReply{"success"}
	c.JSON(http.StatusAccepted, rMsg)
}

func (m *GinCollectorService) Start() error {
	addres := fmt.Sprintf("%s:%d", m.conf.Host(), m.conf.Port())
	log.WithField("address", addres).Info("Run on")
	return m.engine.Run(addres)
}

func (m *GinCollectorService) applyRoutes() {
	m.engine.POST("/entries", m.PostEntry())
	m.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})))
}

func (m *GinCollectorService) PostEntry() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(delivery.ApiKeyHeader)
		if !m.apiKeys[apiKey] {
			m.metrics.entry("invalid_key")
			m.reply(http.StatusForbidden, "Invalid API Key", c)
			return
		}

		limit := m.conf.MaxPayloadBytes()
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, limit+1))
		if err != nil {
			log.WithError(err).Warning("Can't read entry")
			m.metrics.entry("bad_message")
			m.reply(http.StatusBadRequest, "Can't read body", c)
			return
		}
		if int64(len(body)) > limit {
			m.metrics.entry("too_large")
			m.reply(http.StatusRequestEntityTooLarge, "Request entity too large", c)
			return
		}

		var shape entryShape
		if err = json.Unmarshal(body, &shape); err != nil || shape.Details == nil || shape.Details.Error == nil {
			log.WithField("api_key", apiKey).Debug("Invalid entry format")
			m.metrics.entry("bad_message")
			m.reply(http.StatusBadRequest, "Bad message", c)
			return
		}

		allowed, err := m.service.Allow(apiKey)
		if err != nil {
			log.WithError(err).Warning("Can't check quota")
		}
		if !allowed {
			m.metrics.entry("quota_exceeded")
			m.reply(http.StatusTooManyRequests, "Too Many Requests", c)
			return
		}

		if err = m.service.AddEntry(apiKey, body); err != nil {
			log.WithError(err).Error("Can't add new task to process entry")
			m.metrics.entry("failed")
			m.reply(http.StatusInternalServerError, "Can't add new task to process entry", c)
			return
		}

		m.metrics.entry("accepted")
		m.setAccepted(c)
	}
}
