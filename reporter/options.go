package reporter

import (
	log "github.com/sirupsen/logrus"

	"crashes/common/format/report"
	"crashes/reporter/environment"
)

// Option customises client instantiation.
type Option func(*Client)

// WithEndpoint overrides the entries endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

func WithApplicationVersion(version string) Option {
	return func(c *Client) {
		c.applicationVersion = version
	}
}

func WithUser(user string) Option {
	return func(c *Client) {
		c.user = user
	}
}

func WithUserInfo(info *report.Identifier) Option {
	return func(c *Client) {
		c.userInfo = info
	}
}

// WithTags adds tags to every report sent by the client.
func WithTags(tags ...string) Option {
	return func(c *Client) {
		c.tags = append(c.tags, tags...)
	}
}

func WithLogger(logger log.FieldLogger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHost replaces the runtime host, e.g. with the game engine's device queries.
func WithHost(host environment.Host) Option {
	return func(c *Client) {
		if host != nil {
			c.host = host
		}
	}
}

func WithClock(clock environment.Clock) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithPoster replaces the shared delivery worker.
func WithPoster(poster Poster) Option {
	return func(c *Client) {
		if poster != nil {
			c.poster = poster
		}
	}
}
