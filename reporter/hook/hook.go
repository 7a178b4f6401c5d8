// Package hook routes unhandled failures of the process to a shared reporting client.
//
// Error, fatal and panic entries of an installed logrus logger are reported, and a
// deferred Recover reports panics before letting them continue.
package hook

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-errors/errors"
	log "github.com/sirupsen/logrus"

	"crashes/reporter"
	"crashes/reporter/builder"
	"crashes/reporter/delivery"
)

const (
	Tag = "logrus"

	flushTimeout = 2 * time.Second
)

var (
	attached atomic.Pointer[reporter.Client]

	installMu sync.Mutex
	installed = map[*log.Logger]bool{}
)

// Attach creates the shared client, replacing any previously attached one,
// and hooks it into the standard logger.
func Attach(apiKey string, opts ...reporter.Option) *reporter.Client {
	c := reporter.NewClient(apiKey, opts...)
	AttachClient(c)
	return c
}

func AttachClient(c *reporter.Client) {
	attached.Store(c)
	Install(log.StandardLogger())
}

// Detach stops reporting. Installed hooks stay in place and do nothing.
func Detach() {
	attached.Store(nil)
}

func Current() *reporter.Client {
	return attached.Load()
}

// Install adds the dispatch hook to logger. Repeated calls are no-ops.
func Install(logger *log.Logger) {
	if logger == nil {
		return
	}
	installMu.Lock()
	defer installMu.Unlock()
	if installed[logger] {
		return
	}
	logger.AddHook(dispatchHook{})
	installed[logger] = true
}

// Recover reports a panic of the calling goroutine and re-panics.
// Use it deferred: defer hook.Recover()
func Recover() {
	r := recover()
	if r == nil {
		return
	}
	if c := Current(); c != nil {
		err, ok := r.(error)
		if !ok {
			err = fmt.Errorf("panic: %v", r)
		}
		c.SendError(errors.Wrap(err, 2), []string{Tag, log.PanicLevel.String()}, nil)
		c.Flush(flushTimeout)
	}
	panic(r)
}

type dispatchHook struct{}

func (dispatchHook) Levels() []log.Level {
	return []log.Level{log.PanicLevel, log.FatalLevel, log.ErrorLevel}
}

func (dispatchHook) Fire(entry *log.Entry) error {
	if entry.Data[delivery.ComponentKey] == delivery.Component {
		return nil
	}
	c := Current()
	if c == nil {
		return nil
	}

	tags := []string{Tag, entry.Level.String()}
	data := customData(entry.Data)
	if err, ok := entry.Data[log.ErrorKey].(error); ok && err != nil {
		c.SendError(err, tags, data)
	} else {
		c.SendMessage(entry.Message, callerStack(), tags, data)
	}

	// fatal exits and panic unwinds right after the hooks
	if entry.Level <= log.FatalLevel {
		c.Flush(flushTimeout)
	}
	return nil
}

func customData(fields log.Fields) map[string]interface{} {
	if len(fields) == 0 {
		return nil
	}
	data := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if k == log.ErrorKey {
			continue
		}
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		data[k] = v
	}
	return data
}

// callerStack renders the logging call site and its callers as trace lines,
// leaving out logrus and this package.
func callerStack() string {
	return builder.FormatStack(errors.Wrap("", 1).StackFrames(),
		"github.com/sirupsen/logrus", "crashes/reporter/hook")
}
