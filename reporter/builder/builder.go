// Package builder assembles crash report messages step by step.
package builder

import (
	"time"

	"github.com/go-errors/errors"

	"crashes/common/format/report"
)

// LogEntryClassName is the class name of errors built from a message and a raw stack trace.
const LogEntryClassName = "LogEntry"

var ErrNoErrorDetails = errors.New("message has no error details")

// MessageBuilder accumulates one report. Every step returns the builder itself;
// Build returns an independent copy, so the builder must not be reused afterwards.
type MessageBuilder struct {
	msg      report.Message
	hasError bool
}

func New() *MessageBuilder {
	return &MessageBuilder{
		msg: report.Message{
			Details: report.Details{
				Version: report.NotSupplied,
				Error:   report.ErrorDetail{StackTrace: []report.Frame{}},
			},
		},
	}
}

func (b *MessageBuilder) SetOccurredOn(t time.Time) *MessageBuilder {
	b.msg.OccurredOn = t.UTC()
	return b
}

func (b *MessageBuilder) SetEnvironmentDetails(env report.Environment) *MessageBuilder {
	b.msg.Details.Environment = env
	return b
}

func (b *MessageBuilder) SetMachineName(name string) *MessageBuilder {
	b.msg.Details.MachineName = name
	return b
}

// SetExceptionDetails records a log message and its raw stack trace.
func (b *MessageBuilder) SetExceptionDetails(message, stackTrace string) *MessageBuilder {
	b.msg.Details.Error = report.ErrorDetail{
		ClassName:  LogEntryClassName,
		Message:    message,
		StackTrace: ParseStackTrace(stackTrace),
	}
	b.hasError = true
	return b
}

// SetErrorDetails records err together with its chain of causes.
func (b *MessageBuilder) SetErrorDetails(err error) *MessageBuilder {
	b.msg.Details.Error = ErrorDetailsFromError(err)
	b.hasError = true
	return b
}

func (b *MessageBuilder) SetClientDetails() *MessageBuilder {
	b.msg.Details.Client = report.DefaultClient()
	return b
}

// SetVersion sets the application version; an empty version keeps "Not supplied".
func (b *MessageBuilder) SetVersion(version string) *MessageBuilder {
	if version != "" {
		b.msg.Details.Version = version
	}
	return b
}

func (b *MessageBuilder) SetTags(tags []string) *MessageBuilder {
	if len(tags) == 0 {
		b.msg.Details.Tags = nil
		return b
	}
	b.msg.Details.Tags = append([]string(nil), tags...)
	return b
}

func (b *MessageBuilder) SetUserCustomData(data map[string]interface{}) *MessageBuilder {
	if len(data) == 0 {
		b.msg.Details.UserCustomData = nil
		return b
	}
	b.msg.Details.UserCustomData = make(map[string]interface{}, len(data))
	for k, v := range data {
		b.msg.Details.UserCustomData[k] = v
	}
	return b
}

func (b *MessageBuilder) SetUser(user *report.Identifier) *MessageBuilder {
	if user == nil {
		b.msg.Details.User = nil
		return b
	}
	u := *user
	b.msg.Details.User = &u
	return b
}

// Build finalizes the message. It fails only when no error details were set.
func (b *MessageBuilder) Build() (*report.Message, error) {
	if !b.hasError {
		return nil, ErrNoErrorDetails
	}
	msg := b.msg
	if msg.OccurredOn.IsZero() {
		msg.OccurredOn = time.Now().UTC()
	}
	return &msg, nil
}

// UserFor picks the explicit identity when set, otherwise wraps the plain user string.
func UserFor(info *report.Identifier, user string) *report.Identifier {
	if info != nil {
		return info
	}
	if user != "" {
		return report.NewIdentifier(user)
	}
	return nil
}
