// Package task describes the messages passed from the collector to the processor.
package task

import (
	"encoding/json"
	"time"

	"github.com/go-errors/errors"
	log "github.com/sirupsen/logrus"

	"crashes/common/format/report"
)

const (
	PROCESS_ENTRY = 1 << iota
)

var ErrInvalidTask = errors.New("Invalid task")

type Entry struct {
	Type    uint            `json:"type"`
	ApiKey  string          `json:"api_key"`
	Time    string          `json:"time,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

func CreateEntryTask(apiKey string, payload []byte) *Entry {
	return &Entry{Type: PROCESS_ENTRY,
		ApiKey:  apiKey,
		Time:    getTimeStamp(),
		Payload: payload}
}

// FromJson decodes a task published by the collector.
func FromJson(data []byte) (*Entry, error) {
	var e Entry
	err := json.Unmarshal(data, &e)
	if err != nil {
		log.WithError(err).Error("Can't parse entry task")
		return nil, err
	}

	if e.Type != PROCESS_ENTRY || len(e.Payload) == 0 {
		return nil, ErrInvalidTask
	}

	if len(e.Time) == 0 {
		e.Time = getTimeStamp()
	}

	return &e, nil
}

// Message decodes the reported message carried by the task.
func (e *Entry) Message() (*report.Message, error) {
	var msg report.Message
	if err := json.Unmarshal(e.Payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func getTimeStamp() string {
	t := time.Now()
	return t.Format(time.RFC3339)
}
