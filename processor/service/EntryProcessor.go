package service

import (
	"fmt"
	"sync"

	"github.com/go-errors/errors"
	log "github.com/sirupsen/logrus"

	"crashes/common/format/report"
	"crashes/common/task"
	"crashes/processor/pipeline"
)

var (
	ErrSkipped   = errors.New("Skipped developers' entry")
	ErrMalformed = errors.New("Malformed entry task")
)

// Store keeps processed entries.
type Store interface {
	AddReport(e *report.Entry) (string, error)
}

type EntryProcessor struct {
	mu    sync.RWMutex
	store Store
	pline []pipeline.Stage
}

// NewEntryProcessor creates a processor indexing into store. A nil store only runs the pipeline.
func NewEntryProcessor(skipFrames []string, store Store) *EntryProcessor {
	p := &EntryProcessor{store: store}
	p.SetSkipFrames(skipFrames)
	return p
}

func (p *EntryProcessor) SetSkipFrames(skipFrames []string) {
	pline := []pipeline.Stage{
		pipeline.NewRx(skipFrames),
		&pipeline.SignatureAndSource{},
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pline = pline
}

// HandleTask processes a task published by the collector.
func (p *EntryProcessor) HandleTask(message []byte) (*report.Entry, error) {
	t, err := task.FromJson(message)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return p.HandleEntry(t)
}

func (p *EntryProcessor) HandleEntry(t *task.Entry) (*report.Entry, error) {
	msg, err := t.Message()
	if err != nil {
		log.WithError(err).Error("Can't parse reported message")
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if msg.Details.Version == DEVELOPER_VERSION {
		log.WithField("api_key", t.ApiKey).Debug("Skipped developers' entry")
		return nil, ErrSkipped
	}

	entry := &report.Entry{
		ApiKey:    t.ApiKey,
		DateAdded: t.Time,
		Message:   *msg,
	}

	p.mu.RLock()
	pline := p.pline
	p.mu.RUnlock()
	pipeline.Run(entry, pline...)

	if p.store != nil {
		if _, err = p.store.AddReport(entry); err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"id":        entry.Id,
		"group":     entry.GroupId,
		"signature": entry.Signature,
		"source":    entry.Source,
	}).Info("Processed entry")
	return entry, nil
}
