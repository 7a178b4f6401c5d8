package service

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/go-errors/errors"

	"crashes/common/format/report"
	"crashes/common/task"
)

type memoryStore struct {
	mu      sync.Mutex
	entries []report.Entry
	err     error
}

func (s *memoryStore) AddReport(e *report.Entry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	e.Id = "id-" + string(rune('a'+len(s.entries)))
	s.entries = append(s.entries, *e)
	return e.Id, nil
}

func taskFor(t *testing.T, version string, frames ...report.Frame) []byte {
	t.Helper()
	msg := report.Message{}
	msg.Details.Version = version
	msg.Details.Error = report.ErrorDetail{ClassName: "LogEntry", Message: "boom", StackTrace: frames}
	payload, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(task.CreateEntryTask("K", payload))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestHandleTask(t *testing.T) {
	store := &memoryStore{}
	p := NewEntryProcessor([]string{`^UnityEngine\.`}, store)

	entry, err := p.HandleTask(taskFor(t, "1.0.0",
		report.Frame{MethodName: "UnityEngine.Debug.LogError"},
		report.Frame{MethodName: "Foo.Bar", FileName: "Foo.cs", LineNumber: 3},
	))
	if err != nil {
		t.Fatal(err)
	}
	if entry.Signature != "Foo.Bar" || entry.Source != "Foo.cs:3" || entry.ApiKey != "K" {
		t.Errorf("unexpected entry %+v", entry)
	}
	if entry.DateAdded == "" {
		t.Error("expected date added from the task")
	}
	if len(store.entries) != 1 || store.entries[0].Id != entry.Id {
		t.Fatalf("expected entry to be stored, got %+v", store.entries)
	}

	p.SetSkipFrames(nil)
	entry, err = p.HandleTask(taskFor(t, "1.0.0",
		report.Frame{MethodName: "UnityEngine.Debug.LogError"},
	))
	if err != nil {
		t.Fatal(err)
	}
	if entry.Signature != "UnityEngine.Debug.LogError" {
		t.Errorf("expected skip list to be replaced, got %q", entry.Signature)
	}
}

func TestHandleTaskFailures(t *testing.T) {
	t.Run("developer version", func(t *testing.T) {
		store := &memoryStore{}
		_, err := NewEntryProcessor(nil, store).HandleTask(taskFor(t, DEVELOPER_VERSION))
		if !errors.Is(err, ErrSkipped) || len(store.entries) != 0 {
			t.Fatalf("expected skipped entry, got %v %d", err, len(store.entries))
		}
	})

	t.Run("invalid task", func(t *testing.T) {
		_, err := NewEntryProcessor(nil, nil).HandleTask([]byte(`{"type": 1}`))
		if !errors.Is(err, task.ErrInvalidTask) || !errors.Is(err, ErrMalformed) {
			t.Fatalf("expected invalid task, got %v", err)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		store := &memoryStore{err: errors.New("elastic is down")}
		if _, err := NewEntryProcessor(nil, store).HandleTask(taskFor(t, "1.0.0")); err == nil {
			t.Fatal("expected store error")
		}
	})

	t.Run("without store", func(t *testing.T) {
		entry, err := NewEntryProcessor(nil, nil).HandleTask(taskFor(t, "1.0.0"))
		if err != nil || entry.Signature != "boom" {
			t.Fatalf("unexpected result %+v %v", entry, err)
		}
	})
}
