package base

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

const pruneEvery = 1024

type memoryItem struct {
	value   string
	expires time.Time
}

// Memory keeps values in process. Used when no cache server is configured.
// Values expire like they do in redis; expired ones are pruned every pruneEvery writes.
type Memory struct {
	values     *xsync.MapOf[string, memoryItem]
	expiration time.Duration
	now        func() time.Time
	writes     atomic.Int64
}

func (m *Memory) Get(key string) (string, error) {
	v, ok := m.values.Load(key)
	if !ok || m.expired(v) {
		return "", ErrCacheMiss
	}
	return v.value, nil
}

func (m *Memory) Set(key, value string) error {
	m.values.Store(key, memoryItem{value: value, expires: m.now().Add(m.expiration)})
	m.written()
	return nil
}

// Incr keeps the expiry of a live counter, a new counter expires after m.expiration.
func (m *Memory) Incr(key string) (int64, error) {
	var counter int64
	var parseErr error
	m.values.Compute(key, func(old memoryItem, loaded bool) (memoryItem, bool) {
		counter = 0
		if !loaded || m.expired(old) {
			old = memoryItem{expires: m.now().Add(m.expiration)}
		} else {
			counter, parseErr = strconv.ParseInt(old.value, 10, 64)
			if parseErr != nil {
				return old, false
			}
		}
		counter++
		old.value = strconv.FormatInt(counter, 10)
		return old, false
	})
	if parseErr != nil {
		return 0, parseErr
	}
	m.written()
	return counter, nil
}

// Len counts the stored values, expired ones included until pruned.
func (m *Memory) Len() int {
	return m.values.Size()
}

func (m *Memory) expired(v memoryItem) bool {
	return !m.now().Before(v.expires)
}

func (m *Memory) written() {
	if m.writes.Add(1)%pruneEvery == 0 {
		m.prune()
	}
}

func (m *Memory) prune() {
	m.values.Range(func(key string, v memoryItem) bool {
		if m.expired(v) {
			m.values.Compute(key, func(old memoryItem, loaded bool) (memoryItem, bool) {
				return old, !loaded || m.expired(old)
			})
		}
		return true
	})
}

func NewMemory() *Memory {
	return &Memory{
		values:     xsync.NewMapOf[string, memoryItem](),
		expiration: time.Hour * 24 * 30,
		now:        time.Now,
	}
}
