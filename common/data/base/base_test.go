package base

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-errors/errors"

	"crashes/common/format/report"
)

func TestMemory(t *testing.T) {
	m := NewMemory()

	if _, err := m.Get("absent"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}

	if err := m.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	if v, err := m.Get("k"); err != nil || v != "v" {
		t.Fatalf("unexpected value %q %v", v, err)
	}

	if _, err := m.Incr("k"); err == nil {
		t.Fatal("expected error incrementing a non numeric value")
	}
}

func TestMemoryIncrConcurrent(t *testing.T) {
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Incr("quota"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	v, err := m.Incr("quota")
	if err != nil || v != 51 {
		t.Fatalf("expected 51, got %d %v", v, err)
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func memoryWithClock(expiration time.Duration) (*Memory, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMemory()
	m.expiration = expiration
	m.now = clock.Now
	return m, clock
}

func TestMemoryExpiration(t *testing.T) {
	m, clock := memoryWithClock(time.Hour)

	if err := m.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Incr("quota"); err != nil {
		t.Fatal(err)
	}

	clock.Advance(30 * time.Minute)
	if v, err := m.Incr("quota"); err != nil || v != 2 {
		t.Fatalf("expected live counter 2, got %d %v", v, err)
	}

	clock.Advance(30 * time.Minute)
	if _, err := m.Get("k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired value, got %v", err)
	}
	if v, err := m.Incr("quota"); err != nil || v != 1 {
		t.Fatalf("expected restarted counter 1, got %d %v", v, err)
	}
}

func TestMemoryPrunesExpired(t *testing.T) {
	m, clock := memoryWithClock(time.Minute)

	for i := 0; i < pruneEvery-1; i++ {
		if err := m.Set(strconv.Itoa(i), "v"); err != nil {
			t.Fatal(err)
		}
	}
	clock.Advance(time.Minute)

	if err := m.Set("fresh", "v"); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 1 {
		t.Fatalf("expected only the fresh value left, got %d", m.Len())
	}
	if v, err := m.Get("fresh"); err != nil || v != "v" {
		t.Fatalf("unexpected value %q %v", v, err)
	}
}

func TestAssignGroup(t *testing.T) {
	r := &Repository{cache: NewMemory()}

	first := &report.Entry{Id: "1", ApiKey: "K", Signature: "Foo.Bar"}
	r.assignGroup(first)
	second := &report.Entry{Id: "2", ApiKey: "K", Signature: "Foo.Bar"}
	r.assignGroup(second)
	other := &report.Entry{Id: "3", ApiKey: "K", Signature: "Main"}
	r.assignGroup(other)
	otherKey := &report.Entry{Id: "4", ApiKey: "L", Signature: "Foo.Bar"}
	r.assignGroup(otherKey)

	if first.GroupId != "1" || second.GroupId != "1" {
		t.Errorf("expected same signature to share group, got %q %q", first.GroupId, second.GroupId)
	}
	if other.GroupId != "3" || otherKey.GroupId != "4" {
		t.Errorf("expected new groups, got %q %q", other.GroupId, otherKey.GroupId)
	}
}

func TestNewCashe(t *testing.T) {
	if _, ok := NewCashe([]string{"127.0.0.1:11211"}, "127.0.0.1:6379", "").(*Memcache); !ok {
		t.Error("expected memcache when servers are listed")
	}
	if _, ok := NewCashe(nil, "127.0.0.1:6379", "").(*Redis); !ok {
		t.Error("expected redis when an address is set")
	}
	if _, ok := NewCashe(nil, "", "").(*Memory); !ok {
		t.Error("expected in-process cache by default")
	}
}
