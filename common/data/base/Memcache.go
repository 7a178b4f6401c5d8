package base

import (
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

type Memcache struct {
	client     *memcache.Client
	expiration time.Duration
}

func (m *Memcache) Get(key string) (string, error) {
	item, err := m.client.Get(key)
	if err == memcache.ErrCacheMiss {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}

	return string(item.Value), nil
}

func (m *Memcache) Set(key, value string) error {
	err := m.client.Set(&memcache.Item{Key: key, Value: []byte(value), Expiration: m.seconds()})
	return err
}

func (m *Memcache) Incr(key string) (int64, error) {
	v, err := m.client.Increment(key, 1)
	if err == nil {
		return int64(v), nil
	}
	if err != memcache.ErrCacheMiss {
		return 0, err
	}

	err = m.client.Add(&memcache.Item{Key: key, Value: []byte("1"), Expiration: m.seconds()})
	if err == memcache.ErrNotStored {
		// created concurrently
		v, err = m.client.Increment(key, 1)
		return int64(v), err
	}
	if err != nil {
		return 0, err
	}
	return 1, nil
}

func (m *Memcache) seconds() int32 {
	return int32(m.expiration / time.Second)
}

func NewMemcache(servers []string) (*Memcache, error) {
	return &Memcache{memcache.New(servers...), time.Hour * 24 * 30}, nil
}
