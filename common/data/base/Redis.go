package base

import (
	"time"

	"github.com/go-redis/redis"
)

type Redis struct {
	client     *redis.Client
	expiration time.Duration
}

func (r *Redis) Get(key string) (string, error) {
	cmd := r.client.Get(key)
	if cmd.Err() == nil {
		return cmd.Result()
	}
	if cmd.Err() == redis.Nil {
		return "", ErrCacheMiss
	}
	return "", cmd.Err()
}

func (r *Redis) Set(key, value string) error {
	return r.client.Set(key, value, r.expiration).Err()
}

func (r *Redis) Incr(key string) (int64, error) {
	v, err := r.client.Incr(key).Result()
	if err != nil {
		return 0, err
	}
	if v == 1 {
		r.client.Expire(key, r.expiration)
	}
	return v, nil
}

func NewRedis(address, password string) (*Redis, error) {
	return &Redis{client: redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       0,
	}), expiration: time.Hour * 24 * 30}, nil
}
