package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// FakeRedis is an in-process stand-in for the handful of Redis commands the
// task cache issues. Unimplemented commands panic via the nil embedded Cmdable.
type FakeRedis struct {
	redis.Cmdable

	mu   sync.Mutex
	data map[string][]byte
	// Err, when set, is returned by every command.
	Err error

	Gets, Sets, Dels int
}

func NewFakeRedis() *FakeRedis {
	return &FakeRedis{data: map[string][]byte{}}
}

func (f *FakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Gets++
	if f.Err != nil {
		return redis.NewStringResult("", f.Err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *FakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sets++
	if f.Err != nil {
		return redis.NewStatusResult("", f.Err)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		return redis.NewStatusResult("", errors.New("fake redis: unsupported value type"))
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *FakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Dels++
	if f.Err != nil {
		return redis.NewIntResult(0, f.Err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

// Has reports whether key is currently stored.
func (f *FakeRedis) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}
