package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss được trả về bởi các implementation khi key không tồn tại
// (chỉ dùng nội bộ, Get trả về found=false thay vì error)
var ErrCacheMiss = errors.New("cache miss")

// Cache interface định nghĩa contract cho cache layer
// Cho phép swap implementation (Redis, in-memory cho tests)
type Cache interface {
	// Get lấy data từ cache và unmarshal vào dest
	// Returns: (found bool, error)
	// - found = true: cache hit, data đã unmarshal vào dest
	// - found = false: cache miss, dest không bị thay đổi
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set lưu data vào cache với TTL
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete xóa các keys khỏi cache
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern xóa tất cả keys match pattern (SCAN, không dùng KEYS)
	DeletePattern(ctx context.Context, pattern string) error

	// Ping kiểm tra connection
	Ping(ctx context.Context) error

	// Counters (view count, rate tracking)
	Increment(ctx context.Context, key string) (int64, error)
	IncrementBy(ctx context.Context, key string, delta int64) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// GetAndDeleteCounters đọc và reset atomically các counter có prefix
	// Trả về map[key]value. Dùng cho job flush view count.
	GetAndDeleteCounters(ctx context.Context, pattern string) (map[string]int64, error)
}
