package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "symptom-checker:embedding:"

// RedisStore shares embeddings between processes. Values are a little-endian uint32
// length followed by float32 components.
type RedisStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisStore connects and pings the server before returning
func NewRedisStore(ctx context.Context, addr, password string, ttl time.Duration) (*RedisStore, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address required")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

// Get loads a vector; ok is false on a miss
func (s *RedisStore) Get(ctx context.Context, key string) ([]float32, bool, error) {
	data, err := s.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	vec, err := decodeVector(data)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

// Set stores a vector with the configured TTL (0 keeps it indefinitely)
func (s *RedisStore) Set(ctx context.Context, key string, vec []float32) error {
	return s.rdb.Set(ctx, redisKeyPrefix+key, encodeVector(vec), s.ttl).Err()
}

// Close releases the client
func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4+len(vec)*4)
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(vec)))
	off := 4
	for _, v := range vec {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
		off += 4
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("cached vector too small: %d bytes", len(data))
	}
	length := int(binary.LittleEndian.Uint32(data[:4]))
	data = data[4:]
	if len(data) != length*4 {
		return nil, fmt.Errorf("cached vector length mismatch: want %d values, have %d bytes", length, len(data))
	}
	vec := make([]float32, length)
	for i := 0; i < length; i++ {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4 : (i+1)*4]))
	}
	return vec, nil
}
