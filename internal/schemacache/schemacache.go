// Package schemacache keeps converted RAML schemas between launcher runs so a
// restart does not refetch and reconvert the RAML tree.
package schemacache

import (
	"context"
	"crypto/md5" //nolint:gosec // cache key only, not a security boundary
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/percolate/pedantic/converter"
	"github.com/percolate/pedantic/internal/fileutil"
	"github.com/percolate/pedantic/raml"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is the freshness window of a cached schema.
const DefaultTTL = 1800 * time.Second

// Store persists converted schemas by key.
type Store interface {
	// Get returns the entry for key. ok is false when there is no fresh entry.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Put stores data under key.
	Put(ctx context.Context, key string, data []byte) error
}

// Key returns the cache key for a RAML location: the hex MD5 of the string.
func Key(location string) string {
	sum := md5.Sum([]byte(location)) //nolint:gosec // cache key only
	return hex.EncodeToString(sum[:])
}

// FileStore keeps entries as <Dir>/<key>.json. An entry is fresh while its
// modification time is within TTL.
type FileStore struct {
	Dir string
	TTL time.Duration

	now func() time.Time
}

// NewFileStore creates a FileStore in dir. A zero ttl means DefaultTTL.
func NewFileStore(dir string, ttl time.Duration) *FileStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &FileStore{Dir: dir, TTL: ttl, now: time.Now}
}

// Path returns the file backing key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := s.Path(key)
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	if info.ModTime().Before(now().Add(-s.TTL)) {
		return nil, false, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from a hash
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Put implements Store.
func (s *FileStore) Put(_ context.Context, key string, data []byte) error {
	return fileutil.WriteAtomic(s.Path(key), data, fileutil.OwnerReadWrite)
}

// RedisStore keeps entries in Redis with an expiry of TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to the Redis server at addr. A zero ttl means
// DefaultTTL.
func NewRedisStore(ctx context.Context, addr string, db int, ttl time.Duration) (*RedisStore, error) {
	if addr == "" {
		return nil, fmt.Errorf("schemacache: redis address is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("schemacache: failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) dataKey(key string) string {
	return "pedantic:schema:" + key
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.dataKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("schemacache: failed to get %s: %w", key, err)
	}
	return data, true, nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.dataKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("schemacache: failed to set %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Cache returns converted schemas, converting on a miss.
type Cache struct {
	Store     Store
	Converter *converter.Converter
	// Logger receives progress output. If nil, logging is disabled.
	Logger raml.Logger
}

func (c *Cache) log() raml.Logger {
	return raml.OrNop(c.Logger)
}

// Schema returns the converted JSON for the RAML document at location (a
// URL or file path). Cache errors are logged and treated as misses; a
// conversion error is returned.
func (c *Cache) Schema(ctx context.Context, location string) ([]byte, error) {
	key := Key(location)

	data, ok, err := c.Store.Get(ctx, key)
	switch {
	case err != nil:
		c.log().Warn("schema cache read failed", "key", key, "error", err)
	case ok:
		c.log().Info("RAML: cache found", "key", key)
		return data, nil
	}

	c.log().Info("RAML: fetching/parsing", "location", location)
	conv := c.Converter
	if conv == nil {
		conv = converter.New()
	}
	result, err := conv.ConvertTo(ctx, location, io.Discard)
	if err != nil {
		return nil, err
	}

	if err := c.Store.Put(ctx, key, result.Output); err != nil {
		c.log().Warn("schema cache write failed", "key", key, "error", err)
	}
	return result.Output, nil
}
