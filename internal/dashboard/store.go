package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dsablic/klio/internal/model"
)

// ErrNoSnapshot is returned when no (unexpired) snapshot exists.
var ErrNoSnapshot = errors.New("no analysis snapshot for directory")

// SnapshotStore persists the last committed stats per directory so they
// can be shown again without re-running the analysis.
type SnapshotStore interface {
	Save(ctx context.Context, snap model.Snapshot) error
	Load(ctx context.Context, dirID string) (model.Snapshot, error)
}

// FileStore keeps one JSON file per directory.
type FileStore struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewFileStore stores snapshots under dir. A zero ttl never expires them.
func NewFileStore(dir string, ttl time.Duration) *FileStore {
	return &FileStore{dir: dir, ttl: ttl, now: time.Now}
}

// DefaultCacheDir returns the per-user cache directory for snapshots.
func DefaultCacheDir() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = filepath.Join(os.Getenv("HOME"), ".cache")
	}
	return filepath.Join(cacheDir, "klio", "snapshots")
}

func (s *FileStore) path(dirID string) string {
	return filepath.Join(s.dir, url.PathEscape(dirID)+".json")
}

func (s *FileStore) Save(_ context.Context, snap model.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(s.path(snap.DirectoryID), data, 0600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context, dirID string) (model.Snapshot, error) {
	data, err := os.ReadFile(s.path(dirID))
	if errors.Is(err, os.ErrNotExist) {
		return model.Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.expired(snap) {
		return model.Snapshot{}, ErrNoSnapshot
	}
	return snap, nil
}

func (s *FileStore) expired(snap model.Snapshot) bool {
	if s.ttl <= 0 {
		return false
	}
	at, err := time.Parse(time.RFC3339, snap.GeneratedAt)
	if err != nil {
		return true
	}
	return s.now().After(at.Add(s.ttl))
}

const redisKeyPrefix = "klio:snapshot:"

// RedisStore keeps snapshots in Redis, which lets several users of one
// backend share them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore connects to the Redis server at redisURL
// (redis://[:password@]host:port/db) and checks it is reachable.
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	logger.Debug("redis snapshot store ready", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return &RedisStore{client: client, ttl: ttl, logger: logger}, nil
}

func (s *RedisStore) Save(ctx context.Context, snap model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+snap.DirectoryID, data, s.ttl).Err(); err != nil {
		s.logger.Error("redis set failed", zap.String("directory", snap.DirectoryID), zap.Error(err))
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, dirID string) (model.Snapshot, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+dirID).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("redis get failed: %w", err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
