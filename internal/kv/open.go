package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const (
	DriverMemory   = "memory"
	DriverDisk     = "disk"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Params struct {
	Driver string

	DiskRootPath string
	SQLitePath   string

	// redis and postgres connections are owned by the caller
	RedisClient    redis.Cmdable
	RedisKeyPrefix string
	PostgresPool   *pgxpool.Pool

	// CacheSizeMB > 0 puts a freecache layer in front of the store
	CacheSizeMB int
	CacheExpire time.Duration
}

// Open creates the store selected by params.Driver. The returned close func releases
// resources the store owns itself (e.g. the sqlite db), and is never nil.
func Open(ctx context.Context, params Params) (Store, func() error, error) {
	noopClose := func() error { return nil }

	var store Store
	closeFunc := noopClose

	switch strings.ToLower(params.Driver) {
	case "", DriverMemory:
		store = NewMemoryStore()
	case DriverDisk:
		diskStore, err := NewDiskStore(params.DiskRootPath)
		if err != nil {
			return nil, noopClose, fmt.Errorf("new disk store: %w", err)
		}
		store = diskStore
	case DriverRedis:
		if params.RedisClient == nil {
			return nil, noopClose, errors.New("redis driver selected, but redis client is nil")
		}
		keyPrefix := params.RedisKeyPrefix
		if keyPrefix == "" {
			keyPrefix = DefaultRedisKeyPrefix
		}
		store = NewRedisStore(params.RedisClient, keyPrefix)
	case DriverPostgres:
		if params.PostgresPool == nil {
			return nil, noopClose, errors.New("postgres driver selected, but db pool is nil")
		}
		pgStore := NewPostgresStore(params.PostgresPool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			return nil, noopClose, err
		}
		store = pgStore
	case DriverSQLite:
		sqliteStore, err := OpenSQLiteStore(ctx, params.SQLitePath)
		if err != nil {
			return nil, noopClose, err
		}
		store = sqliteStore
		closeFunc = sqliteStore.Close
	default:
		return nil, noopClose, fmt.Errorf("%w: %s", ErrUnknownDriver, params.Driver)
	}

	if params.CacheSizeMB > 0 {
		log.Debugf("kv: using %d MB cache in front of [%s] store", params.CacheSizeMB, params.Driver)
		store = NewCachedStore(store, params.CacheSizeMB*1024*1024, params.CacheExpire)
	}

	return store, closeFunc, nil
}
