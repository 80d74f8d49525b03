// Package main runs the training log MCP server over stdio (for local LLM clients).
// The same MCP server is also mounted on the service at /mcp over HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/2beens/trainlog/internal/activities"
	"github.com/2beens/trainlog/internal/config"
	"github.com/2beens/trainlog/internal/db"
	"github.com/2beens/trainlog/internal/kv"
	trainlogmcp "github.com/2beens/trainlog/internal/mcp"
	"github.com/2beens/trainlog/internal/stats"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	secrets, err := config.LoadSecrets()
	if err != nil {
		log.Fatalf("load secrets: %v", err)
	}
	if secrets.StoreDriver != "" {
		cfg.StoreDriver = secrets.StoreDriver
	}

	ctx := context.Background()

	var dbPool *pgxpool.Pool
	if cfg.StoreDriver == kv.DriverPostgres {
		dbPool, err = db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         cfg.PostgresUser,
			DBPassword:     secrets.PostgresPassword,
			TracingEnabled: false,
		})
		if err != nil {
			log.Fatalf("db pool: %v", err)
		}
		defer dbPool.Close()
	}

	storeParams := kv.Params{
		Driver:         cfg.StoreDriver,
		DiskRootPath:   cfg.DiskRootPath,
		SQLitePath:     cfg.SQLitePath,
		RedisKeyPrefix: cfg.RedisKeyPrefix,
		PostgresPool:   dbPool,
		CacheSizeMB:    cfg.CacheSizeMB,
		CacheExpire:    time.Duration(cfg.CacheExpireSec) * time.Second,
	}
	if cfg.StoreDriver == kv.DriverRedis {
		rdb := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
			Password: secrets.RedisPassword,
		})
		defer rdb.Close()
		storeParams.RedisClient = rdb
	}

	store, closeStore, err := kv.Open(ctx, storeParams)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	repo := activities.NewRepo(store)
	server := trainlogmcp.NewServer(repo, stats.NewAnalyzer(repo))

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}
