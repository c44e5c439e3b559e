package redis

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int
}

func Connect(config Config) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%s", config.Host, config.Port)

	poolSize := config.PoolSize
	if poolSize <= 0 {
		poolSize = 20
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     poolSize,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
		IdleTimeout:  5 * time.Minute,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if info, err := client.Info(ctx, "server").Result(); err != nil {
		log.Printf("Failed to get Redis info: %v", err)
	} else {
		log.Printf("Redis connected: %s (version %s)", addr, ParseInfo(info)["redis_version"])
	}

	return client, nil
}

var statsKeys = []string{
	"redis_version",
	"connected_clients",
	"used_memory_human",
	"keyspace_hits",
	"keyspace_misses",
	"uptime_in_seconds",
}

// GetStats returns a handful of INFO fields plus the keyspace hit ratio.
func GetStats(client *redis.Client) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	info, err := client.Info(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read Redis info: %w", err)
	}

	return selectStats(ParseInfo(info)), nil
}

func selectStats(all map[string]string) map[string]string {
	stats := make(map[string]string, len(statsKeys)+1)
	for _, key := range statsKeys {
		if value, ok := all[key]; ok {
			stats[key] = value
		}
	}

	hits, _ := strconv.ParseFloat(all["keyspace_hits"], 64)
	misses, _ := strconv.ParseFloat(all["keyspace_misses"], 64)
	if hits+misses > 0 {
		stats["keyspace_hit_ratio"] = strconv.FormatFloat(hits/(hits+misses), 'f', 2, 64)
	}

	return stats
}

// ParseInfo splits the output of the INFO command into key/value pairs.
func ParseInfo(info string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if key, value, found := strings.Cut(line, ":"); found {
			fields[key] = value
		}
	}
	return fields
}
