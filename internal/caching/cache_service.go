package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Finance report caching
	GetReport(ctx context.Context, key string, dest interface{}) (bool, error)
	SetReport(ctx context.Context, key string, report interface{}, ttl time.Duration) error
	InvalidateReports(ctx context.Context) error

	// Generic string operations for refresh-token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept both host:port and redis://host:port forms
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	} else {
		log.Printf("Redis connected: %s", parsedAddr)
	}

	return &redisCacheService{client: client}
}

const reportKeyPrefix = "finance:report:"

// GetReport loads a cached report into dest. Returns false on a miss.
func (s *redisCacheService) GetReport(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, reportKeyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return true, nil
}

func (s *redisCacheService) SetReport(ctx context.Context, key string, report interface{}, ttl time.Duration) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return s.client.Set(ctx, reportKeyPrefix+key, data, ttl).Err()
}

// InvalidateReports drops every cached finance report. Called whenever
// a ledger entry changes status.
func (s *redisCacheService) InvalidateReports(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, reportKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("Failed to delete cached report %s: %v", iter.Val(), err)
		}
	}
	return iter.Err()
}

func (s *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (s *redisCacheService) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
