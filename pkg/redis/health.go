package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const healthCheckKey = "health_check_test"

// HealthCheck performs a health check on the Redis connection
func HealthCheck(ctx context.Context, client *Client) error {
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	rdb := client.GetClient()
	testValue := strconv.FormatInt(time.Now().UnixNano(), 10)

	if err := rdb.Set(ctx, healthCheckKey, testValue, time.Minute).Err(); err != nil {
		return fmt.Errorf("set operation failed: %w", err)
	}

	value, err := rdb.Get(ctx, healthCheckKey).Result()
	if err != nil {
		return fmt.Errorf("get operation failed: %w", err)
	}
	if value != testValue {
		return fmt.Errorf("value mismatch: expected %s, got %s", testValue, value)
	}

	if err := rdb.Del(ctx, healthCheckKey).Err(); err != nil {
		return fmt.Errorf("delete operation failed: %w", err)
	}

	return nil
}

// HealthDetails describes the connection for health responses
func HealthDetails(client *Client) map[string]string {
	config := client.GetConfig()
	stats := client.GetClient().PoolStats()

	return map[string]string{
		"address":     config.Addr(),
		"database":    strconv.Itoa(config.Database),
		"total_conns": strconv.FormatUint(uint64(stats.TotalConns), 10),
		"idle_conns":  strconv.FormatUint(uint64(stats.IdleConns), 10),
	}
}
