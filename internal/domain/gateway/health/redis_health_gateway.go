package health

import (
	"context"
	"time"

	"forecast-api/internal/domain/model"
	"forecast-api/pkg/redis"
)

type RedisHealthGateway struct {
	Client *redis.Client
}

var _ HealthGateway = (*RedisHealthGateway)(nil)

// NewRedisHealthGateway creates the gateway; a nil client reports UNKNOWN since Redis is optional
func NewRedisHealthGateway(client *redis.Client) *RedisHealthGateway {
	return &RedisHealthGateway{Client: client}
}

func (gateway *RedisHealthGateway) Health() model.ComponentHealthStatus {
	if gateway.Client == nil {
		return model.ComponentHealthStatus{
			Status: model.StatusUnknown,
			Details: map[string]string{
				"message": "redis not configured",
			},
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	details := redis.HealthDetails(gateway.Client)
	if err := redis.HealthCheck(ctx, gateway.Client); err != nil {
		details["message"] = err.Error()
		return model.ComponentHealthStatus{
			Status:  model.StatusDown,
			Details: details,
		}
	}

	details["message"] = string(model.StatusUp)
	return model.ComponentHealthStatus{
		Status:  model.StatusUp,
		Details: details,
	}
}
