package health

import "forecast-api/internal/domain/model"

// HealthGateway reports the health of one application component
type HealthGateway interface {
	Health() model.ComponentHealthStatus
}
