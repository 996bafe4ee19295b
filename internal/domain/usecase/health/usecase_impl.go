package health

import (
	"forecast-api/internal/domain/gateway/health"
	"forecast-api/internal/domain/model"
)

type healthUseCase struct {
	redisGateway    health.HealthGateway
	pipelineGateway health.HealthGateway
}

func NewHealthUseCase(redisGateway health.HealthGateway, pipelineGateway health.HealthGateway) UseCase {
	return &healthUseCase{
		redisGateway:    redisGateway,
		pipelineGateway: pipelineGateway,
	}
}

// CheckHealth is DOWN when any component is DOWN; an unconfigured (UNKNOWN) redis does not count
func (useCase *healthUseCase) CheckHealth() model.HealthResponse {
	redisHealth := useCase.redisGateway.Health()
	pipelineHealth := useCase.pipelineGateway.Health()

	overallStatus := model.StatusUp
	if redisHealth.Status == model.StatusDown || pipelineHealth.Status != model.StatusUp {
		overallStatus = model.StatusDown
	}

	return model.HealthResponse{
		Status:   overallStatus,
		Redis:    redisHealth,
		Pipeline: pipelineHealth,
	}
}
