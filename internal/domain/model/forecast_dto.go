package model

import (
	"time"

	"forecast-api/internal/domain/entity"
)

type ForecastRequestDTO struct {
	City string `json:"city"`
}

type ForecastAcceptedDTO struct {
	Accepted bool   `json:"accepted"`
	Sequence uint64 `json:"sequence"`
}

// ForecastSnapshotDTO is the pipeline state as seen by the presentation layer.
// ViewModel is the last successful one; Stale is set when it does not belong to the latest request.
type ForecastSnapshotDTO struct {
	State     string                    `json:"state"`
	City      string                    `json:"city,omitempty"`
	Sequence  uint64                    `json:"sequence"`
	ViewModel *entity.ForecastViewModel `json:"viewModel,omitempty"`
	Stale     bool                      `json:"stale"`
	Message   string                    `json:"message,omitempty"`
	ErrorKind string                    `json:"errorKind,omitempty"`
	UpdatedAt time.Time                 `json:"updatedAt"`
}
