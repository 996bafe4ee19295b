package pipeline

import (
	"context"
	"time"

	"forecast-api/internal/domain/entity"
	"forecast-api/internal/domain/model"
)

// State of the request lifecycle
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Snapshot is an immutable copy of the pipeline state.
// ViewModel is the last successful one and is kept when a later cycle fails.
type Snapshot struct {
	State     State
	City      string
	Sequence  uint64
	CycleID   string
	ViewModel *entity.ForecastViewModel
	Message   string
	ErrorKind string
	UpdatedAt time.Time
}

type UseCase interface {
	// RequestForecast starts a fetch cycle for the trimmed city.
	// Blank input, or any input after Shutdown, is a no-op returning false and the current sequence.
	RequestForecast(city string) (bool, uint64)

	// Snapshot returns the current state
	Snapshot() Snapshot

	// Await blocks until the cycle with the given sequence (or a later one) has settled
	Await(ctx context.Context, sequence uint64) (Snapshot, error)

	// Health reports the pipeline as an application component
	Health() model.ComponentHealthStatus

	// Shutdown cancels in-flight cycles and waits for them to return
	Shutdown(ctx context.Context) error
}
