package pipeline

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"forecast-api/internal/domain/entity"
	"forecast-api/internal/domain/model"
	"forecast-api/internal/domain/usecase/forecast"
	"forecast-api/pkg/log"
	"forecast-api/pkg/metrics"
	"forecast-api/pkg/msg"
)

const DefaultCycleTimeout = 10 * time.Second

const (
	outcomeReady     = "ready"
	outcomeFailed    = "failed"
	outcomeDiscarded = "discarded"
)

type pipelineUseCase struct {
	assembler    forecast.UseCase
	cycleTimeout time.Duration
	clock        clockwork.Clock
	metrics      *metrics.Collector

	ctx    context.Context
	cancel context.CancelFunc
	cycles sync.WaitGroup

	mu       sync.Mutex
	snapshot Snapshot
	// settled is closed and replaced every time the latest cycle settles
	settled chan struct{}
}

// NewPipelineUseCase creates an idle pipeline running cycles through assembler
func NewPipelineUseCase(assembler forecast.UseCase, cycleTimeout time.Duration, clock clockwork.Clock, collector *metrics.Collector) UseCase {
	if cycleTimeout <= 0 {
		cycleTimeout = DefaultCycleTimeout
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &pipelineUseCase{
		assembler:    assembler,
		cycleTimeout: cycleTimeout,
		clock:        clock,
		metrics:      collector,
		ctx:          ctx,
		cancel:       cancel,
		snapshot: Snapshot{
			State:     StateIdle,
			UpdatedAt: clock.Now(),
		},
		settled: make(chan struct{}),
	}
}

// RequestForecast tags the cycle with the next sequence and runs it in its own goroutine
func (p *pipelineUseCase) RequestForecast(city string) (bool, uint64) {
	city = strings.TrimSpace(city)

	p.mu.Lock()
	if city == "" || p.ctx.Err() != nil {
		sequence := p.snapshot.Sequence
		p.mu.Unlock()
		log.Debug("Ignoring forecast request", zap.String("city", city), zap.Uint64("sequence", sequence))
		return false, sequence
	}

	p.snapshot.Sequence++
	sequence := p.snapshot.Sequence
	cycleID := uuid.NewString()
	p.snapshot.State = StateLoading
	p.snapshot.City = city
	p.snapshot.CycleID = cycleID
	p.snapshot.Message = ""
	p.snapshot.ErrorKind = ""
	p.snapshot.UpdatedAt = p.clock.Now()
	p.cycles.Add(1)
	p.mu.Unlock()

	log.Info("Fetch cycle started",
		zap.String("cycle_id", cycleID),
		zap.Uint64("sequence", sequence),
		zap.String("city", city))

	go p.runCycle(sequence, cycleID, city)

	return true, sequence
}

// runCycle assembles the view-model within the cycle timeout and applies the result
func (p *pipelineUseCase) runCycle(sequence uint64, cycleID string, city string) {
	defer p.cycles.Done()

	ctx, cancel := context.WithTimeout(p.ctx, p.cycleTimeout)
	defer cancel()

	start := p.clock.Now()
	viewModel, err := p.assembler.Assemble(ctx, city)
	p.apply(sequence, cycleID, city, viewModel, err, p.clock.Since(start))
}

// apply stores the result only when it belongs to the most recent request
func (p *pipelineUseCase) apply(sequence uint64, cycleID string, city string, viewModel *entity.ForecastViewModel, err error, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fields := []zap.Field{
		zap.String("cycle_id", cycleID),
		zap.Uint64("sequence", sequence),
		zap.String("city", city),
		zap.Duration("duration", duration),
	}

	if sequence != p.snapshot.Sequence {
		log.Info("Discarding stale fetch result", append(fields, zap.Uint64("latest_sequence", p.snapshot.Sequence))...)
		p.recordCycle(outcomeDiscarded, duration)
		return
	}

	if err != nil {
		kind := model.ErrorKind(err)
		p.snapshot.State = StateFailed
		p.snapshot.Message = p.messageFor(err, city)
		p.snapshot.ErrorKind = kind

		if kind == model.KindIncompleteData {
			log.Error("Fetch cycle produced incomplete data", append(fields, zap.Error(err))...)
		} else {
			log.Warn("Fetch cycle failed", append(fields, zap.String("kind", kind), zap.Error(err))...)
		}
		p.recordCycle(outcomeFailed, duration)
		if p.metrics != nil {
			p.metrics.RecordCycleError(kind)
		}
	} else {
		p.snapshot.State = StateReady
		p.snapshot.ViewModel = viewModel
		p.snapshot.Message = ""
		p.snapshot.ErrorKind = ""

		log.Info("Fetch cycle completed", fields...)
		p.recordCycle(outcomeReady, duration)
	}

	p.snapshot.UpdatedAt = p.clock.Now()
	close(p.settled)
	p.settled = make(chan struct{})
}

func (p *pipelineUseCase) recordCycle(outcome string, duration time.Duration) {
	if p.metrics != nil {
		p.metrics.RecordCycle(outcome, duration)
	}
}

// messageFor returns the single human-readable message for a failed cycle
func (p *pipelineUseCase) messageFor(err error, city string) string {
	switch model.ErrorKind(err) {
	case model.KindCityNotFound:
		var notFound *model.CityNotFoundError
		errors.As(err, &notFound)
		return msg.GetMessage("forecast.error.city-not-found", notFound.Query)
	case model.KindTransport:
		return msg.GetMessage("forecast.error.transport")
	case model.KindForecastUnavailable:
		return msg.GetMessage("forecast.error.forecast-unavailable", city)
	case model.KindIncompleteData:
		return msg.GetMessage("forecast.error.incomplete-data")
	case model.KindInvalidArgument:
		return msg.GetMessage("forecast.error.empty-city")
	default:
		return msg.GetMessage("forecast.error.unknown")
	}
}

// Snapshot returns a copy that shares nothing with the pipeline
func (p *pipelineUseCase) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *pipelineUseCase) snapshotLocked() Snapshot {
	snapshot := p.snapshot
	snapshot.ViewModel = p.snapshot.ViewModel.Clone()
	return snapshot
}

// Await waits until the latest sequence is at least sequence and no cycle is loading
func (p *pipelineUseCase) Await(ctx context.Context, sequence uint64) (Snapshot, error) {
	for {
		p.mu.Lock()
		snapshot := p.snapshotLocked()
		settled := p.settled
		p.mu.Unlock()

		if snapshot.Sequence >= sequence && snapshot.State != StateLoading {
			return snapshot, nil
		}

		select {
		case <-settled:
		case <-ctx.Done():
			return snapshot, ctx.Err()
		}
	}
}

// Health reports the pipeline state; a failed cycle does not make the component DOWN
func (p *pipelineUseCase) Health() model.ComponentHealthStatus {
	snapshot := p.Snapshot()

	status := model.StatusUp
	if p.ctx.Err() != nil {
		status = model.StatusDown
	}

	details := map[string]string{
		"state":      string(snapshot.State),
		"sequence":   strconv.FormatUint(snapshot.Sequence, 10),
		"city":       snapshot.City,
		"updated_at": snapshot.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if snapshot.ErrorKind != "" {
		details["last_error_kind"] = snapshot.ErrorKind
	}

	return model.ComponentHealthStatus{
		Status:  status,
		Details: details,
	}
}

// Shutdown refuses new requests, cancels in-flight cycles and waits for them until ctx ends
func (p *pipelineUseCase) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.cancel()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.cycles.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
