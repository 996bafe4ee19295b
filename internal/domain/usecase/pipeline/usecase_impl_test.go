package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"forecast-api/internal/domain/entity"
	"forecast-api/internal/domain/model"
	"forecast-api/internal/domain/usecase/forecast"
	"forecast-api/pkg/metrics"
	"forecast-api/pkg/msg"
)

func TestMain(m *testing.M) {
	if err := msg.Init("../../../../configs/messages.yml"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeAssembler runs a per-city function in place of the provider calls
type fakeAssembler struct {
	mu    sync.Mutex
	calls []string
	fn    func(ctx context.Context, city string) (*entity.ForecastViewModel, error)
}

func (a *fakeAssembler) LookupCurrent(context.Context, string) (*entity.CurrentConditions, error) {
	return nil, errors.New("not used")
}

func (a *fakeAssembler) FetchForecast(context.Context, *entity.CurrentConditions) (*forecast.Forecast, error) {
	return nil, errors.New("not used")
}

func (a *fakeAssembler) Assemble(ctx context.Context, city string) (*entity.ForecastViewModel, error) {
	a.mu.Lock()
	a.calls = append(a.calls, city)
	a.mu.Unlock()
	return a.fn(ctx, city)
}

func (a *fakeAssembler) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

func viewModelFor(city string, temperature float64) *entity.ForecastViewModel {
	viewModel, _ := forecast.Merge(&entity.CurrentConditions{
		Location:    entity.Location{Query: city, Name: city},
		Temperature: temperature,
	}, nil, nil, entity.UVIndexUnavailable(), "fake")
	return viewModel
}

func awaitContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestRequestForecast_LateResultIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	assembler := &fakeAssembler{fn: func(ctx context.Context, city string) (*entity.ForecastViewModel, error) {
		if city == "Phnom Penh" {
			<-release
			return viewModelFor("Phnom Penh", 31.4), nil
		}
		return viewModelFor("Paris", 14.2), nil
	}}
	collector := metrics.NewCollector("forecast", nil)
	uc := NewPipelineUseCase(assembler, time.Second, nil, collector)

	accepted, first := uc.RequestForecast("Phnom Penh")
	if !accepted || first != 1 {
		t.Fatalf("expected first request accepted with sequence 1, got %v %d", accepted, first)
	}
	accepted, second := uc.RequestForecast("Paris")
	if !accepted || second != 2 {
		t.Fatalf("expected second request accepted with sequence 2, got %v %d", accepted, second)
	}

	snapshot, err := uc.Await(awaitContext(t), second)
	if err != nil {
		t.Fatalf("unexpected await error: %v", err)
	}
	if snapshot.State != StateReady || snapshot.ViewModel.Current.Location.Name != "Paris" {
		t.Fatalf("expected Ready for Paris, got %s %+v", snapshot.State, snapshot.ViewModel)
	}

	// let the Phnom Penh response arrive after Paris was applied
	close(release)
	if err := uc.Shutdown(awaitContext(t)); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}

	snapshot = uc.Snapshot()
	if snapshot.ViewModel.Current.Location.Name != "Paris" || snapshot.City != "Paris" {
		t.Errorf("stale Phnom Penh result overwrote Paris: %+v", snapshot.ViewModel.Current.Location)
	}
	if snapshot.Sequence != 2 {
		t.Errorf("expected sequence 2, got %d", snapshot.Sequence)
	}
	if got := testutil.ToFloat64(collector.CyclesTotal.WithLabelValues(outcomeDiscarded)); got != 1 {
		t.Errorf("expected 1 discarded cycle, got %v", got)
	}
	if got := testutil.ToFloat64(collector.CyclesTotal.WithLabelValues(outcomeReady)); got != 1 {
		t.Errorf("expected 1 ready cycle, got %v", got)
	}
}

func TestRequestForecast_BlankInputIsNoop(t *testing.T) {
	assembler := &fakeAssembler{fn: func(context.Context, string) (*entity.ForecastViewModel, error) {
		return viewModelFor("Paris", 10), nil
	}}
	uc := NewPipelineUseCase(assembler, time.Second, nil, nil)
	before := uc.Snapshot()

	for _, input := range []string{"", "   ", "\t\n"} {
		accepted, sequence := uc.RequestForecast(input)
		if accepted || sequence != 0 {
			t.Errorf("expected %q to be ignored, got %v %d", input, accepted, sequence)
		}
	}

	after := uc.Snapshot()
	if after.State != StateIdle || after.Sequence != before.Sequence || !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Errorf("expected state untouched, got %+v", after)
	}
	if assembler.callCount() != 0 {
		t.Errorf("expected no fetch cycle, got %d", assembler.callCount())
	}
}

func TestRequestForecast_HungProviderStillSettles(t *testing.T) {
	assembler := &fakeAssembler{fn: func(ctx context.Context, city string) (*entity.ForecastViewModel, error) {
		<-ctx.Done()
		return nil, &model.TransportError{Provider: "fake", Err: ctx.Err()}
	}}
	uc := NewPipelineUseCase(assembler, 50*time.Millisecond, nil, nil)

	_, sequence := uc.RequestForecast("Paris")
	if uc.Snapshot().State != StateLoading {
		t.Fatalf("expected Loading right after the request")
	}

	snapshot, err := uc.Await(awaitContext(t), sequence)
	if err != nil {
		t.Fatalf("cycle never settled: %v", err)
	}
	if snapshot.State != StateFailed || snapshot.ErrorKind != model.KindTransport {
		t.Errorf("expected Failed with transport kind, got %s %s", snapshot.State, snapshot.ErrorKind)
	}
	if snapshot.Message == "" || strings.HasPrefix(snapshot.Message, "Message not found") {
		t.Errorf("expected a human-readable message, got %q", snapshot.Message)
	}
}

func TestRequestForecast_FailureKeepsPreviousViewModel(t *testing.T) {
	assembler := &fakeAssembler{fn: func(_ context.Context, city string) (*entity.ForecastViewModel, error) {
		if city == "Atlantis" {
			return nil, &model.CityNotFoundError{Query: city}
		}
		return viewModelFor(city, 14.2), nil
	}}
	collector := metrics.NewCollector("forecast", nil)
	uc := NewPipelineUseCase(assembler, time.Second, nil, collector)

	_, sequence := uc.RequestForecast("Paris")
	if _, err := uc.Await(awaitContext(t), sequence); err != nil {
		t.Fatalf("unexpected await error: %v", err)
	}

	_, sequence = uc.RequestForecast("  Atlantis  ")
	snapshot, err := uc.Await(awaitContext(t), sequence)
	if err != nil {
		t.Fatalf("unexpected await error: %v", err)
	}

	if snapshot.State != StateFailed || snapshot.ErrorKind != model.KindCityNotFound {
		t.Fatalf("expected Failed with city_not_found, got %s %s", snapshot.State, snapshot.ErrorKind)
	}
	if !strings.Contains(snapshot.Message, "Atlantis") {
		t.Errorf("expected message to carry the query, got %q", snapshot.Message)
	}
	if snapshot.ViewModel == nil || snapshot.ViewModel.Current.Location.Name != "Paris" {
		t.Errorf("expected the Paris view-model to be kept, got %+v", snapshot.ViewModel)
	}
	if got := testutil.ToFloat64(collector.CycleErrorsTotal.WithLabelValues(model.KindCityNotFound)); got != 1 {
		t.Errorf("expected 1 city_not_found error, got %v", got)
	}

	health := uc.Health()
	if health.Status != model.StatusUp || health.Details["last_error_kind"] != model.KindCityNotFound {
		t.Errorf("unexpected health %+v", health)
	}
}

func TestRequestForecast_IncompleteDataFails(t *testing.T) {
	assembler := &fakeAssembler{fn: func(context.Context, string) (*entity.ForecastViewModel, error) {
		return nil, model.ErrIncompleteData
	}}
	uc := NewPipelineUseCase(assembler, time.Second, nil, nil)

	_, sequence := uc.RequestForecast("Paris")
	snapshot, err := uc.Await(awaitContext(t), sequence)
	if err != nil {
		t.Fatalf("unexpected await error: %v", err)
	}
	if snapshot.State != StateFailed || snapshot.ErrorKind != model.KindIncompleteData {
		t.Errorf("expected Failed with incomplete_data, got %s %s", snapshot.State, snapshot.ErrorKind)
	}
	if snapshot.ViewModel != nil {
		t.Error("expected no view-model")
	}
}

func TestAwait_ContextEnds(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	assembler := &fakeAssembler{fn: func(context.Context, string) (*entity.ForecastViewModel, error) {
		<-block
		return viewModelFor("Paris", 10), nil
	}}
	uc := NewPipelineUseCase(assembler, time.Minute, nil, nil)

	_, sequence := uc.RequestForecast("Paris")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	snapshot, err := uc.Await(ctx, sequence)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if snapshot.State != StateLoading {
		t.Errorf("expected Loading, got %s", snapshot.State)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	assembler := &fakeAssembler{fn: func(context.Context, string) (*entity.ForecastViewModel, error) {
		viewModel := viewModelFor("Paris", 10)
		viewModel.Hourly = []entity.HourlySample{{Timestamp: 1, Temperature: 10}}
		return viewModel, nil
	}}
	uc := NewPipelineUseCase(assembler, time.Second, nil, nil)

	_, sequence := uc.RequestForecast("Paris")
	snapshot, err := uc.Await(awaitContext(t), sequence)
	if err != nil {
		t.Fatalf("unexpected await error: %v", err)
	}

	snapshot.ViewModel.Hourly[0].Temperature = 99
	if uc.Snapshot().ViewModel.Hourly[0].Temperature != 10 {
		t.Error("snapshot shares the view-model with the pipeline")
	}
}

func TestShutdown_RefusesNewRequests(t *testing.T) {
	assembler := &fakeAssembler{fn: func(context.Context, string) (*entity.ForecastViewModel, error) {
		return viewModelFor("Paris", 10), nil
	}}
	uc := NewPipelineUseCase(assembler, time.Second, nil, nil)

	if err := uc.Shutdown(awaitContext(t)); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}

	accepted, sequence := uc.RequestForecast("Paris")
	if accepted || sequence != 0 {
		t.Errorf("expected the request to be refused, got %v %d", accepted, sequence)
	}
	if assembler.callCount() != 0 {
		t.Errorf("expected no fetch cycle, got %d", assembler.callCount())
	}
	if health := uc.Health(); health.Status != model.StatusDown {
		t.Errorf("expected DOWN after shutdown, got %s", health.Status)
	}
}
