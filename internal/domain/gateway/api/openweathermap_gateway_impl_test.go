package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"forecast-api/internal/domain/entity"
	"forecast-api/internal/domain/model"
	"forecast-api/pkg/metrics"
)

const phnomPenhCurrent = `{
	"coord": {"lon": 104.916, "lat": 11.5625},
	"weather": [{"id": 803, "main": "Clouds", "description": "broken clouds", "icon": "04d"}],
	"main": {"temp": 31.4, "feels_like": 36.2, "humidity": 62},
	"wind": {"speed": 3.6},
	"rain": {"1h": 0.4},
	"dt": 1717034400,
	"sys": {"country": "KH"},
	"timezone": 25200,
	"name": "Phnom Penh",
	"cod": 200
}`

func newOpenWeatherServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestFindCurrentByCity_Success(t *testing.T) {
	var gotQuery, gotKey, gotUnits string
	srv := newOpenWeatherServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/weather" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("appid")
		gotUnits = r.URL.Query().Get("units")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(phnomPenhCurrent))
	})

	collector := metrics.NewCollector("forecast", nil)
	gateway := NewOpenWeatherCurrentGateway(ProviderConfig{BaseURL: srv.URL, APIKey: "secret", Metrics: collector})

	current, err := gateway.FindCurrentByCity(context.Background(), "Phnom Penh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery != "Phnom Penh" || gotKey != "secret" || gotUnits != "metric" {
		t.Errorf("unexpected query q=%q appid=%q units=%q", gotQuery, gotKey, gotUnits)
	}
	if current.Temperature != 31.4 || current.FeelsLike != 36.2 || current.Humidity != 62 {
		t.Errorf("unexpected readings %+v", current)
	}
	if current.Condition != entity.ConditionClouds {
		t.Errorf("expected Clouds, got %s", current.Condition)
	}
	if current.Precipitation != 0.4 || current.WindSpeed != 3.6 {
		t.Errorf("unexpected wind/precipitation %+v", current)
	}
	if current.Location.Coordinates == nil || current.Location.Coordinates.Latitude != 11.5625 {
		t.Errorf("expected coordinates, got %+v", current.Location)
	}
	if current.Location.UTCOffsetSeconds != 25200 || current.Location.Query != "Phnom Penh" {
		t.Errorf("unexpected location %+v", current.Location)
	}

	if got := testutil.ToFloat64(collector.ProviderRequestsTotal.WithLabelValues(ProviderOpenWeatherMap, "success")); got != 1 {
		t.Errorf("expected 1 recorded provider request, got %v", got)
	}
}

func TestFindCurrentByCity_NotFoundStatus(t *testing.T) {
	srv := newOpenWeatherServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	})

	gateway := NewOpenWeatherCurrentGateway(ProviderConfig{BaseURL: srv.URL, APIKey: "secret"})
	_, err := gateway.FindCurrentByCity(context.Background(), "Atlantis")

	var notFound *model.CityNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected CityNotFoundError, got %v", err)
	}
	if notFound.Query != "Atlantis" {
		t.Errorf("expected query Atlantis, got %q", notFound.Query)
	}
}

func TestFindCurrentByCity_NotFoundCodeInBody(t *testing.T) {
	srv := newOpenWeatherServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	})

	gateway := NewOpenWeatherCurrentGateway(ProviderConfig{BaseURL: srv.URL, APIKey: "secret"})
	_, err := gateway.FindCurrentByCity(context.Background(), "Atlantis")

	if model.ErrorKind(err) != model.KindCityNotFound {
		t.Fatalf("expected city_not_found, got %v", err)
	}
}

func TestFindCurrentByCity_ServerErrorIsTransport(t *testing.T) {
	srv := newOpenWeatherServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	collector := metrics.NewCollector("forecast", nil)
	gateway := NewOpenWeatherCurrentGateway(ProviderConfig{BaseURL: srv.URL, APIKey: "secret", Metrics: collector})
	_, err := gateway.FindCurrentByCity(context.Background(), "Paris")

	var transport *model.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if transport.Provider != ProviderOpenWeatherMap {
		t.Errorf("expected provider %s, got %s", ProviderOpenWeatherMap, transport.Provider)
	}
	if got := testutil.ToFloat64(collector.ProviderRequestsTotal.WithLabelValues(ProviderOpenWeatherMap, "error")); got != 1 {
		t.Errorf("expected 1 failed provider request, got %v", got)
	}
}

func TestFindCurrentByCity_UndecodableBodyIsTransport(t *testing.T) {
	srv := newOpenWeatherServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	})

	gateway := NewOpenWeatherCurrentGateway(ProviderConfig{BaseURL: srv.URL, APIKey: "secret"})
	_, err := gateway.FindCurrentByCity(context.Background(), "Paris")

	if model.ErrorKind(err) != model.KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestFindCurrentByCity_ThrottleCanceled(t *testing.T) {
	var calls atomic.Int32
	srv := newOpenWeatherServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(phnomPenhCurrent))
	})

	// one token per hour: the second call cannot get one before the deadline
	gateway := NewOpenWeatherCurrentGateway(ProviderConfig{
		BaseURL:  srv.URL,
		APIKey:   "secret",
		Throttle: NewLocalThrottle(1.0/3600, 1),
	})

	if _, err := gateway.FindCurrentByCity(context.Background(), "Paris"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := gateway.FindCurrentByCity(ctx, "Paris")
	if model.ErrorKind(err) != model.KindTransport {
		t.Fatalf("expected transport error from throttle, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected throttled call not to reach the provider, got %d calls", got)
	}
}

const oneCallResponse = `{
	"lat": 48.8534, "lon": 2.3488,
	"timezone": "Europe/Paris", "timezone_offset": 7200,
	"hourly": [
		{"dt": 1717059600, "temp": 18.2, "pop": 0.35, "weather": [{"main": "Drizzle"}]},
		{"dt": 1717063200, "temp": null, "weather": [{"main": "Rain"}]},
		{"dt": 1717066800, "temp": 19.0, "weather": []}
	],
	"daily": [
		{"dt": 1717063200, "temp": {"min": 12.1, "max": 21.7}, "uvi": 5.2, "pop": 0.8, "weather": [{"main": "Thunderstorm"}]},
		{"dt": 1717149600, "uvi": 4.0, "weather": [{"main": "Clear"}]}
	]
}`

func TestFetchForecast_OneCall(t *testing.T) {
	var gotExclude, gotLat string
	srv := newOpenWeatherServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/3.0/onecall" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotExclude = r.URL.Query().Get("exclude")
		gotLat = r.URL.Query().Get("lat")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(oneCallResponse))
	})

	gateway := NewOpenWeatherForecastGateway(ProviderConfig{BaseURL: srv.URL, APIKey: "secret"})
	forecast, err := gateway.FetchForecast(context.Background(), entity.Coordinates{Latitude: 48.8534, Longitude: 2.3488})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotExclude != "minutely,alerts" || gotLat != "48.8534" {
		t.Errorf("unexpected query exclude=%q lat=%q", gotExclude, gotLat)
	}
	if gateway.Name() != ProviderOpenWeatherMap || forecast.Provider != ProviderOpenWeatherMap {
		t.Errorf("unexpected provider %q", forecast.Provider)
	}
	if forecast.UTCOffsetSeconds == nil || *forecast.UTCOffsetSeconds != 7200 {
		t.Errorf("expected offset 7200, got %v", forecast.UTCOffsetSeconds)
	}

	if len(forecast.Hourly) != 2 {
		t.Fatalf("expected 2 hourly samples (null temperature skipped), got %d", len(forecast.Hourly))
	}
	if forecast.Hourly[0].Condition != entity.ConditionRain {
		t.Errorf("expected Drizzle to map to Rain, got %s", forecast.Hourly[0].Condition)
	}
	if forecast.Hourly[0].PrecipitationChance == nil || *forecast.Hourly[0].PrecipitationChance != 35 {
		t.Errorf("expected 35%% chance, got %v", forecast.Hourly[0].PrecipitationChance)
	}
	if forecast.Hourly[1].Condition != entity.ConditionUnknown {
		t.Errorf("expected Unknown for empty weather, got %s", forecast.Hourly[1].Condition)
	}

	if len(forecast.Daily) != 1 {
		t.Fatalf("expected 1 daily sample (missing temp skipped), got %d", len(forecast.Daily))
	}
	day := forecast.Daily[0]
	if day.Max != 21.7 || day.Min != 12.1 || day.Condition != entity.ConditionThunderstorm {
		t.Errorf("unexpected daily sample %+v", day)
	}
	if day.UVIndex == nil || *day.UVIndex != 5.2 {
		t.Errorf("expected uv 5.2, got %v", day.UVIndex)
	}
}

func TestFetchForecast_OneCallUnauthorized(t *testing.T) {
	srv := newOpenWeatherServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
	})

	gateway := NewOpenWeatherForecastGateway(ProviderConfig{BaseURL: srv.URL, APIKey: "bad"})
	_, err := gateway.FetchForecast(context.Background(), entity.Coordinates{})

	var transport *model.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}
