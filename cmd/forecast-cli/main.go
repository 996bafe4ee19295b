package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"forecast-api/configs"
	"forecast-api/internal/domain/usecase/pipeline"
	"forecast-api/internal/infra/cache"
	"forecast-api/internal/infra/weather"
	"forecast-api/pkg/log"
	"forecast-api/pkg/msg"
)

const shutdownTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// stdout is reserved for the view-model
	log.SetOutput(os.Stderr)
	defer log.Sync()

	city := pflag.StringP("city", "c", "", "city to fetch (defaults to app.forecast.default-city)")
	provider := pflag.StringP("provider", "p", "", "forecast provider: openweathermap or open-meteo")
	noUV := pflag.Bool("no-uv", false, "skip the UV index lookup")
	pflag.Parse()

	config, err := configs.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, msg.GetMessage("app.config-invalid", err.Error()))
		return 2
	}
	if *provider != "" {
		config.Forecast.Provider = *provider
		if err := config.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, msg.GetMessage("app.config-invalid", err.Error()))
			return 2
		}
	}
	if *noUV {
		config.Forecast.UVEnabled = false
	}
	if *city == "" {
		*city = config.Forecast.DefaultCity
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.Forecast.CycleTimeout+5*time.Second)
	defer cancel()

	redisClient, err := cache.NewRedisClient(ctx, config.Redis)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	assembler, err := weather.NewAssembler(config, redisClient, clockwork.NewRealClock(), nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	forecastPipeline := pipeline.NewPipelineUseCase(assembler, config.Forecast.CycleTimeout, nil, nil)
	defer shutdownPipeline(forecastPipeline, shutdownTimeout)

	accepted, sequence := forecastPipeline.RequestForecast(*city)
	if !accepted {
		fmt.Fprintln(os.Stderr, msg.GetMessage("forecast.error.empty-city"))
		return 2
	}

	snapshot, err := forecastPipeline.Await(ctx, sequence)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if snapshot.State != pipeline.StateReady {
		fmt.Fprintln(os.Stderr, snapshot.Message)
		return 1
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snapshot.ViewModel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// shutdownPipeline stops the pipeline, giving in-flight cycles at most timeout to finish
func shutdownPipeline(forecastPipeline pipeline.UseCase, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := forecastPipeline.Shutdown(ctx); err != nil {
		log.Warn("Pipeline shutdown did not complete", zap.Duration("timeout", timeout), zap.Error(err))
		return err
	}
	return nil
}
