package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"forecast-api/configs"
	"forecast-api/docs"
	"forecast-api/internal/application/controller"
	"forecast-api/internal/application/middleware"
	healthgateway "forecast-api/internal/domain/gateway/health"
	"forecast-api/internal/domain/usecase/health"
	"forecast-api/internal/domain/usecase/pipeline"
	"forecast-api/internal/infra/cache"
	"forecast-api/internal/infra/weather"
	"forecast-api/pkg/log"
	"forecast-api/pkg/metrics"
	"forecast-api/pkg/msg"
)

// @title Forecast API
// @version 1.0
// @description Assembles current conditions, hourly and daily forecasts and the UV index for a city.
// @BasePath /forecast-api
func main() {
	defer log.Sync()
	log.Info(msg.GetMessage("app.start"))

	config, err := configs.Load()
	if err != nil {
		log.Fatal(msg.GetMessage("app.config-invalid", err.Error()), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init infra
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector("forecast", registry)

	redisClient, err := cache.NewRedisClient(ctx, config.Redis)
	if err != nil {
		log.Fatal("Failed to init redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Init UseCase
	assembler, err := weather.NewAssembler(config, redisClient, clockwork.NewRealClock(), collector)
	if err != nil {
		log.Fatal("Failed to init forecast providers", zap.Error(err))
	}
	pipelineUseCase := pipeline.NewPipelineUseCase(assembler, config.Forecast.CycleTimeout, nil, collector)
	healthUseCase := health.NewHealthUseCase(healthgateway.NewRedisHealthGateway(redisClient), pipelineUseCase)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	middleware.SetupRequestLogger(e)
	middleware.SetupMetrics(e, collector)
	api := e.Group(config.Server.ContextPath)

	// Init Controller
	healthController := controller.NewHealthController(api, healthUseCase)
	forecastController := controller.NewForecastController(api, pipelineUseCase, config.Forecast.CycleTimeout+time.Second)

	// Init Routes
	healthController.InitHealthRoutes()
	forecastController.InitForecastRoutes()
	api.GET("/metrics", echo.WrapHandler(collector.Handler()))
	docs.SwaggerInfo.BasePath = config.Server.ContextPath
	api.GET("/swagger/*", echoSwagger.WrapHandler)

	// Initial cycle for the default city
	if config.Forecast.DefaultCity != "" {
		pipelineUseCase.RequestForecast(config.Forecast.DefaultCity)
	}

	// Start Routes
	go func() {
		if err := e.Start(":" + strconv.Itoa(config.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()
	log.Info(msg.GetMessage("app.started", config.Server.Port))

	<-ctx.Done()
	log.Info(msg.GetMessage("app.stopping"))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := pipelineUseCase.Shutdown(shutdownCtx); err != nil {
		log.Error("Fetch cycles still running at shutdown", zap.Error(err))
	}
}
