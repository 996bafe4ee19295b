package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"forecast-api/internal/domain/model"
	"forecast-api/internal/domain/usecase/pipeline"
	"forecast-api/pkg/msg"
	"forecast-api/pkg/util/numberutils"
)

type ForecastController struct {
	api          *echo.Group
	useCase      pipeline.UseCase
	awaitTimeout time.Duration
}

// NewForecastController creates the controller; awaitTimeout bounds GET /forecast?await=true
func NewForecastController(api *echo.Group, useCase pipeline.UseCase, awaitTimeout time.Duration) *ForecastController {
	return &ForecastController{api: api, useCase: useCase, awaitTimeout: awaitTimeout}
}

// InitForecastRoutes initializes forecast routes
func (controller *ForecastController) InitForecastRoutes() {
	controller.api.POST("/forecast", controller.RequestForecast)
	controller.api.GET("/forecast", controller.GetForecast)
}

// RequestForecast godoc
// @Summary Request a forecast for a city
// @Description Start a fetch cycle for the given city. A newer request supersedes any cycle still in flight. A blank city is ignored.
// @Tags forecast
// @Accept json
// @Produce json
// @Param request body model.ForecastRequestDTO true "City to fetch"
// @Success 202 {object} model.ForecastAcceptedDTO "Fetch cycle started"
// @Success 200 {object} model.ForecastAcceptedDTO "Blank city, nothing started"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Router /forecast [post]
func (controller *ForecastController) RequestForecast(c echo.Context) error {
	var dto model.ForecastRequestDTO
	if err := c.Bind(&dto); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	accepted, sequence := controller.useCase.RequestForecast(dto.City)
	response := model.ForecastAcceptedDTO{Accepted: accepted, Sequence: sequence}
	if !accepted {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusAccepted, response)
}

// GetForecast godoc
// @Summary Get the forecast state
// @Description Return the current pipeline state with the last successful view-model. With await=true the call waits until the given sequence (default: the latest) has settled.
// @Tags forecast
// @Produce json
// @Param await query bool false "Wait for the cycle to settle" default(false)
// @Param sequence query int false "Sequence returned by POST /forecast"
// @Success 200 {object} model.ForecastSnapshotDTO "Pipeline state"
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Router /forecast [get]
func (controller *ForecastController) GetForecast(c echo.Context) error {
	await, err := parseAwait(c.QueryParam("await"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "await must be a boolean"})
	}

	if !await {
		return c.JSON(http.StatusOK, toSnapshotDTO(controller.useCase.Snapshot()))
	}

	sequence := controller.useCase.Snapshot().Sequence
	if value := c.QueryParam("sequence"); value != "" {
		sequence, err = numberutils.ToUint64WithError(value)
		if err != nil || sequence == 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": msg.GetMessage("forecast.error.invalid-sequence")})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), controller.awaitTimeout)
	defer cancel()

	snapshot, err := controller.useCase.Await(ctx, sequence)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	// a timed out wait still answers with the current state
	return c.JSON(http.StatusOK, toSnapshotDTO(snapshot))
}

func parseAwait(value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	return strconv.ParseBool(value)
}

func toSnapshotDTO(snapshot pipeline.Snapshot) model.ForecastSnapshotDTO {
	return model.ForecastSnapshotDTO{
		State:     string(snapshot.State),
		City:      snapshot.City,
		Sequence:  snapshot.Sequence,
		ViewModel: snapshot.ViewModel,
		Stale:     snapshot.ViewModel != nil && snapshot.State != pipeline.StateReady,
		Message:   snapshot.Message,
		ErrorKind: snapshot.ErrorKind,
		UpdatedAt: snapshot.UpdatedAt,
	}
}
