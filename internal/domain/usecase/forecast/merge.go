package forecast

import (
	"cmp"
	"math"
	"slices"
	"time"

	"forecast-api/internal/domain/entity"
	"forecast-api/internal/domain/model"
)

const dateLayout = "2006-01-02"

// Merge combines current conditions and the normalized series into a view-model.
// Current conditions are mandatory; empty series are allowed.
func Merge(current *entity.CurrentConditions, hourly []entity.HourlySample, daily []entity.DailySample, uv entity.UVIndex, provider string) (*entity.ForecastViewModel, error) {
	if current == nil {
		return nil, model.ErrIncompleteData
	}

	if hourly == nil {
		hourly = []entity.HourlySample{}
	}
	if daily == nil {
		daily = []entity.DailySample{}
	}

	viewModel := &entity.ForecastViewModel{
		Current:      *current,
		Temperature:  roundHalfUp(current.Temperature),
		FeelsLike:    roundHalfUp(current.FeelsLike),
		Hourly:       hourly,
		Daily:        daily,
		UVIndex:      uv,
		ChanceOfRain: chanceOfRain(hourly, daily),
		Provider:     provider,
	}
	return viewModel.Clone(), nil
}

// roundHalfUp rounds ties toward positive infinity, so -2.5 becomes -2
func roundHalfUp(value float64) int {
	return int(math.Floor(value + 0.5))
}

// chanceOfRain is the first known hourly chance, falling back to today's
func chanceOfRain(hourly []entity.HourlySample, daily []entity.DailySample) *int {
	for _, sample := range hourly {
		if sample.PrecipitationChance != nil {
			return sample.PrecipitationChance
		}
	}
	if len(daily) > 0 {
		return daily[0].PrecipitationChance
	}
	return nil
}

// truncateHourly keeps the rest of the local day. The first sample is synthesized from current
// at now; provider samples follow when now < t < next local midnight, up to limit entries in total.
func truncateHourly(current *entity.CurrentConditions, samples []entity.HourlySample, now time.Time, zone *time.Location, limit int) []entity.HourlySample {
	midnight := nextMidnight(now, zone)

	sorted := slices.Clone(samples)
	slices.SortStableFunc(sorted, func(a, b entity.HourlySample) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})

	result := make([]entity.HourlySample, 0, limit)
	result = append(result, entity.HourlySample{
		Timestamp:   now.Unix(),
		Temperature: current.Temperature,
		Condition:   current.Condition,
	})

	for _, sample := range sorted {
		if len(result) >= limit {
			break
		}
		at := time.Unix(sample.Timestamp, 0)
		if !at.After(now) || !at.Before(midnight) {
			continue
		}
		if sample.Timestamp == result[len(result)-1].Timestamp {
			continue
		}
		result = append(result, sample)
	}

	return result
}

// normalizeDaily keeps one sample per local date from today on, ascending, up to limit.
// The first sample of a date wins.
func normalizeDaily(samples []entity.DailySample, now time.Time, zone *time.Location, limit int) []entity.DailySample {
	today := now.In(zone).Format(dateLayout)
	seen := make(map[string]struct{}, len(samples))
	result := make([]entity.DailySample, 0, limit)

	for _, sample := range samples {
		date := time.Unix(sample.Timestamp, 0).In(zone).Format(dateLayout)
		if date < today {
			continue
		}
		if _, ok := seen[date]; ok {
			continue
		}
		seen[date] = struct{}{}
		sample.Date = date
		result = append(result, sample)
	}

	slices.SortStableFunc(result, func(a, b entity.DailySample) int {
		return cmp.Compare(a.Date, b.Date)
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

func nextMidnight(now time.Time, zone *time.Location) time.Time {
	year, month, day := now.In(zone).Date()
	return time.Date(year, month, day+1, 0, 0, 0, 0, zone)
}
