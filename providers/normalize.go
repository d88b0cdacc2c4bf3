package providers

import (
	"math"
	"strconv"
	"time"

	"weatherdash.app/models"
)

// NormalizeContext carries the query identity and geocode metadata into
// a normalizer. FetchedAt defaults to the current wall clock when zero.
type NormalizeContext struct {
	Units     models.Units
	Lat       float64
	Lon       float64
	Name      string
	Country   string
	FetchedAt int64
}

func (c NormalizeContext) fetchedAt() int64 {
	if c.FetchedAt != 0 {
		return c.FetchedAt
	}
	return time.Now().UnixMilli()
}

// wmoDescriptions maps Open-Meteo WMO-like codes to display text
var wmoDescriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	77: "Snow grains",
	80: "Rain showers",
	81: "Heavy rain showers",
	82: "Violent rain showers",
	85: "Snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with hail",
	99: "Thunderstorm with heavy hail",
}

// convertWindSpeed converts OpenWeather wind speed for display: the
// upstream reports m/s for metric requests (converted to km/h here) and
// mph for imperial requests (kept as-is). Open-Meteo values never pass
// through this because that upstream is asked for the display unit
// directly.
func convertWindSpeed(value *float64, units models.Units) *float64 {
	if value == nil {
		return nil
	}
	v := *value
	if units == models.UnitsMetric {
		v = v * 3.6
	}
	rounded := math.Round(v*10) / 10
	return &rounded
}

// toPercent scales a probability to an integral 0-100 value. OpenWeather
// emits 0.0-1.0 (scale 100), Open-Meteo emits 0-100 already (scale 1).
func toPercent(value *float64, scale float64) *int {
	if value == nil {
		return nil
	}
	v := *value
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	percent := int(math.Round(v * scale))
	return &percent
}

func openWeatherIconCode(refs []OpenWeatherConditionRef) (code, description string) {
	if len(refs) == 0 || refs[0].ID == nil {
		if len(refs) > 0 {
			return "", refs[0].Description
		}
		return "", ""
	}
	return strconv.FormatInt(*refs[0].ID, 10), refs[0].Description
}

func openMeteoIconCode(code *int) string {
	if code == nil {
		return "om-"
	}
	return "om-" + strconv.Itoa(*code)
}

func openMeteoDescription(code *int) string {
	if code == nil {
		return ""
	}
	return wmoDescriptions[*code]
}

// parseLocalTime parses an Open-Meteo timestamp (local time without
// offset, minute or second resolution) into unix seconds
func parseLocalTime(value string) *int64 {
	if value == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			unix := t.Unix()
			return &unix
		}
	}
	return nil
}

// NormalizeOpenWeather maps a One Call payload into the canonical model.
// It is total over any syntactically valid payload: missing upstream
// fields become nil or empty, never a panic.
func NormalizeOpenWeather(payload *OpenWeatherPayload, ctx NormalizeContext) *models.CanonicalWeather {
	if payload == nil {
		payload = &OpenWeatherPayload{}
	}

	lat, lon := ctx.Lat, ctx.Lon
	result := &models.CanonicalWeather{
		Provider:  models.ProviderOpenWeather,
		FetchedAt: ctx.fetchedAt(),
		Units:     ctx.Units,
		Location: models.Location{
			Lat:     coalesceFloat(&lat, payload.Lat),
			Lon:     coalesceFloat(&lon, payload.Lon),
			Name:    ctx.Name,
			Country: ctx.Country,
		},
		Timezone: models.Timezone{
			Name:          payload.Timezone,
			OffsetSeconds: payload.TimezoneOffset,
		},
	}

	current := payload.Current
	if current == nil {
		current = &OpenWeatherCurrent{}
	}
	code, description := openWeatherIconCode(current.Weather)
	result.Current = models.CurrentConditions{
		Timestamp:     current.Dt,
		Temp:          current.Temp,
		FeelsLike:     current.FeelsLike,
		Humidity:      current.Humidity,
		WindSpeed:     convertWindSpeed(current.WindSpeed, ctx.Units),
		Pressure:      current.Pressure,
		ConditionCode: code,
		ConditionText: description,
		Sunrise:       current.Sunrise,
		Sunset:        current.Sunset,
	}
	if len(payload.Hourly) > 0 {
		result.Current.PrecipProbability = toPercent(payload.Hourly[0].Pop, 100)
	}

	for i, hour := range payload.Hourly {
		if i == 24 {
			break
		}
		code, description := openWeatherIconCode(hour.Weather)
		result.Hourly = append(result.Hourly, models.HourlyPoint{
			Timestamp:         hour.Dt,
			Temp:              hour.Temp,
			FeelsLike:         hour.FeelsLike,
			Humidity:          hour.Humidity,
			WindSpeed:         convertWindSpeed(hour.WindSpeed, ctx.Units),
			Pressure:          hour.Pressure,
			PrecipProbability: toPercent(hour.Pop, 100),
			ConditionCode:     code,
			ConditionText:     description,
		})
	}

	for i, day := range payload.Daily {
		if i == 7 {
			break
		}
		code, description := openWeatherIconCode(day.Weather)
		point := models.DailyPoint{
			Timestamp:         day.Dt,
			PrecipProbability: toPercent(day.Pop, 100),
			ConditionCode:     code,
			ConditionText:     description,
			Sunrise:           day.Sunrise,
			Sunset:            day.Sunset,
		}
		if day.Temp != nil {
			point.TempMin = day.Temp.Min
			point.TempMax = day.Temp.Max
		}
		result.Daily = append(result.Daily, point)
	}

	return result
}

// NormalizeOpenMeteo maps a forecast payload of parallel arrays into the
// canonical model. The current reading lacks humidity, pressure and
// precipitation probability upstream; those are back-filled from the
// hourly entry whose timestamp matches the current one exactly, and
// stay nil otherwise (no interpolation).
func NormalizeOpenMeteo(payload *OpenMeteoPayload, ctx NormalizeContext) *models.CanonicalWeather {
	if payload == nil {
		payload = &OpenMeteoPayload{}
	}

	var currentCode *int
	if payload.CurrentWeather != nil {
		currentCode = payload.CurrentWeather.WeatherCode
	}

	var hourly []models.HourlyPoint
	if payload.Hourly != nil {
		// scan up to 48 rows so back-filling can match a current
		// reading beyond the first display day
		limit := len(payload.Hourly.Time)
		if limit > 48 {
			limit = 48
		}
		for i := 0; i < limit; i++ {
			ts := parseLocalTime(payload.Hourly.Time[i])
			if ts == nil {
				continue
			}
			code := indexPtr(payload.Hourly.WeatherCode, i)
			iconSource := code
			if iconSource == nil {
				iconSource = currentCode
			}
			hourly = append(hourly, models.HourlyPoint{
				Timestamp:         ts,
				Temp:              indexPtr(payload.Hourly.Temperature, i),
				FeelsLike:         indexPtr(payload.Hourly.Temperature, i),
				Humidity:          indexPtr(payload.Hourly.RelativeHumidity, i),
				WindSpeed:         indexPtr(payload.Hourly.WindSpeed, i),
				Pressure:          nil,
				PrecipProbability: toPercent(indexPtr(payload.Hourly.PrecipProbability, i), 1),
				ConditionCode:     openMeteoIconCode(iconSource),
				ConditionText:     openMeteoDescription(code),
			})
		}
	}

	var currentTs *int64
	if payload.CurrentWeather != nil {
		currentTs = parseLocalTime(payload.CurrentWeather.Time)
	}

	var matching *models.HourlyPoint
	if currentTs != nil {
		for i := range hourly {
			if hourly[i].Timestamp != nil && *hourly[i].Timestamp == *currentTs {
				matching = &hourly[i]
				break
			}
		}
	}

	var firstSunrise, firstSunset *int64
	if payload.Daily != nil {
		if len(payload.Daily.Sunrise) > 0 {
			firstSunrise = parseLocalTime(payload.Daily.Sunrise[0])
		}
		if len(payload.Daily.Sunset) > 0 {
			firstSunset = parseLocalTime(payload.Daily.Sunset[0])
		}
	}

	lat, lon := ctx.Lat, ctx.Lon
	result := &models.CanonicalWeather{
		Provider:  models.ProviderOpenMeteo,
		FetchedAt: ctx.fetchedAt(),
		Units:     ctx.Units,
		Location: models.Location{
			Lat:     coalesceFloat(&lat, payload.Latitude),
			Lon:     coalesceFloat(&lon, payload.Longitude),
			Name:    ctx.Name,
			Country: ctx.Country,
		},
		Timezone: models.Timezone{
			Name:          payload.Timezone,
			OffsetSeconds: payload.UTCOffsetSeconds,
		},
	}

	result.Current = models.CurrentConditions{
		Timestamp:     currentTs,
		ConditionCode: openMeteoIconCode(currentCode),
		ConditionText: openMeteoDescription(currentCode),
		Sunrise:       firstSunrise,
		Sunset:        firstSunset,
	}
	if payload.CurrentWeather != nil {
		result.Current.Temp = payload.CurrentWeather.Temperature
		result.Current.FeelsLike = payload.CurrentWeather.Temperature
		result.Current.WindSpeed = payload.CurrentWeather.WindSpeed
	}
	if matching != nil {
		result.Current.Humidity = matching.Humidity
		result.Current.Pressure = matching.Pressure
		result.Current.PrecipProbability = matching.PrecipProbability
	}

	if len(hourly) > 24 {
		hourly = hourly[:24]
	}
	result.Hourly = hourly

	if payload.Daily != nil {
		for i, date := range payload.Daily.Time {
			if i == 7 {
				break
			}
			code := indexPtr(payload.Daily.WeatherCode, i)
			point := models.DailyPoint{
				Timestamp:         parseLocalTime(date),
				TempMin:           indexPtr(payload.Daily.TempMin, i),
				TempMax:           indexPtr(payload.Daily.TempMax, i),
				ConditionCode:     openMeteoIconCode(code),
				ConditionText:     openMeteoDescription(code),
				PrecipProbability: toPercent(indexPtr(payload.Daily.PrecipProbabilityMax, i), 1),
			}
			if i < len(payload.Daily.Sunrise) {
				point.Sunrise = parseLocalTime(payload.Daily.Sunrise[i])
			}
			if i < len(payload.Daily.Sunset) {
				point.Sunset = parseLocalTime(payload.Daily.Sunset[i])
			}
			result.Daily = append(result.Daily, point)
		}
	}

	return result
}

// indexPtr reads position i of a parallel array, nil when the array is
// shorter than its siblings
func indexPtr[T any](list []*T, i int) *T {
	if i < 0 || i >= len(list) {
		return nil
	}
	return list[i]
}

func coalesceFloat(primary, fallback *float64) *float64 {
	if primary != nil {
		v := *primary
		return &v
	}
	return fallback
}
