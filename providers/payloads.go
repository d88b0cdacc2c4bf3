package providers

// Raw upstream response shapes. All numeric fields are pointer-typed so
// that missing upstream values decode to nil rather than zero.

// OpenWeatherConditionRef is one entry of the One Call "weather" array
type OpenWeatherConditionRef struct {
	ID          *int64 `json:"id"`
	Description string `json:"description"`
}

// OpenWeatherCurrent is the One Call current block
type OpenWeatherCurrent struct {
	Dt        *int64                    `json:"dt"`
	Temp      *float64                  `json:"temp"`
	FeelsLike *float64                  `json:"feels_like"`
	Humidity  *float64                  `json:"humidity"`
	WindSpeed *float64                  `json:"wind_speed"`
	Pressure  *float64                  `json:"pressure"`
	Sunrise   *int64                    `json:"sunrise"`
	Sunset    *int64                    `json:"sunset"`
	Weather   []OpenWeatherConditionRef `json:"weather"`
}

// OpenWeatherHourly is one One Call hourly entry
type OpenWeatherHourly struct {
	Dt        *int64                    `json:"dt"`
	Temp      *float64                  `json:"temp"`
	FeelsLike *float64                  `json:"feels_like"`
	Humidity  *float64                  `json:"humidity"`
	WindSpeed *float64                  `json:"wind_speed"`
	Pressure  *float64                  `json:"pressure"`
	Pop       *float64                  `json:"pop"`
	Weather   []OpenWeatherConditionRef `json:"weather"`
}

// OpenWeatherDaily is one One Call daily entry
type OpenWeatherDaily struct {
	Dt   *int64 `json:"dt"`
	Temp *struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	} `json:"temp"`
	Pop     *float64                  `json:"pop"`
	Sunrise *int64                    `json:"sunrise"`
	Sunset  *int64                    `json:"sunset"`
	Weather []OpenWeatherConditionRef `json:"weather"`
}

// OpenWeatherPayload is the One Call 3.0 response shape
type OpenWeatherPayload struct {
	Lat            *float64            `json:"lat"`
	Lon            *float64            `json:"lon"`
	Timezone       string              `json:"timezone"`
	TimezoneOffset int                 `json:"timezone_offset"`
	Current        *OpenWeatherCurrent `json:"current"`
	Hourly         []OpenWeatherHourly `json:"hourly"`
	Daily          []OpenWeatherDaily  `json:"daily"`
}

// OpenMeteoCurrentWeather is the current_weather block of a forecast
// response
type OpenMeteoCurrentWeather struct {
	Temperature *float64 `json:"temperature"`
	WindSpeed   *float64 `json:"windspeed"`
	WeatherCode *int     `json:"weathercode"`
	Time        string   `json:"time"`
}

// OpenMeteoHourly holds the hourly parallel arrays, indexed by position
type OpenMeteoHourly struct {
	Time              []string   `json:"time"`
	Temperature       []*float64 `json:"temperature_2m"`
	RelativeHumidity  []*float64 `json:"relative_humidity_2m"`
	WindSpeed         []*float64 `json:"wind_speed_10m"`
	WeatherCode       []*int     `json:"weathercode"`
	PrecipProbability []*float64 `json:"precipitation_probability"`
}

// OpenMeteoDaily holds the daily parallel arrays
type OpenMeteoDaily struct {
	Time                 []string   `json:"time"`
	WeatherCode          []*int     `json:"weathercode"`
	TempMax              []*float64 `json:"temperature_2m_max"`
	TempMin              []*float64 `json:"temperature_2m_min"`
	Sunrise              []string   `json:"sunrise"`
	Sunset               []string   `json:"sunset"`
	PrecipProbabilityMax []*float64 `json:"precipitation_probability_max"`
}

// OpenMeteoPayload is the forecast response shape
type OpenMeteoPayload struct {
	Latitude         *float64                 `json:"latitude"`
	Longitude        *float64                 `json:"longitude"`
	Timezone         string                   `json:"timezone"`
	UTCOffsetSeconds int                      `json:"utc_offset_seconds"`
	CurrentWeather   *OpenMeteoCurrentWeather `json:"current_weather"`
	Hourly           *OpenMeteoHourly         `json:"hourly"`
	Daily            *OpenMeteoDaily          `json:"daily"`
}
