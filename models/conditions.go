package models

import (
	"strconv"
	"strings"
)

// ConditionSummary is a compact icon token and display label for a
// condition code from either provider family
type ConditionSummary struct {
	Icon  string
	Label string
}

var (
	condThunder   = ConditionSummary{Icon: "TS", Label: "Thunderstorm"}
	condDrizzle   = ConditionSummary{Icon: "DZ", Label: "Drizzle"}
	condRain      = ConditionSummary{Icon: "RA", Label: "Rain"}
	condHeavyRain = ConditionSummary{Icon: "RA", Label: "Heavy rain"}
	condSnow      = ConditionSummary{Icon: "SN", Label: "Snow"}
	condFog       = ConditionSummary{Icon: "FG", Label: "Fog"}
	condClear     = ConditionSummary{Icon: "SUN", Label: "Clear sky"}
	condFewClouds = ConditionSummary{Icon: "SUN+", Label: "Few clouds"}
	condClouds    = ConditionSummary{Icon: "CLD", Label: "Clouds"}
	condUnknown   = ConditionSummary{Icon: "--", Label: ""}
)

var wmoSummaries = map[int]ConditionSummary{
	0: condClear, 1: condFewClouds, 2: condClouds, 3: condClouds,
	45: condFog, 48: condFog,
	51: condDrizzle, 53: condDrizzle, 55: condDrizzle,
	56: condRain, 57: condRain,
	61: condRain, 63: condRain, 65: condHeavyRain,
	66: condRain, 67: condHeavyRain,
	71: condSnow, 73: condSnow, 75: condSnow, 77: condSnow,
	80: condRain, 81: condHeavyRain, 82: condHeavyRain,
	85: condSnow, 86: condSnow,
	95: condThunder, 96: condThunder, 99: condThunder,
}

// SummarizeCondition maps a canonical condition code to an icon token and
// label. OpenWeather numeric ids are grouped by hundreds; Open-Meteo codes
// carry the "om-" prefix and go through the WMO table.
func SummarizeCondition(code string) ConditionSummary {
	if code == "" {
		return condUnknown
	}
	if rest, ok := strings.CutPrefix(code, "om-"); ok {
		wmo, err := strconv.Atoi(rest)
		if err != nil {
			return condUnknown
		}
		if summary, ok := wmoSummaries[wmo]; ok {
			return summary
		}
		return condUnknown
	}

	numeric, err := strconv.Atoi(code)
	if err != nil {
		return condUnknown
	}
	switch {
	case numeric >= 200 && numeric < 300:
		return condThunder
	case numeric >= 300 && numeric < 400:
		return condDrizzle
	case numeric >= 500 && numeric < 600:
		return condRain
	case numeric >= 600 && numeric < 700:
		return condSnow
	case numeric >= 700 && numeric < 800:
		return condFog
	case numeric == 800:
		return condClear
	case numeric > 800:
		return condClouds
	}
	return condUnknown
}
