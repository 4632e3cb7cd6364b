package activity

import (
	"math"
	"time"
)

const kmToMiles = 0.621371

// Stats are a year's workout aggregates.
type Stats struct {
	Count          int
	TotalMiles     float64
	AvgMiles       float64
	LongestMiles   float64
	LongestName    string
	AvgSpeedMph    float64
	MaxSpeedMph    float64
	TotalElevGainM float64
	AvgHeartRate   float64
	MaxHeartRate   float64
	TotalCalories  float64
	ByTypeCounts   map[string]int
	ByTypeMiles    map[string]float64
	ByMonth        map[time.Month]int
	ByMonthByType  map[time.Month]map[string]int
}

// ComputeStats aggregates the given entries. Heart-rate and speed averages
// only consider entries that carry a value.
func ComputeStats(entries []Entry) Stats {
	stats := Stats{
		Count:         len(entries),
		ByTypeCounts:  make(map[string]int),
		ByTypeMiles:   make(map[string]float64),
		ByMonth:       make(map[time.Month]int),
		ByMonthByType: make(map[time.Month]map[string]int),
	}
	if len(entries) == 0 {
		return stats
	}

	var totalKm, longestKm float64
	var speedSum float64
	speedN := 0
	var hrSum float64
	hrN := 0

	for _, e := range entries {
		totalKm += e.DistanceKm
		if e.DistanceKm > longestKm {
			longestKm = e.DistanceKm
			stats.LongestName = e.Name
		}
		if e.AvgSpeedKmh > 0 {
			speedSum += e.AvgSpeedKmh
			speedN++
		}
		if mph := e.MaxSpeedKmh * kmToMiles; mph > stats.MaxSpeedMph {
			stats.MaxSpeedMph = mph
		}
		stats.TotalElevGainM += e.ElevGainM
		if e.AvgHeartRate > 0 {
			hrSum += e.AvgHeartRate
			hrN++
		}
		if e.MaxHeartRate > stats.MaxHeartRate {
			stats.MaxHeartRate = e.MaxHeartRate
		}
		stats.TotalCalories += e.Calories

		stats.ByTypeCounts[e.Type]++
		stats.ByTypeMiles[e.Type] += e.DistanceKm * kmToMiles

		month := e.Date.Month()
		stats.ByMonth[month]++
		if stats.ByMonthByType[month] == nil {
			stats.ByMonthByType[month] = make(map[string]int)
		}
		stats.ByMonthByType[month][e.Type]++
	}

	stats.TotalMiles = round2(totalKm * kmToMiles)
	stats.AvgMiles = round2(totalKm * kmToMiles / float64(len(entries)))
	stats.LongestMiles = round2(longestKm * kmToMiles)
	if speedN > 0 {
		stats.AvgSpeedMph = round2(speedSum / float64(speedN) * kmToMiles)
	}
	stats.MaxSpeedMph = round2(stats.MaxSpeedMph)
	if hrN > 0 {
		stats.AvgHeartRate = round2(hrSum / float64(hrN))
	}
	for typ, miles := range stats.ByTypeMiles {
		stats.ByTypeMiles[typ] = round2(miles)
	}

	return stats
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
