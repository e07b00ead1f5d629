package services

import "math"

// Level is a rewards tier reached at Threshold lifetime points.
type Level struct {
	Threshold int64
	Name      string
}

// Levels is ordered by ascending threshold.
var Levels = []Level{
	{Threshold: 0, Name: "Eco Starter"},
	{Threshold: 200, Name: "Green Explorer"},
	{Threshold: 500, Name: "Carbon Hero"},
	{Threshold: 1000, Name: "Planet Guardian"},
	{Threshold: 2000, Name: "Earth Legend"},
}

// ThresholdReward is a coupon granted automatically once lifetime points
// reach Threshold.
type ThresholdReward struct {
	Threshold     int64
	Code          string
	Percent       int64
	MinOrderValue int64
}

var ThresholdLadder = []ThresholdReward{
	{Threshold: 500, Code: "ECO5", Percent: 5, MinOrderValue: 200},
	{Threshold: 1000, Code: "ECO10", Percent: 10, MinOrderValue: 500},
	{Threshold: 2000, Code: "ECO15", Percent: 15, MinOrderValue: 1000},
}

// PointsForCarbon converts kg CO2e saved into points, ten per kg, rounded.
func PointsForCarbon(kg float64) int64 {
	return int64(math.Round(kg * 10))
}

func levelIndex(points int64) int {
	idx := 0
	for i, l := range Levels {
		if points >= l.Threshold {
			idx = i
		}
	}
	return idx
}

// LevelFor returns the highest level whose threshold points reach.
func LevelFor(points int64) string {
	return Levels[levelIndex(points)].Name
}

// NextLevelThreshold returns the next tier's threshold, or 0 at the top tier.
func NextLevelThreshold(points int64) int64 {
	idx := levelIndex(points)
	if idx == len(Levels)-1 {
		return 0
	}
	return Levels[idx+1].Threshold
}

// ProgressPercent is the position of points between the current and next
// tier thresholds, clamped to [0, 100].
func ProgressPercent(points int64) float64 {
	idx := levelIndex(points)
	if idx == len(Levels)-1 {
		return 100
	}
	floor := Levels[idx].Threshold
	next := Levels[idx+1].Threshold
	p := float64(points-floor) / float64(next-floor) * 100
	return math.Max(0, math.Min(100, p))
}
