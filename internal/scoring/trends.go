package scoring

// Trend direction labels.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// minTrendSamples is the number of values a metric needs before a trend is reported.
const minTrendSamples = 3

// TrendMetrics lists the metrics trends and averages are computed for, in output order.
var TrendMetrics = []string{"sleep_hours", "exercise_minutes", "mood_rating", "stress_level", "water_glasses"}

// Trend describes how one metric moved across a series of habit logs.
type Trend struct {
	Trend            string  `json:"trend"`
	RecentAverage    float64 `json:"recent_average"`
	ChangePercentage float64 `json:"change_percentage"`
}

func metricValue(m Metrics, name string) (float64, bool) {
	switch name {
	case "sleep_hours":
		if m.SleepHours != nil {
			return *m.SleepHours, true
		}
	case "exercise_minutes":
		if m.ExerciseMinutes != nil {
			return float64(*m.ExerciseMinutes), true
		}
	case "mood_rating":
		if m.MoodRating != nil {
			return float64(*m.MoodRating), true
		}
	case "stress_level":
		if m.StressLevel != nil {
			return float64(*m.StressLevel), true
		}
	case "water_glasses":
		if m.WaterGlasses != nil {
			return float64(*m.WaterGlasses), true
		}
	}
	return 0, false
}

func series(history []Metrics, name string) []float64 {
	var vals []float64
	for _, m := range history {
		if v, ok := metricValue(m, name); ok {
			vals = append(vals, v)
		}
	}
	return vals
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var s float64
	for _, v := range vals {
		s += v
	}
	return s / float64(len(vals))
}

// Trends compares the last three values of each metric with the values
// before them.  history must be in chronological order, oldest first.
// Metrics with fewer than three values are omitted.
func Trends(history []Metrics) map[string]Trend {
	out := make(map[string]Trend)
	for _, name := range TrendMetrics {
		vals := series(history, name)
		if len(vals) < minTrendSamples {
			continue
		}
		recent := mean(vals[len(vals)-minTrendSamples:])
		older := recent
		if len(vals) > minTrendSamples {
			older = mean(vals[:len(vals)-minTrendSamples])
		}
		t := Trend{Trend: TrendStable, RecentAverage: recent}
		switch {
		case recent > older*1.1:
			t.Trend = TrendImproving
		case recent < older*0.9:
			t.Trend = TrendDeclining
		}
		if older > 0 {
			t.ChangePercentage = (recent - older) / older * 100
		}
		out[name] = t
	}
	return out
}

// CurrentAverages averages each metric over the most recent seven logs.
// Keys are prefixed with "avg_"; metrics without values are omitted.
func CurrentAverages(history []Metrics) map[string]float64 {
	out := make(map[string]float64)
	if len(history) > 7 {
		history = history[len(history)-7:]
	}
	for _, name := range TrendMetrics {
		if vals := series(history, name); len(vals) > 0 {
			out["avg_"+name] = mean(vals)
		}
	}
	return out
}
