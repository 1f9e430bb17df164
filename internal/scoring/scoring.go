// Package scoring turns one day of self-reported habit metrics into two
// independent numbers: a 0-100 wellness score and a token reward.  Both are
// pure functions over Metrics so either rule set can be tuned without
// touching the other.
package scoring

import (
	"errors"
	"math"
)

// Metrics holds the optional measurements of a single habit log.  A nil
// field means the user did not report that metric; nil is not the same as
// zero.
type Metrics struct {
	SleepHours        *float64 `json:"sleep_hours,omitempty"`
	ExerciseMinutes   *int     `json:"exercise_minutes,omitempty"`
	Steps             *int     `json:"steps,omitempty"`
	WaterGlasses      *int     `json:"water_glasses,omitempty"`
	FruitVegServings  *int     `json:"fruit_veg_servings,omitempty"`
	MoodRating        *int     `json:"mood_rating,omitempty"`
	StressLevel       *int     `json:"stress_level,omitempty"`
	MeditationMinutes *int     `json:"meditation_minutes,omitempty"`
}

// Caps on the point contribution of each metric.
const (
	SleepCap     = 20.0
	ExerciseCap  = 25.0
	StepsCap     = 15.0
	WaterCap     = 10.0
	NutritionCap = 15.0
	MoodCap      = 15.0
	StressCap    = 15.0
)

// Targets at which a metric earns its full cap.
const (
	sleepTargetHours      = 8.0
	exerciseTargetMinutes = 30.0
	stepsTarget           = 10000.0
	waterTargetGlasses    = 8.0
	nutritionTarget       = 5.0
)

// Reward thresholds (inclusive) and bonuses.
const (
	SleepRewardHours        = 7.0
	ExerciseRewardMinutes   = 30
	StepsReward             = 8000
	WaterRewardGlasses      = 8
	FruitVegRewardServings  = 3
	MoodRewardRating        = 4
	MeditationRewardMinutes = 10
	StressRewardMax         = 2

	SleepBonus      = 20
	ExerciseBonus   = 30
	StepsBonus      = 25
	WaterBonus      = 15
	FruitVegBonus   = 20
	MoodBonus       = 10
	MeditationBonus = 15
	StressBonus     = 10
)

var (
	ErrNegativeMetric = errors.New("metric values must not be negative")
	ErrMoodRange      = errors.New("mood_rating must be between 1 and 5")
	ErrStressRange    = errors.New("stress_level must be between 1 and 5")
)

// Validate rejects values outside the documented ranges.
func (m Metrics) Validate() error {
	if m.SleepHours != nil && *m.SleepHours < 0 {
		return ErrNegativeMetric
	}
	for _, v := range []*int{m.ExerciseMinutes, m.Steps, m.WaterGlasses, m.FruitVegServings, m.MeditationMinutes} {
		if v != nil && *v < 0 {
			return ErrNegativeMetric
		}
	}
	if m.MoodRating != nil && (*m.MoodRating < 1 || *m.MoodRating > 5) {
		return ErrMoodRange
	}
	if m.StressLevel != nil && (*m.StressLevel < 1 || *m.StressLevel > 5) {
		return ErrStressRange
	}
	return nil
}

// Empty reports whether no metric was supplied.
func (m Metrics) Empty() bool {
	return m.SleepHours == nil && m.ExerciseMinutes == nil && m.Steps == nil &&
		m.WaterGlasses == nil && m.FruitVegServings == nil && m.MoodRating == nil &&
		m.StressLevel == nil && m.MeditationMinutes == nil
}

// contribution is a metric's capped points together with its cap.
type contribution struct {
	points float64
	cap    float64
}

func (m Metrics) contributions() []contribution {
	var out []contribution
	if m.SleepHours != nil {
		out = append(out, contribution{ratio(*m.SleepHours, sleepTargetHours) * SleepCap, SleepCap})
	}
	if m.ExerciseMinutes != nil {
		out = append(out, contribution{ratio(float64(*m.ExerciseMinutes), exerciseTargetMinutes) * ExerciseCap, ExerciseCap})
	}
	if m.Steps != nil {
		out = append(out, contribution{ratio(float64(*m.Steps), stepsTarget) * StepsCap, StepsCap})
	}
	if m.WaterGlasses != nil {
		out = append(out, contribution{ratio(float64(*m.WaterGlasses), waterTargetGlasses) * WaterCap, WaterCap})
	}
	if m.FruitVegServings != nil {
		out = append(out, contribution{ratio(float64(*m.FruitVegServings), nutritionTarget) * NutritionCap, NutritionCap})
	}
	if m.MoodRating != nil {
		out = append(out, contribution{ratio(float64(*m.MoodRating), 5) * MoodCap, MoodCap})
	}
	if m.StressLevel != nil {
		out = append(out, contribution{ratio(5-float64(*m.StressLevel), 4) * StressCap, StressCap})
	}
	return out
}

// HealthScore averages the normalized contribution of every present metric.
// Absent metrics count in neither the numerator nor the denominator, so one
// metric logged at its optimum scores 100.  Meditation has no score term; it
// only feeds the reward.
func HealthScore(m Metrics) float64 {
	cs := m.contributions()
	if len(cs) == 0 {
		return 0
	}
	var sum float64
	for _, c := range cs {
		sum += c.points / c.cap * 100
	}
	return Clamp(sum / float64(len(cs)))
}

// TokenReward sums the bonus of every satisfied threshold.
func TokenReward(m Metrics) int {
	reward := 0
	if m.SleepHours != nil && *m.SleepHours >= SleepRewardHours {
		reward += SleepBonus
	}
	if m.ExerciseMinutes != nil && *m.ExerciseMinutes >= ExerciseRewardMinutes {
		reward += ExerciseBonus
	}
	if m.Steps != nil && *m.Steps >= StepsReward {
		reward += StepsBonus
	}
	if m.WaterGlasses != nil && *m.WaterGlasses >= WaterRewardGlasses {
		reward += WaterBonus
	}
	if m.FruitVegServings != nil && *m.FruitVegServings >= FruitVegRewardServings {
		reward += FruitVegBonus
	}
	if m.MoodRating != nil && *m.MoodRating >= MoodRewardRating {
		reward += MoodBonus
	}
	if m.MeditationMinutes != nil && *m.MeditationMinutes >= MeditationRewardMinutes {
		reward += MeditationBonus
	}
	if m.StressLevel != nil && *m.StressLevel <= StressRewardMax {
		reward += StressBonus
	}
	return reward
}

// Clamp bounds a score to [0,100].  NaN maps to 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ratio returns v/target bounded to [0,1].
func ratio(v, target float64) float64 {
	if target <= 0 || v <= 0 || math.IsNaN(v) {
		return 0
	}
	r := v / target
	if r > 1 {
		return 1
	}
	return r
}
