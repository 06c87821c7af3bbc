package predict

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Input is the fixed feature schema every model is evaluated against.
// Field order matches the order the models were trained on.
type Input struct {
	Weight         float64 `json:"weight"`
	Height         float64 `json:"height"`
	HeartRate      float64 `json:"heartRate"`
	TargetWeight   float64 `json:"targetWeight"`
	TargetDuration float64 `json:"targetDuration"`
	WorkoutDays    float64 `json:"workoutDays"`
	WorkoutTime    float64 `json:"workoutTime"`
}

// FeatureNames lists the schema in model order
var FeatureNames = []string{
	"weight", "height", "heartRate", "targetWeight", "targetDuration", "workoutDays", "workoutTime",
}

// UnmarshalJSON decodes an Input and rejects payloads missing any feature.
func (in *Input) UnmarshalJSON(data []byte) error {
	var raw struct {
		Weight         *float64 `json:"weight"`
		Height         *float64 `json:"height"`
		HeartRate      *float64 `json:"heartRate"`
		TargetWeight   *float64 `json:"targetWeight"`
		TargetDuration *float64 `json:"targetDuration"`
		WorkoutDays    *float64 `json:"workoutDays"`
		WorkoutTime    *float64 `json:"workoutTime"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields := []*float64{raw.Weight, raw.Height, raw.HeartRate, raw.TargetWeight,
		raw.TargetDuration, raw.WorkoutDays, raw.WorkoutTime}
	var missing []string
	for i, f := range fields {
		if f == nil {
			missing = append(missing, FeatureNames[i])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing features: %s", strings.Join(missing, ", "))
	}

	*in = Input{
		Weight:         *raw.Weight,
		Height:         *raw.Height,
		HeartRate:      *raw.HeartRate,
		TargetWeight:   *raw.TargetWeight,
		TargetDuration: *raw.TargetDuration,
		WorkoutDays:    *raw.WorkoutDays,
		WorkoutTime:    *raw.WorkoutTime,
	}
	return nil
}

// Vector returns the features in model order
func (in Input) Vector() []float64 {
	return []float64{in.Weight, in.Height, in.HeartRate, in.TargetWeight,
		in.TargetDuration, in.WorkoutDays, in.WorkoutTime}
}

// regoInput is the document handed to a model as `input`
func (in Input) regoInput() map[string]any {
	vec := in.Vector()
	m := make(map[string]any, len(vec)+1)
	for i, name := range FeatureNames {
		m[name] = vec[i]
	}
	m["features"] = vec
	return m
}
