package pipeline

import "fmt"

type Settings struct {
	StabilityThreshold int `json:"stability_threshold"`
	HistorySize        int `json:"history_size"`
	MinDetectionLength int `json:"min_detection_length"`
	FrameSkip          int `json:"frame_skip"`
}

func DefaultSettings() Settings {
	return Settings{
		StabilityThreshold: 5,
		HistorySize:        50,
		MinDetectionLength: 3,
		FrameSkip:          1,
	}
}

// Normalize validates s and raises the history size to the threshold when
// it is smaller.
func (s Settings) Normalize() (Settings, error) {
	if s.StabilityThreshold < 1 {
		return s, fmt.Errorf("stability_threshold must be >= 1, got %d", s.StabilityThreshold)
	}
	if s.MinDetectionLength < 1 {
		return s, fmt.Errorf("min_detection_length must be >= 1, got %d", s.MinDetectionLength)
	}
	if s.FrameSkip < 1 {
		return s, fmt.Errorf("frame_skip must be >= 1, got %d", s.FrameSkip)
	}
	if s.HistorySize < s.StabilityThreshold {
		s.HistorySize = s.StabilityThreshold
	}
	return s, nil
}
