package plate

import (
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the wall-clock layout used by saved records and exports.
const TimestampLayout = "2006-01-02 15:04:05"

// StableConfidence is the confidence label written on every saved record.
const StableConfidence = "Stable"

type CharDetection struct {
	ClassID int     `json:"class_id"`
	CenterX float64 `json:"center_x"`
}

type BoundingBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Region is one localized plate area reported by the detector.
type Region struct {
	Box   BoundingBox     `json:"box"`
	Chars []CharDetection `json:"chars"`
}

type Frame struct {
	Index      int64     `json:"index"`
	CapturedAt time.Time `json:"captured_at"`
	Regions    []Region  `json:"regions"`
}

type PatternName string

const (
	PatternStandard       PatternName = "standard"
	PatternMetroBasic     PatternName = "metro_basic"
	PatternDistrictSimple PatternName = "district_simple"
	PatternCustom         PatternName = "custom"
)

func (p PatternName) Valid() bool {
	switch p {
	case PatternStandard, PatternMetroBasic, PatternDistrictSimple, PatternCustom:
		return true
	}
	return false
}

// FilterConfig keeps the field names used by existing export files.
type FilterConfig struct {
	Enabled          bool        `json:"enabled"`
	ActivePattern    PatternName `json:"pattern_type"`
	CustomExpression string      `json:"custom_pattern"`
	MultiPatternMode bool        `json:"allow_multiple_patterns"`
}

type SavedRecord struct {
	Text             string      `json:"plate"`
	AcceptedAt       Timestamp   `json:"timestamp"`
	Confidence       string      `json:"confidence"`
	PatternUsed      PatternName `json:"filter_pattern"`
	FilterWasEnabled bool        `json:"filter_enabled"`
}

type ExportPayload struct {
	ExportTimestamp Timestamp     `json:"export_timestamp"`
	FilterSettings  FilterConfig  `json:"filter_settings"`
	Detections      []SavedRecord `json:"detections"`
}

type Outcome string

const (
	OutcomeAccepted  Outcome = "accepted"
	OutcomeRejected  Outcome = "rejected"
	OutcomeDuplicate Outcome = "duplicate"
)

type EventType string

const (
	EventDetection EventType = "detection"
	EventStable    EventType = "stable"
	EventAccepted  EventType = "accepted"
	EventRejected  EventType = "rejected"
	EventDuplicate EventType = "duplicate"
)

// EventTypeFor maps a submission outcome to the event announcing it.
func EventTypeFor(o Outcome) EventType {
	switch o {
	case OutcomeAccepted:
		return EventAccepted
	case OutcomeDuplicate:
		return EventDuplicate
	default:
		return EventRejected
	}
}

type RegionText struct {
	Box  BoundingBox `json:"box"`
	Text string      `json:"text"`
}

// Event is what the worker hands to the presentation layer.
type Event struct {
	ID        uuid.UUID    `json:"id"`
	Type      EventType    `json:"type"`
	Frame     int64        `json:"frame"`
	Text      string       `json:"text,omitempty"`
	Regions   []RegionText `json:"regions,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewEvent(t EventType, frame int64, text string) Event {
	return Event{
		ID:        uuid.New(),
		Type:      t,
		Frame:     frame,
		Text:      text,
		Timestamp: time.Now(),
	}
}
