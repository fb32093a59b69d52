package messaging

import (
	"time"

	"github.com/google/uuid"
)

// Event routing keys as constants
const (
	EventIntakeStarted   = "intake.started"
	EventIntakeCompleted = "intake.completed"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType   string    `json:"event_type"`
	EventID     string    `json:"event_id"`
	Timestamp   time.Time `json:"timestamp"`
	ServiceName string    `json:"service_name"`
}

// IntakeStartedEvent marks the first suggestion request of an intake run
type IntakeStartedEvent struct {
	BaseEvent
	Data IntakeStartedData `json:"data"`
}

type IntakeStartedData struct {
	PatientKey string    `json:"patient_key"`
	Age        int       `json:"age"`
	Gender     string    `json:"gender"`
	StartedAt  time.Time `json:"started_at"`
}

// IntakeCompletedEvent marks a saved final questionnaire section
type IntakeCompletedEvent struct {
	BaseEvent
	Data IntakeCompletedData `json:"data"`
}

type IntakeCompletedData struct {
	PatientKey  string    `json:"patient_key"`
	Sections    int       `json:"sections"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		EventID:     uuid.New().String(),
		Timestamp:   time.Now().UTC(), // Explicitly set to UTC
		ServiceName: "intake-service",
	}
}

// NewIntakeStartedEvent builds an intake.started event
func NewIntakeStartedEvent(patientKey string, age int, gender string) IntakeStartedEvent {
	return IntakeStartedEvent{
		BaseEvent: NewBaseEvent(EventIntakeStarted),
		Data: IntakeStartedData{
			PatientKey: patientKey,
			Age:        age,
			Gender:     gender,
			StartedAt:  time.Now().UTC(),
		},
	}
}

// NewIntakeCompletedEvent builds an intake.completed event
func NewIntakeCompletedEvent(patientKey string, sections int) IntakeCompletedEvent {
	return IntakeCompletedEvent{
		BaseEvent: NewBaseEvent(EventIntakeCompleted),
		Data: IntakeCompletedData{
			PatientKey:  patientKey,
			Sections:    sections,
			CompletedAt: time.Now().UTC(),
		},
	}
}
