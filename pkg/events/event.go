package events

import "time"

// Event is the contract for everything published on the bus.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// Event type codes emitted by the services.
const (
	TypeUserSignup       = "USER_SIGNUP"
	TypeUserSignin       = "USER_SIGNIN"
	TypeSessionRefreshed = "SESSION_REFRESHED"
	TypeDocumentIngested = "DOCUMENT_INGESTED"
)

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
