package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers. The values are the
// names clients receive on the realtime channel.
type EventType string

const (
	EventNewComplaint     EventType = "new-complaint"
	EventComplaintUpdated EventType = "complaint-updated"
	EventStatusChange     EventType = "status-change"
)

// Types lists every event type the service emits.
func Types() []EventType {
	return []EventType{EventNewComplaint, EventComplaintUpdated, EventStatusChange}
}

// Event represents a domain event emitted by services. An empty Room means
// the event is broadcast to every connected session.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	ComplaintID string    `json:"complaintId"`
	Room        string    `json:"room,omitempty"`
	ActorID     string    `json:"actorId,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Payload     any       `json:"payload"`
}

// New builds an event with a fresh id and timestamp.
func New(eventType EventType, complaintID, actorID string, payload any) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		ComplaintID: complaintID,
		ActorID:     actorID,
		Timestamp:   time.Now().UTC(),
		Payload:     payload,
	}
}

// InRoom scopes the event to a single room.
func (e Event) InRoom(room string) Event {
	e.Room = room
	return e
}

// Broadcast reports whether the event targets every session.
func (e Event) Broadcast() bool {
	return e.Room == ""
}

const roomPrefix = "complaint-"

// RoomForComplaint returns the realtime room that follows one complaint.
func RoomForComplaint(complaintID string) string {
	return roomPrefix + complaintID
}

// ComplaintFromRoom extracts the complaint id from a room name.
func ComplaintFromRoom(room string) (string, bool) {
	if len(room) <= len(roomPrefix) || room[:len(roomPrefix)] != roomPrefix {
		return "", false
	}
	return room[len(roomPrefix):], true
}

