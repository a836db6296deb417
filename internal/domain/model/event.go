package model

import (
	"time"

	"github.com/google/uuid"
)

type EventKind int16

const (
	ConnectionStatus EventKind = iota + 1 // [SYSTEM]
	InboxSnapshot                         // replay after a successful authenticate
	InboxNew                              // store mutation fan-out (scanner/admin writes)
	InboxUpdated                          // acknowledgement of a client-issued command
	PresenceUpdate                        // connect/disconnect broadcast
)

type EventPriority int32

const (
	PriorityLow    EventPriority = 10
	PriorityNormal EventPriority = 20
	PriorityHigh   EventPriority = 30
)

// Eventer defines the contract for all data packets flowing through the Hub.
type Eventer interface {
	GetID() string
	GetKind() EventKind
	GetUsername() string
	GetPriority() EventPriority
	GetOccurredAt() int64
	GetPayload() any
}

// Interface guard
var _ Eventer = (*PushEvent)(nil)

// PushEvent is the concrete event routed from the delivery core to a user's
// live connection. Username is empty for hub-wide broadcasts (presence).
type PushEvent struct {
	ID         string
	Kind       EventKind
	Username   string
	Priority   EventPriority
	OccurredAt int64
	Payload    any
}

func NewPushEvent(kind EventKind, username string, prio EventPriority, payload any) *PushEvent {
	return &PushEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		Username:   username,
		Priority:   prio,
		OccurredAt: time.Now().UnixMilli(),
		Payload:    payload,
	}
}

func (e *PushEvent) GetID() string               { return e.ID }
func (e *PushEvent) GetKind() EventKind          { return e.Kind }
func (e *PushEvent) GetUsername() string         { return e.Username }
func (e *PushEvent) GetPriority() EventPriority  { return e.Priority }
func (e *PushEvent) GetOccurredAt() int64        { return e.OccurredAt }
func (e *PushEvent) GetPayload() any             { return e.Payload }
