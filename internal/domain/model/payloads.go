package model

import "time"

// StatusPayload answers an authenticate attempt on the push channel.
type StatusPayload struct {
	Connected bool      `json:"connected"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// InboxUpdate carries a user's full refreshed inbox state. It is both the
// in-process bus payload emitted on every store mutation and the wire body
// of the snapshot/new/updated events.
type InboxUpdate struct {
	Username      string          `json:"targetUsername,omitempty"`
	Notification  *Notification   `json:"notification,omitempty"` // set for new-notification only
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unread_count"`
	TotalCount    int             `json:"total_count"`
}

// SnapshotPayload replays the owner's current inbox once per successful
// authenticate.
type SnapshotPayload struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unread_count"`
	TotalCount    int             `json:"total_count"`
	User          SessionUser     `json:"user"`
}

// ConnectedUser is one live presence entry.
type ConnectedUser struct {
	Username    string    `json:"username"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// PresencePayload is broadcast to every connection on connect/disconnect.
type PresencePayload struct {
	UserID         string          `json:"userId"`
	Username       string          `json:"username"`
	Status         string          `json:"status"` // "online" | "offline"
	ConnectedUsers []ConnectedUser `json:"connectedUsers"`
}

// SessionUser identifies the authenticated owner of a connection.
type SessionUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
