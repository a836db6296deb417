package wsmarshaller

import "github.com/cinehub/cinehub-service/internal/domain/model"

// eventNames maps internal event kinds onto the wire names the browser
// client listens for.
var eventNames = map[model.EventKind]string{
	model.ConnectionStatus: "connection-status",
	model.InboxSnapshot:    "current-notifications",
	model.InboxNew:         "new-notification",
	model.InboxUpdated:     "notifications-updated",
	model.PresenceUpdate:   "user-status-update",
}
