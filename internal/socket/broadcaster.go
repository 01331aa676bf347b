package socket

// Broadcaster provides high-level methods for pushing events to users
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// SendNotification sends a notification to a specific user
func (b *Broadcaster) SendNotification(userID string, notification map[string]interface{}) {
	b.hub.SendToUser(userID, MessageNotification, notification)
}

// SendNotificationCount updates notification count for a user
func (b *Broadcaster) SendNotificationCount(userID string, total, unread int) {
	b.hub.SendToUser(userID, MessageNotificationCount, map[string]interface{}{
		"total":  total,
		"unread": unread,
	})
}

// SendMeetingCreated pushes a freshly created meeting to the organizer's
// other sessions
func (b *Broadcaster) SendMeetingCreated(userID string, meeting map[string]interface{}) {
	b.hub.SendToUser(userID, MessageMeetingCreated, meeting)
}

// SendMeetingDeleted tells the organizer's sessions a meeting went away
func (b *Broadcaster) SendMeetingDeleted(userID, meetingID string) {
	b.hub.SendToUser(userID, MessageMeetingDeleted, map[string]interface{}{
		"meetingId": meetingID,
	})
}

// SendTimeSelected pushes the final slot choice to the organizer's sessions
func (b *Broadcaster) SendTimeSelected(userID string, payload map[string]interface{}) {
	b.hub.SendToUser(userID, MessageTimeSelected, payload)
}
