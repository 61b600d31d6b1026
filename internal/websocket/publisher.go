package websocket

// EventPublisher delivers events to the live connections of a user
type EventPublisher interface {
	Publish(userID int64, event Event)
}

var _ EventPublisher = (*Hub)(nil)
