package interfaces

// EventPublisher mirrors applied transactions and alerts to an external
// sink. Implementations must be safe for concurrent use.
type EventPublisher interface {
	Publish(topic string, event any) error
}
