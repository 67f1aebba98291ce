package publisher

import "github.com/sukhantharot/dividend-stocks/internal/dividend"

// Publisher announces newly stored dividend events to downstream consumers
type Publisher interface {
	// PublishEvents publishes a batch of events as one stream entry
	PublishEvents(events []dividend.Event) error

	// TrimStream trims the stream to the configured maximum length
	TrimStream() error

	// Close closes the publisher connection
	Close() error
}
