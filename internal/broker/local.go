package broker

import "context"

// LocalSink delivers events straight to a handler in the same process. It
// stands in for Kafka on single-node deployments.
type LocalSink struct {
	handler MessageHandler
}

// NewLocalSink creates a sink that dispatches to handler
func NewLocalSink(handler MessageHandler) *LocalSink {
	return &LocalSink{handler: handler}
}

// PublishEvent encodes the event and hands it to the handler
func (s *LocalSink) PublishEvent(ctx context.Context, key string, event interface{}) error {
	msg, err := encode(key, event)
	if err != nil {
		return err
	}
	return s.handler(ctx, msg)
}

// Close is a no-op
func (s *LocalSink) Close() error {
	return nil
}
