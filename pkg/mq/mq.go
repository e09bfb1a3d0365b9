// Package mq is the broker neutral contract for chat turn events. The chat
// service publishes one message per finished turn and the turn-stats worker
// consumes them.
package mq

import "context"

// Message is a single turn event. Key carries the session id so the turns of
// one conversation land on the same partition in order.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// PublishResult locates an accepted event in the log.
type PublishResult struct {
	Partition int32
	Offset    int64
}

// Publisher hands turn events to the broker. Publish returns once the broker
// has accepted the message.
type Publisher interface {
	Publish(ctx context.Context, msg Message) (PublishResult, error)
	Close() error
}

// Handler processes one delivered message. Returning an error leaves the
// offset unmarked so the message is redelivered after a rebalance.
type Handler interface {
	Handle(ctx context.Context, msg Message) error
}

type Consumer interface {
	Run(ctx context.Context, handler Handler) error
	Close() error
}
