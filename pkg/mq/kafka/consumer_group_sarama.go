package kafka

import (
	"context"
	"errors"
	"strings"
	"time"

	"ChatEduca/pkg/mq"
	"ChatEduca/pkg/zlog"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topics   []string
	ClientID string
	// FromOldest starts a new group at the beginning of the topic instead
	// of its end.
	FromOldest bool
}

type saramaConsumer struct {
	cg     sarama.ConsumerGroup
	topics []string
}

func NewConsumer(cfg ConsumerConfig) (mq.Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers is empty")
	}
	groupID := strings.TrimSpace(cfg.GroupID)
	if groupID == "" {
		return nil, errors.New("kafka consumer group id is empty")
	}
	if len(cfg.Topics) == 0 {
		return nil, errors.New("kafka topics is empty")
	}

	sc := sarama.NewConfig()
	sc.Version = sarama.V2_8_0_0
	sc.ClientID = strings.TrimSpace(cfg.ClientID)
	sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	if cfg.FromOldest {
		sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	}
	sc.Consumer.Group.Rebalance.Timeout = 30 * time.Second
	sc.Consumer.Group.Session.Timeout = 30 * time.Second

	cg, err := sarama.NewConsumerGroup(cfg.Brokers, groupID, sc)
	if err != nil {
		return nil, err
	}
	return NewConsumerFromGroup(cg, cfg.Topics), nil
}

// NewConsumerFromGroup wraps an existing consumer group.
func NewConsumerFromGroup(cg sarama.ConsumerGroup, topics []string) mq.Consumer {
	return &saramaConsumer{cg: cg, topics: topics}
}

// Run joins the group and blocks until ctx is cancelled or the group fails.
// Consume returns on every rebalance, so it is called in a loop.
func (c *saramaConsumer) Run(ctx context.Context, handler mq.Handler) error {
	if handler == nil {
		return errors.New("handler is nil")
	}
	h := &claimHandler{h: handler}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.cg.Consume(ctx, c.topics, h); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
	}
}

func (c *saramaConsumer) Close() error {
	if c == nil || c.cg == nil {
		return nil
	}
	return c.cg.Close()
}

type claimHandler struct {
	h mq.Handler
}

func (*claimHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (*claimHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *claimHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for m := range claim.Messages() {
		msg := fromConsumerMessage(m)
		if err := h.h.Handle(sess.Context(), msg); err != nil {
			zlog.Warn("kafka message not handled",
				zap.String("topic", m.Topic),
				zap.Int32("partition", m.Partition),
				zap.Int64("offset", m.Offset),
				zap.Error(err))
			continue
		}
		sess.MarkMessage(m, "")
	}
	return nil
}

func fromConsumerMessage(m *sarama.ConsumerMessage) mq.Message {
	msg := mq.Message{Topic: m.Topic, Key: m.Key, Value: m.Value}
	if len(m.Headers) == 0 {
		return msg
	}
	msg.Headers = make(map[string]string, len(m.Headers))
	for _, hdr := range m.Headers {
		if hdr == nil || len(hdr.Key) == 0 {
			continue
		}
		msg.Headers[string(hdr.Key)] = string(hdr.Value)
	}
	return msg
}
