package initial

import (
	"errors"

	"ChatEduca/internal/config"
	"ChatEduca/pkg/mq"
	"ChatEduca/pkg/mq/kafka"
	"ChatEduca/pkg/zlog"

	"go.uber.org/zap"
)

// OpenPublisher returns nil when no brokers are configured. Turn events are
// best effort, so a broker failure at startup is logged and not fatal.
func OpenPublisher(conf config.KafkaConfig) mq.Publisher {
	if len(conf.Brokers) == 0 {
		zlog.Info("kafka not configured, turn events disabled")
		return nil
	}

	err := kafka.EnsureTopic(kafka.TopicAdminConfig{Brokers: conf.Brokers, ClientID: conf.ClientID},
		kafka.TurnTopic(conf.TurnTopic, conf.Partitions, conf.Replication))
	if err != nil {
		zlog.Warn("kafka ensure topic failed", zap.String("topic", conf.TurnTopic), zap.Error(err))
	}

	pub, err := kafka.NewSaramaPublisher(kafka.PublisherConfig{Brokers: conf.Brokers, ClientID: conf.ClientID})
	if err != nil {
		zlog.Error("kafka publisher init failed", zap.Error(err))
		return nil
	}
	return pub
}

// OpenConsumer joins the turn-stats consumer group. Unlike the publisher it
// requires brokers, since the worker has nothing to do without them.
func OpenConsumer(conf config.KafkaConfig, fromOldest bool) (mq.Consumer, error) {
	if len(conf.Brokers) == 0 {
		return nil, errors.New("kafkaConfig.brokers (KAFKA_BROKERS) is required")
	}
	return kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:    conf.Brokers,
		GroupID:    conf.TurnGroup,
		Topics:     []string{conf.TurnTopic},
		ClientID:   conf.ClientID,
		FromOldest: fromOldest,
	})
}
