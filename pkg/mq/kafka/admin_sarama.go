package kafka

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/IBM/sarama"
)

const (
	// DefaultTurnTopic is used when kafkaConfig.turnTopic is unset.
	DefaultTurnTopic = "chateduca.chat.turns"
	// DefaultTurnRetention is how long turn events stay replayable.
	DefaultTurnRetention = 7 * 24 * time.Hour
)

type TopicAdminConfig struct {
	Brokers  []string
	ClientID string
}

// TopicSpec describes the turn event topic. Zero fields take the defaults.
type TopicSpec struct {
	Name        string
	Partitions  int32
	Replication int16
	Retention   time.Duration
}

// TurnTopic returns the spec for the chat turn topic with defaults applied.
func TurnTopic(name string, partitions int32, replication int16) TopicSpec {
	return TopicSpec{Name: name, Partitions: partitions, Replication: replication}.withDefaults()
}

func (s TopicSpec) withDefaults() TopicSpec {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		s.Name = DefaultTurnTopic
	}
	if s.Partitions <= 0 {
		s.Partitions = 1
	}
	if s.Replication <= 0 {
		s.Replication = 1
	}
	if s.Retention <= 0 {
		s.Retention = DefaultTurnRetention
	}
	return s
}

func (s TopicSpec) detail() *sarama.TopicDetail {
	retentionMs := strconv.FormatInt(s.Retention.Milliseconds(), 10)
	return &sarama.TopicDetail{
		NumPartitions:     s.Partitions,
		ReplicationFactor: s.Replication,
		ConfigEntries: map[string]*string{
			"retention.ms": &retentionMs,
		},
	}
}

// topicAdmin is the part of sarama.ClusterAdmin the topic setup needs.
type topicAdmin interface {
	ListTopics() (map[string]sarama.TopicDetail, error)
	CreateTopic(topic string, detail *sarama.TopicDetail, validateOnly bool) error
}

// EnsureTopic creates the turn topic when missing. An existing topic is left
// as is, including its partition count.
func EnsureTopic(cfg TopicAdminConfig, spec TopicSpec) error {
	if len(cfg.Brokers) == 0 {
		return errors.New("kafka brokers is empty")
	}

	sc := sarama.NewConfig()
	sc.Version = sarama.V2_8_0_0
	sc.ClientID = strings.TrimSpace(cfg.ClientID)

	admin, err := sarama.NewClusterAdmin(cfg.Brokers, sc)
	if err != nil {
		return err
	}
	defer admin.Close()

	return ensureTopic(admin, spec)
}

func ensureTopic(admin topicAdmin, spec TopicSpec) error {
	spec = spec.withDefaults()

	topics, err := admin.ListTopics()
	if err != nil {
		return err
	}
	if _, ok := topics[spec.Name]; ok {
		return nil
	}

	if err := admin.CreateTopic(spec.Name, spec.detail(), false); err != nil {
		if errors.Is(err, sarama.ErrTopicAlreadyExists) {
			return nil
		}
		return err
	}
	return nil
}
