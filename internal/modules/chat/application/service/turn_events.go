package service

import (
	"context"
	"encoding/json"
	"time"

	"ChatEduca/pkg/mq"
	"ChatEduca/pkg/zlog"

	"go.uber.org/zap"
)

const TurnCompletedEvent = "chat.turn.completed"

// TurnCompleted is published once per streaming turn, after persistence.
type TurnCompleted struct {
	Event              string    `json:"event"`
	SessionID          string    `json:"sessionId"`
	UserID             string    `json:"userId"`
	UserMessageID      int64     `json:"userMessageId"`
	AssistantMessageID int64     `json:"assistantMessageId,omitempty"`
	Outcome            string    `json:"outcome"`
	Chunks             int       `json:"chunks"`
	Sources            []string  `json:"sources,omitempty"`
	FinishedAt         time.Time `json:"finishedAt"`
}

// TurnPublisher sends TurnCompleted events keyed by session. A nil
// *TurnPublisher drops every event.
type TurnPublisher struct {
	pub   mq.Publisher
	topic string
}

func NewTurnPublisher(pub mq.Publisher, topic string) *TurnPublisher {
	if pub == nil || topic == "" {
		return nil
	}
	return &TurnPublisher{pub: pub, topic: topic}
}

// Publish is best effort; failures are logged.
func (p *TurnPublisher) Publish(ctx context.Context, ev TurnCompleted) {
	if p == nil {
		return
	}
	ev.Event = TurnCompletedEvent
	raw, err := json.Marshal(ev)
	if err != nil {
		zlog.Warn("marshal turn event", zap.Error(err))
		return
	}
	_, err = p.pub.Publish(ctx, mq.Message{
		Topic:   p.topic,
		Key:     []byte(ev.SessionID),
		Value:   raw,
		Headers: map[string]string{"event": TurnCompletedEvent},
	})
	if err != nil {
		zlog.Warn("publish turn event failed", zap.String("session_id", ev.SessionID), zap.Error(err))
	}
}
