package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ChatEduca/internal/modules/chat/application/service"
	"ChatEduca/internal/modules/chat/domain/repository"
	"ChatEduca/pkg/mq"
	"ChatEduca/pkg/zlog"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Metadata keys written on sessions.metadata.
const (
	MetaTurns             = "turns"
	MetaOutcomes          = "outcomes"
	MetaLastOutcome       = "lastOutcome"
	MetaLastChunks        = "lastChunks"
	MetaLastTurnAt        = "lastTurnAt"
	MetaLastUserMessageID = "lastUserMessageId"
)

// TurnStatsWorker folds chat.turn.completed events into the metadata of
// the session they belong to. Events are keyed by session, so one partition
// sees a session's turns in order; replays are skipped by user message id.
type TurnStatsWorker struct {
	consumer mq.Consumer
	sessions repository.SessionRepository
}

func NewTurnStatsWorker(consumer mq.Consumer, sessions repository.SessionRepository) *TurnStatsWorker {
	return &TurnStatsWorker{consumer: consumer, sessions: sessions}
}

func (w *TurnStatsWorker) Run(ctx context.Context) error {
	if w == nil || w.consumer == nil {
		return errors.New("consumer is nil")
	}
	if w.sessions == nil {
		return errors.New("session repo is nil")
	}
	return w.consumer.Run(ctx, w)
}

func (w *TurnStatsWorker) Handle(ctx context.Context, msg mq.Message) error {
	if ev, ok := msg.Headers["event"]; ok && ev != service.TurnCompletedEvent {
		return nil
	}
	var ev service.TurnCompleted
	if err := json.Unmarshal(msg.Value, &ev); err != nil || ev.SessionID == "" {
		zlog.Warn("turn stats invalid payload", zap.String("topic", msg.Topic), zap.ByteString("key", msg.Key))
		return nil
	}

	sess, err := w.sessions.GetBySessionId(ctx, ev.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// cleared before the event arrived
			return nil
		}
		return fmt.Errorf("load session %s: %w", ev.SessionID, err)
	}

	meta := make(map[string]interface{}, len(sess.Metadata)+6)
	for k, v := range sess.Metadata {
		meta[k] = v
	}
	if ev.UserMessageID > 0 && ev.UserMessageID <= asInt64(meta[MetaLastUserMessageID]) {
		return nil
	}

	outcomes := map[string]interface{}{}
	if prev, ok := meta[MetaOutcomes].(map[string]interface{}); ok {
		for k, v := range prev {
			outcomes[k] = v
		}
	}
	outcomes[ev.Outcome] = asInt64(outcomes[ev.Outcome]) + 1

	meta[MetaTurns] = asInt64(meta[MetaTurns]) + 1
	meta[MetaOutcomes] = outcomes
	meta[MetaLastOutcome] = ev.Outcome
	meta[MetaLastChunks] = ev.Chunks
	meta[MetaLastTurnAt] = ev.FinishedAt.UTC().Format(time.RFC3339Nano)
	if ev.UserMessageID > 0 {
		meta[MetaLastUserMessageID] = ev.UserMessageID
	}

	if err := w.sessions.UpdateMetadata(ctx, ev.SessionID, meta); err != nil {
		zlog.Warn("turn stats update failed", zap.String("session_id", ev.SessionID), zap.Error(err))
		return err
	}
	return nil
}

// asInt64 reads a counter back from decoded JSON.
func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	}
	return 0
}
